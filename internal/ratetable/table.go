// Package ratetable holds the channel commission rates and packaging costs
// used to price orders. A Table is an immutable value; Store swaps snapshots
// atomically so a reload never exposes a partially written table.
package ratetable

import (
	"fmt"
	"sort"

	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/money"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

const (
	smallTierMaxQty  = 2
	mediumTierMaxQty = 4
)

// Table maps channels to commission rates and packaging tiers to costs.
type Table struct {
	commission map[enums.Channel]decimal.Decimal
	packaging  map[enums.PackagingTier]decimal.Decimal
}

// New validates and copies the provided maps into a Table.
// Rates must be in [0, 1); every packaging tier must be priced and non-negative.
func New(commission map[enums.Channel]decimal.Decimal, packaging map[enums.PackagingTier]decimal.Decimal) (Table, error) {
	var errs error
	t := Table{
		commission: make(map[enums.Channel]decimal.Decimal, len(commission)),
		packaging:  make(map[enums.PackagingTier]decimal.Decimal, len(packaging)),
	}

	for ch, rate := range commission {
		if ch == "" {
			errs = multierr.Append(errs, fmt.Errorf("channel name is required"))
			continue
		}
		if rate.IsNegative() || rate.GreaterThanOrEqual(money.One) {
			errs = multierr.Append(errs, fmt.Errorf("commission rate for %s must be in [0, 1), got %s", ch, rate))
			continue
		}
		t.commission[ch] = money.RoundRate(rate)
	}
	for tier, cost := range packaging {
		if !tier.IsValid() {
			errs = multierr.Append(errs, fmt.Errorf("unknown packaging tier %q", tier))
			continue
		}
		if cost.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("packaging cost for %s must be non-negative, got %s", tier, cost))
			continue
		}
		t.packaging[tier] = money.Round(cost)
	}
	for _, tier := range enums.PackagingTiers() {
		if _, ok := packaging[tier]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("packaging cost for %s is required", tier))
		}
	}

	if errs != nil {
		return Table{}, pkgerrors.Wrap(pkgerrors.CodeConfiguration, errs, "invalid rate table")
	}
	return t, nil
}

// Default is the stock restaurant configuration.
func Default() Table {
	t, err := New(
		map[enums.Channel]decimal.Decimal{
			enums.ChannelUberEats:  decimal.RequireFromString("0.30"),
			enums.ChannelPedidosYa: decimal.RequireFromString("0.28"),
			enums.ChannelBis:       decimal.RequireFromString("0.25"),
			enums.ChannelPhone:     decimal.Zero,
			enums.ChannelWhatsApp:  decimal.Zero,
		},
		map[enums.PackagingTier]decimal.Decimal{
			enums.PackagingTierSmall:  decimal.RequireFromString("0.15"),
			enums.PackagingTierMedium: decimal.RequireFromString("0.20"),
			enums.PackagingTierLarge:  decimal.RequireFromString("0.25"),
		},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// RateFor returns the commission rate for channel.
// A built-in channel without an entry is a configuration fault; anything else is an unknown channel.
func (t Table) RateFor(channel enums.Channel) (decimal.Decimal, error) {
	if rate, ok := t.commission[channel]; ok {
		return rate, nil
	}
	if channel.IsValid() {
		return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeConfiguration, "no commission rate configured for channel %s", channel)
	}
	return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unknown channel").
		WithDetails(map[string]any{"channel": channel.String()})
}

// HasChannel reports whether channel has a configured rate.
func (t Table) HasChannel(channel enums.Channel) bool {
	_, ok := t.commission[channel]
	return ok
}

// PackagingCost returns the cost of the given tier.
func (t Table) PackagingCost(tier enums.PackagingTier) (decimal.Decimal, error) {
	if cost, ok := t.packaging[tier]; ok {
		return cost, nil
	}
	return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeConfiguration, "no packaging cost configured for tier %s", tier)
}

// Channels lists configured channels in lexical order.
func (t Table) Channels() []enums.Channel {
	out := make([]enums.Channel, 0, len(t.commission))
	for ch := range t.commission {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal reports whether both tables hold the same rates and costs.
func (t Table) Equal(other Table) bool {
	if len(t.commission) != len(other.commission) || len(t.packaging) != len(other.packaging) {
		return false
	}
	for ch, rate := range t.commission {
		if o, ok := other.commission[ch]; !ok || !o.Equal(rate) {
			return false
		}
	}
	for tier, cost := range t.packaging {
		if o, ok := other.packaging[tier]; !ok || !o.Equal(cost) {
			return false
		}
	}
	return true
}

// TierFor picks the packaging tier for the total item quantity of an order.
func TierFor(totalQuantity int) enums.PackagingTier {
	switch {
	case totalQuantity <= smallTierMaxQty:
		return enums.PackagingTierSmall
	case totalQuantity <= mediumTierMaxQty:
		return enums.PackagingTierMedium
	default:
		return enums.PackagingTierLarge
	}
}
