package ratetable

import (
	"fmt"
	"sort"
	"strings"

	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Snapshot is the wire and file form of a Table.
type Snapshot struct {
	CommissionRates map[string]decimal.Decimal `json:"commission_rates" yaml:"commission_rates"`
	Packaging       map[string]decimal.Decimal `json:"packaging" yaml:"packaging"`
}

// Snapshot exports the table.
func (t Table) Snapshot() Snapshot {
	s := Snapshot{
		CommissionRates: make(map[string]decimal.Decimal, len(t.commission)),
		Packaging:       make(map[string]decimal.Decimal, len(t.packaging)),
	}
	for ch, rate := range t.commission {
		s.CommissionRates[ch.String()] = rate
	}
	for tier, cost := range t.packaging {
		s.Packaging[tier.String()] = cost
	}
	return s
}

// FromSnapshot validates a snapshot and builds a Table from it.
// Channel and tier names are trimmed and lowercased; names that collide after that are rejected.
func FromSnapshot(s Snapshot) (Table, error) {
	var errs error
	commission := make(map[enums.Channel]decimal.Decimal, len(s.CommissionRates))
	for _, name := range sortedKeys(s.CommissionRates) {
		ch := enums.Channel(normalizeName(name))
		if _, dup := commission[ch]; dup {
			errs = multierr.Append(errs, fmt.Errorf("channel %s is listed more than once", ch))
			continue
		}
		commission[ch] = s.CommissionRates[name]
	}
	packaging := make(map[enums.PackagingTier]decimal.Decimal, len(s.Packaging))
	for _, name := range sortedKeys(s.Packaging) {
		tier := enums.PackagingTier(normalizeName(name))
		if _, dup := packaging[tier]; dup {
			errs = multierr.Append(errs, fmt.Errorf("packaging tier %s is listed more than once", tier))
			continue
		}
		packaging[tier] = s.Packaging[name]
	}
	if errs != nil {
		return Table{}, pkgerrors.Wrap(pkgerrors.CodeConfiguration, errs, "invalid rate table")
	}
	return New(commission, packaging)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromStrings builds a Table from textual maps such as those read from the environment.
func FromStrings(commission, packaging map[string]string) (Table, error) {
	var errs error
	s := Snapshot{
		CommissionRates: make(map[string]decimal.Decimal, len(commission)),
		Packaging:       make(map[string]decimal.Decimal, len(packaging)),
	}
	for name, raw := range commission {
		rate, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("commission rate for %s: %w", name, err))
			continue
		}
		s.CommissionRates[name] = rate
	}
	for name, raw := range packaging {
		cost, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("packaging cost for %s: %w", name, err))
			continue
		}
		s.Packaging[name] = cost
	}
	if errs != nil {
		return Table{}, pkgerrors.Wrap(pkgerrors.CodeConfiguration, errs, "invalid rate table")
	}
	return FromSnapshot(s)
}
