// Package pricing advises on menu prices from cost and a target margin.
// It never changes catalog data.
package pricing

import (
	"fmt"

	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	lowMarginThreshold  = decimal.RequireFromString("0.15")
	highMarginThreshold = decimal.RequireFromString("0.50")
	gradualIncreasePct  = decimal.NewFromInt(20)
	defaultElasticity   = decimal.RequireFromString("-0.5")
	defaultDampingFloor = decimal.RequireFromString("0.7")
	defaultMaxStep      = decimal.RequireFromString("0.10")
)

// Options tune the demand damping heuristic.
type Options struct {
	// Elasticity is the assumed demand elasticity, usually negative.
	Elasticity decimal.Decimal
	// DampingThreshold is the lowest acceptable demand impact before the increase is capped.
	DampingThreshold decimal.Decimal
	// MaxStep is the largest single increase, as a fraction of the current price.
	MaxStep decimal.Decimal
}

func DefaultOptions() Options {
	return Options{
		Elasticity:       defaultElasticity,
		DampingThreshold: defaultDampingFloor,
		MaxStep:          defaultMaxStep,
	}
}

// Recommendation is the advice for a single menu item.
type Recommendation struct {
	ItemID           uuid.UUID
	Cost             decimal.Decimal
	CurrentPrice     decimal.Decimal
	CurrentMargin    decimal.Decimal
	TargetMargin     decimal.Decimal
	OptimalPrice     decimal.Decimal
	RecommendedPrice decimal.Decimal
	PriceDelta       decimal.Decimal
	Damped           bool
	Recommendations  []string
}

// RecommendPrice computes the price reaching targetMargin and caps large jumps
// whose implied demand impact falls below the damping threshold.
func RecommendPrice(itemID uuid.UUID, cost, currentPrice, targetMargin decimal.Decimal, opts Options) (Recommendation, error) {
	switch {
	case cost.IsNegative():
		return Recommendation{}, invalid("cost must be non-negative", "cost", cost)
	case !currentPrice.IsPositive():
		return Recommendation{}, invalid("current price must be positive", "current_price", currentPrice)
	case !targetMargin.IsPositive() || targetMargin.GreaterThanOrEqual(money.One):
		return Recommendation{}, invalid("target margin must be between 0 and 1", "target_margin", targetMargin)
	}
	opts = withDefaults(opts)

	optimal := money.Round(cost.Div(money.One.Sub(targetMargin)))
	rec := Recommendation{
		ItemID:           itemID,
		Cost:             cost,
		CurrentPrice:     currentPrice,
		CurrentMargin:    money.RoundRate(currentPrice.Sub(cost).Div(currentPrice)),
		TargetMargin:     targetMargin,
		OptimalPrice:     optimal,
		RecommendedPrice: optimal,
	}

	ratio := optimal.Div(currentPrice)
	impact := money.One.Add(opts.Elasticity.Mul(ratio.Sub(money.One)))
	if impact.LessThan(opts.DampingThreshold) {
		capped := money.Round(currentPrice.Mul(money.One.Add(opts.MaxStep)))
		if capped.LessThan(optimal) {
			rec.RecommendedPrice = capped
			rec.Damped = true
		}
	}
	rec.PriceDelta = rec.RecommendedPrice.Sub(currentPrice)
	rec.Recommendations = notes(rec)
	return rec, nil
}

func notes(rec Recommendation) []string {
	var out []string
	current := rec.CurrentPrice
	switch {
	case rec.OptimalPrice.GreaterThan(current):
		naive := rec.OptimalPrice.Sub(current).Div(current).Mul(money.Hundred)
		if naive.GreaterThan(gradualIncreasePct) {
			out = append(out, fmt.Sprintf("Consider gradual price increases over time instead of an immediate %s%% increase", naive.StringFixed(1)))
		} else {
			out = append(out, fmt.Sprintf("Price increase of %s%% recommended to reach target margin", naive.StringFixed(1)))
		}
	case rec.OptimalPrice.LessThan(current):
		reduction := current.Sub(rec.OptimalPrice).Div(current).Mul(money.Hundred)
		out = append(out, fmt.Sprintf("Current price may be too high, consider a %s%% reduction", reduction.StringFixed(1)))
	}

	switch {
	case rec.CurrentMargin.LessThan(lowMarginThreshold):
		out = append(out, "Very low margin, review cost structure or increase price")
	case rec.CurrentMargin.GreaterThan(highMarginThreshold):
		out = append(out, "High margin, consider competitive pricing or promotions")
	}
	return out
}

// BreakEvenQuantity is the number of units needed to cover fixedCosts.
// Returns 0 when each unit loses money.
func BreakEvenQuantity(fixedCosts, unitPrice, variableCost decimal.Decimal) int64 {
	if unitPrice.LessThanOrEqual(variableCost) {
		return 0
	}
	contribution := unitPrice.Sub(variableCost)
	return fixedCosts.Div(contribution).Ceil().IntPart()
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.Elasticity.IsZero() {
		opts.Elasticity = def.Elasticity
	}
	if opts.DampingThreshold.IsZero() {
		opts.DampingThreshold = def.DampingThreshold
	}
	if opts.MaxStep.IsZero() {
		opts.MaxStep = def.MaxStep
	}
	return opts
}

func invalid(message, field string, value decimal.Decimal) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"field": field, "value": value.String()})
}
