package analytics

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/delizzia/pos-backend/internal/pricing"
	"github.com/delizzia/pos-backend/internal/trends"
	"github.com/delizzia/pos-backend/pkg/config"
)

// ApplyBusinessConfig fills the timezone, projection multipliers and pricing
// knobs of params from the business settings.
func ApplyBusinessConfig(params *ServiceParams, b config.BusinessConfig) error {
	loc, err := b.Location()
	if err != nil {
		return err
	}
	params.Location = loc

	params.Multipliers = trends.Multipliers{
		Weekend:    b.WeekendMultiplier,
		Sunday:     b.SundayMultiplier,
		Payday:     b.PaydayMultiplier,
		PaydayDays: b.PaydayDays,
	}

	params.Pricing = pricing.DefaultOptions()
	if raw := strings.TrimSpace(b.PriceElasticity); raw != "" {
		elasticity, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", "DELIZZIA_PRICE_ELASTICITY", raw, err)
		}
		params.Pricing.Elasticity = elasticity
	}
	if raw := strings.TrimSpace(b.TargetMargin); raw != "" {
		margin, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", "DELIZZIA_TARGET_MARGIN", raw, err)
		}
		if margin.IsNegative() || margin.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("DELIZZIA_TARGET_MARGIN must be in [0, 1), got %s", margin)
		}
		params.TargetMargin = margin
	}
	return nil
}
