package analytics

import (
	"encoding/json"
	"time"

	"github.com/delizzia/pos-backend/internal/pricing"
	"github.com/delizzia/pos-backend/internal/reports"
	"github.com/delizzia/pos-backend/internal/trends"
	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/delizzia/pos-backend/pkg/money"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type ChannelTotalsDTO struct {
	Orders     int         `json:"orders"`
	Revenue    json.Number `json:"revenue"`
	Commission json.Number `json:"commission"`
}

type BucketTotalsDTO struct {
	Orders  int         `json:"orders"`
	Revenue json.Number `json:"revenue"`
}

// ReportDTO is the API shape of a period report.
type ReportDTO struct {
	PeriodStart       time.Time                          `json:"period_start"`
	PeriodEnd         time.Time                          `json:"period_end"`
	Bucket            enums.BucketGranularity            `json:"bucket"`
	Timezone          string                             `json:"timezone"`
	TotalOrders       int                                `json:"total_orders"`
	TotalRevenue      json.Number                        `json:"total_revenue"`
	TotalCosts        json.Number                        `json:"total_costs"`
	TotalProfit       json.Number                        `json:"total_profit"`
	AverageOrderValue json.Number                        `json:"average_order_value"`
	ChannelBreakdown  map[enums.Channel]ChannelTotalsDTO `json:"channel_breakdown"`
	TimeBreakdown     map[string]BucketTotalsDTO         `json:"time_breakdown"`
}

func FromReport(r reports.PeriodReport) ReportDTO {
	dto := ReportDTO{
		PeriodStart:       r.PeriodStart,
		PeriodEnd:         r.PeriodEnd,
		Bucket:            r.Granularity,
		Timezone:          r.Timezone,
		TotalOrders:       r.TotalOrders,
		TotalRevenue:      money.Fixed(r.TotalRevenue),
		TotalCosts:        money.Fixed(r.TotalCosts),
		TotalProfit:       money.Fixed(r.TotalProfit),
		AverageOrderValue: money.Fixed(r.AverageOrderValue),
		ChannelBreakdown:  make(map[enums.Channel]ChannelTotalsDTO, len(r.ChannelBreakdown)),
		TimeBreakdown:     make(map[string]BucketTotalsDTO, len(r.TimeBreakdown)),
	}
	for ch, t := range r.ChannelBreakdown {
		dto.ChannelBreakdown[ch] = ChannelTotalsDTO{Orders: t.Orders, Revenue: money.Fixed(t.Revenue), Commission: money.Fixed(t.Commission)}
	}
	for key, t := range r.TimeBreakdown {
		dto.TimeBreakdown[key] = BucketTotalsDTO{Orders: t.Orders, Revenue: money.Fixed(t.Revenue)}
	}
	return dto
}

type ChannelStatsDTO struct {
	Channel           enums.Channel `json:"channel"`
	Orders            int           `json:"orders"`
	Revenue           json.Number   `json:"revenue"`
	CommissionPaid    json.Number   `json:"commission_paid"`
	NetRevenue        json.Number   `json:"net_revenue"`
	NetProfit         json.Number   `json:"net_profit"`
	AverageOrderValue json.Number   `json:"average_order_value"`
	RevenueShare      json.Number   `json:"revenue_share_percent"`
	CommissionPercent json.Number   `json:"commission_percent"`
	PotentialSavings  json.Number   `json:"potential_savings"`
}

func FromChannelStats(stats []reports.ChannelStats) []ChannelStatsDTO {
	out := make([]ChannelStatsDTO, 0, len(stats))
	for _, s := range stats {
		out = append(out, ChannelStatsDTO{
			Channel:           s.Channel,
			Orders:            s.Orders,
			Revenue:           money.Fixed(s.Revenue),
			CommissionPaid:    money.Fixed(s.CommissionPaid),
			NetRevenue:        money.Fixed(s.NetRevenue),
			NetProfit:         money.Fixed(s.NetProfit),
			AverageOrderValue: money.Fixed(s.AverageOrderValue),
			RevenueShare:      money.Fixed(s.RevenueShare),
			CommissionPercent: money.Fixed(s.CommissionPercent),
			PotentialSavings:  money.Fixed(s.PotentialSavings),
		})
	}
	return out
}

// ChannelSummaryDTO is the channel comparison with overall commission totals.
type ChannelSummaryDTO struct {
	Channels          []ChannelStatsDTO `json:"channels"`
	TotalRevenue      json.Number       `json:"total_revenue"`
	TotalCommission   json.Number       `json:"total_commission_paid"`
	CommissionPercent json.Number       `json:"overall_commission_percent"`
	PotentialSavings  json.Number       `json:"total_potential_savings"`
}

func FromCommissionSummary(s reports.CommissionSummary) ChannelSummaryDTO {
	return ChannelSummaryDTO{
		Channels:          FromChannelStats(s.Channels),
		TotalRevenue:      money.Fixed(s.Revenue),
		TotalCommission:   money.Fixed(s.CommissionPaid),
		CommissionPercent: money.Fixed(s.CommissionPercent),
		PotentialSavings:  money.Fixed(s.PotentialSavings),
	}
}

type PredictionDTO struct {
	Date             string       `json:"date"`
	PredictedRevenue json.Number  `json:"predicted_revenue"`
	PredictedOrders  int          `json:"predicted_orders"`
	Confidence       float64      `json:"confidence"`
	Lower            *json.Number `json:"lower_bound,omitempty"`
	Upper            *json.Number `json:"upper_bound,omitempty"`
}

type HistoryPointDTO struct {
	Date    string      `json:"date"`
	Orders  int         `json:"orders"`
	Revenue json.Number `json:"revenue"`
}

// TrendsDTO is the API shape of a projection.
type TrendsDTO struct {
	Model       enums.ProjectionModel `json:"model"`
	HistoryDays int                   `json:"history_days"`
	History     []HistoryPointDTO     `json:"history"`
	Predictions []PredictionDTO       `json:"predictions"`
}

func FromTrends(r *TrendsResult) TrendsDTO {
	dto := TrendsDTO{
		Model:       r.Model,
		HistoryDays: len(r.History),
		History:     make([]HistoryPointDTO, 0, len(r.History)),
		Predictions: make([]PredictionDTO, 0, len(r.Predictions)),
	}
	for _, p := range r.History {
		dto.History = append(dto.History, HistoryPointDTO{Date: p.Date.Format(dateLayout), Orders: p.Orders, Revenue: money.Fixed(p.Revenue)})
	}
	bands := make(map[string]trends.Band, len(r.Bands))
	for _, b := range r.Bands {
		bands[b.Date.Format(dateLayout)] = b
	}
	for _, p := range r.Predictions {
		day := p.Date.Format(dateLayout)
		pdto := PredictionDTO{
			Date:             day,
			PredictedRevenue: money.Fixed(p.PredictedRevenue),
			PredictedOrders:  p.PredictedOrders,
			Confidence:       p.Confidence,
		}
		if b, ok := bands[day]; ok {
			lower, upper := money.Fixed(b.Lower), money.Fixed(b.Upper)
			pdto.Lower, pdto.Upper = &lower, &upper
		}
		dto.Predictions = append(dto.Predictions, pdto)
	}
	return dto
}

// PricingDTO is the API shape of a price recommendation.
type PricingDTO struct {
	ItemID           uuid.UUID   `json:"item_id"`
	Cost             json.Number `json:"cost"`
	CurrentPrice     json.Number `json:"current_price"`
	CurrentMargin    json.Number `json:"current_margin"`
	TargetMargin     json.Number `json:"target_margin"`
	OptimalPrice     json.Number `json:"optimal_price"`
	RecommendedPrice json.Number `json:"recommended_price"`
	PriceDelta       json.Number `json:"price_delta"`
	Damped           bool        `json:"damped"`
	Recommendations  []string    `json:"recommendations"`
}

func FromRecommendation(r pricing.Recommendation) PricingDTO {
	notes := r.Recommendations
	if notes == nil {
		notes = []string{}
	}
	return PricingDTO{
		ItemID:           r.ItemID,
		Cost:             money.Fixed(r.Cost),
		CurrentPrice:     money.Fixed(r.CurrentPrice),
		CurrentMargin:    money.FixedRate(r.CurrentMargin),
		TargetMargin:     money.FixedRate(r.TargetMargin),
		OptimalPrice:     money.Fixed(r.OptimalPrice),
		RecommendedPrice: money.Fixed(r.RecommendedPrice),
		PriceDelta:       money.Fixed(r.PriceDelta),
		Damped:           r.Damped,
		Recommendations:  notes,
	}
}
