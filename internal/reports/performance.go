package reports

import (
	"sort"
	"time"

	"github.com/delizzia/pos-backend/pkg/db/models"
	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/delizzia/pos-backend/pkg/money"
	"github.com/shopspring/decimal"
)

// commissionCut is the rate reduction, five percentage points, that PotentialSavings assumes can be negotiated.
var commissionCut = decimal.RequireFromString("0.05")

// ChannelStats compares one sales channel against the others in a period.
type ChannelStats struct {
	Channel           enums.Channel
	Orders            int
	Revenue           decimal.Decimal
	CommissionPaid    decimal.Decimal
	NetRevenue        decimal.Decimal
	NetProfit         decimal.Decimal
	AverageOrderValue decimal.Decimal
	RevenueShare      decimal.Decimal
	CommissionPercent decimal.Decimal
	PotentialSavings  decimal.Decimal
}

// ChannelPerformance ranks channels by revenue, highest first.
func ChannelPerformance(orders []models.Order, start, end time.Time) []ChannelStats {
	byChannel := map[enums.Channel]*ChannelStats{}
	total := decimal.Zero
	for _, o := range orders {
		if !inPeriod(o, start, end) {
			continue
		}
		s, ok := byChannel[o.Channel]
		if !ok {
			s = &ChannelStats{Channel: o.Channel}
			byChannel[o.Channel] = s
		}
		s.Orders++
		s.Revenue = s.Revenue.Add(o.Total)
		s.CommissionPaid = s.CommissionPaid.Add(o.CommissionAmount)
		s.NetRevenue = s.NetRevenue.Add(o.NetRevenue)
		s.NetProfit = s.NetProfit.Add(o.NetProfit)
		total = total.Add(o.Total)
	}

	out := make([]ChannelStats, 0, len(byChannel))
	for _, s := range byChannel {
		s.AverageOrderValue = money.Round(s.Revenue.Div(decimal.NewFromInt(int64(s.Orders))))
		s.RevenueShare = money.Percent(s.Revenue, total)
		s.CommissionPercent = money.Percent(s.CommissionPaid, s.Revenue)
		s.PotentialSavings = money.Round(decimal.Min(s.CommissionPaid, s.Revenue.Mul(commissionCut)))
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Channel < out[j].Channel
	})
	return out
}

// CommissionSummary totals commission across channels.
type CommissionSummary struct {
	Channels          []ChannelStats
	Revenue           decimal.Decimal
	CommissionPaid    decimal.Decimal
	CommissionPercent decimal.Decimal
	PotentialSavings  decimal.Decimal
}

// SummarizeCommission reports the overall commission share of revenue and the
// savings available if every channel's rate dropped five points.
func SummarizeCommission(stats []ChannelStats) CommissionSummary {
	sum := CommissionSummary{Channels: stats}
	for _, s := range stats {
		sum.Revenue = sum.Revenue.Add(s.Revenue)
		sum.CommissionPaid = sum.CommissionPaid.Add(s.CommissionPaid)
		sum.PotentialSavings = sum.PotentialSavings.Add(s.PotentialSavings)
	}
	sum.CommissionPercent = money.Percent(sum.CommissionPaid, sum.Revenue)
	return sum
}

// OrderProfitability expresses an order's cost structure as percentages of its total.
type OrderProfitability struct {
	OrderNumber       string
	Channel           enums.Channel
	Total             decimal.Decimal
	NetProfit         decimal.Decimal
	ProfitMargin      decimal.Decimal
	FoodCostPercent   decimal.Decimal
	CommissionPercent decimal.Decimal
	PackagingPercent  decimal.Decimal
}

// Profitability breaks a single stored order down into cost percentages.
func Profitability(o models.Order) OrderProfitability {
	return OrderProfitability{
		OrderNumber:       o.OrderNumber,
		Channel:           o.Channel,
		Total:             o.Total,
		NetProfit:         o.NetProfit,
		ProfitMargin:      money.Percent(o.NetProfit, o.Total),
		FoodCostPercent:   money.Percent(o.IngredientCost, o.Total),
		CommissionPercent: money.Percent(o.CommissionAmount, o.Total),
		PackagingPercent:  money.Percent(o.PackagingCost, o.Total),
	}
}
