// Package reports aggregates priced orders into period reports and exports them.
package reports

import (
	"sort"
	"time"

	"github.com/delizzia/pos-backend/pkg/db/models"
	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/money"
	"github.com/shopspring/decimal"
)

const (
	dayKeyLayout  = "2006-01-02"
	hourKeyLayout = "15:00"
)

// ChannelTotals aggregates one channel within a period.
type ChannelTotals struct {
	Orders     int
	Revenue    decimal.Decimal
	Commission decimal.Decimal
}

// BucketTotals aggregates one time bucket within a period.
type BucketTotals struct {
	Orders  int
	Revenue decimal.Decimal
}

// PeriodReport summarizes non-cancelled orders created within [PeriodStart, PeriodEnd].
type PeriodReport struct {
	PeriodStart       time.Time
	PeriodEnd         time.Time
	Granularity       enums.BucketGranularity
	Timezone          string
	TotalOrders       int
	TotalRevenue      decimal.Decimal
	TotalCosts        decimal.Decimal
	TotalProfit       decimal.Decimal
	AverageOrderValue decimal.Decimal
	ChannelBreakdown  map[enums.Channel]ChannelTotals
	TimeBreakdown     map[string]BucketTotals
}

// BuildReport aggregates orders. Buckets are computed in loc (UTC when nil).
// Only stored order fields are read; nothing is recomputed.
func BuildReport(orders []models.Order, start, end time.Time, granularity enums.BucketGranularity, loc *time.Location) (PeriodReport, error) {
	if !granularity.IsValid() {
		return PeriodReport{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid bucket granularity").
			WithDetails(map[string]any{"bucket": granularity.String()})
	}
	if end.Before(start) {
		return PeriodReport{}, pkgerrors.New(pkgerrors.CodeValidation, "period end must not be before period start")
	}
	if loc == nil {
		loc = time.UTC
	}

	report := PeriodReport{
		PeriodStart:       start.In(loc),
		PeriodEnd:         end.In(loc),
		Granularity:       granularity,
		Timezone:          loc.String(),
		TotalRevenue:      money.Zero,
		TotalCosts:        money.Zero,
		TotalProfit:       money.Zero,
		AverageOrderValue: money.Zero,
		ChannelBreakdown:  map[enums.Channel]ChannelTotals{},
		TimeBreakdown:     map[string]BucketTotals{},
	}

	for _, o := range orders {
		if !inPeriod(o, start, end) {
			continue
		}
		report.TotalOrders++
		report.TotalRevenue = report.TotalRevenue.Add(o.Total)
		report.TotalCosts = report.TotalCosts.Add(o.TotalCosts())
		report.TotalProfit = report.TotalProfit.Add(o.NetProfit)

		ch := report.ChannelBreakdown[o.Channel]
		ch.Orders++
		ch.Revenue = ch.Revenue.Add(o.Total)
		ch.Commission = ch.Commission.Add(o.CommissionAmount)
		report.ChannelBreakdown[o.Channel] = ch

		key := BucketKey(o.CreatedAt, granularity, loc)
		b := report.TimeBreakdown[key]
		b.Orders++
		b.Revenue = b.Revenue.Add(o.Total)
		report.TimeBreakdown[key] = b
	}

	if report.TotalOrders > 0 {
		report.AverageOrderValue = money.Round(report.TotalRevenue.Div(decimal.NewFromInt(int64(report.TotalOrders))))
	}
	return report, nil
}

// BucketKey formats t as the key of its bucket in loc.
func BucketKey(t time.Time, granularity enums.BucketGranularity, loc *time.Location) string {
	local := t.In(loc)
	switch granularity {
	case enums.BucketGranularityHour:
		return local.Format(hourKeyLayout)
	case enums.BucketGranularityWeek:
		return weekStart(local).Format(dayKeyLayout)
	default:
		return local.Format(dayKeyLayout)
	}
}

// BucketKeys lists the time buckets in ascending order.
func (r PeriodReport) BucketKeys() []string {
	keys := make([]string, 0, len(r.TimeBreakdown))
	for k := range r.TimeBreakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Channels lists the channels present in the report in lexical order.
func (r PeriodReport) Channels() []enums.Channel {
	out := make([]enums.Channel, 0, len(r.ChannelBreakdown))
	for ch := range r.ChannelBreakdown {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func inPeriod(o models.Order, start, end time.Time) bool {
	if o.Status == enums.OrderStatusCancelled {
		return false
	}
	return !o.CreatedAt.Before(start) && !o.CreatedAt.After(end)
}

// weekStart returns local midnight of the Monday on or before t.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}
