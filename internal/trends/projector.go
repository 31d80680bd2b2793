// Package trends projects daily revenue and order counts from history.
// The models are heuristics over a short daily series, not demand forecasts.
package trends

import (
	"math"
	"time"

	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	baseConfidence     = 0.9
	confidenceDecay    = 0.02
	minConfidence      = 0.1
	defaultTrendWeight = 0.6
	seasonalMinDays    = 7
)

// DailyPoint is one day of history. Date is the local midnight of the day.
type DailyPoint struct {
	Date    time.Time
	Orders  int
	Revenue decimal.Decimal
}

// Prediction is the projection for one future day.
type Prediction struct {
	Date             time.Time
	PredictedRevenue decimal.Decimal
	PredictedOrders  int
	Confidence       float64
}

// Multipliers adjust projections for local demand patterns. They compose multiplicatively.
type Multipliers struct {
	Weekend    float64
	Sunday     float64
	Payday     float64
	PaydayDays []int
}

func DefaultMultipliers() Multipliers {
	return Multipliers{Weekend: 1.3, Sunday: 0.8, Payday: 1.2, PaydayDays: []int{15, 30, 31}}
}

// Params configure a projection.
type Params struct {
	// Anchor dates the projection when there is no history; predictions start the day after.
	Anchor      time.Time
	Multipliers Multipliers
	// TrendWeight is the share of the trend model in a blended projection.
	TrendWeight float64
}

func DefaultParams(anchor time.Time) Params {
	return Params{Anchor: anchor, Multipliers: DefaultMultipliers(), TrendWeight: defaultTrendWeight}
}

type daily struct {
	revenue float64
	orders  float64
}

// Project returns exactly horizon predictions in ascending date order,
// starting the day after the last history date.
func Project(history []DailyPoint, horizon int, model enums.ProjectionModel, params Params) ([]Prediction, error) {
	if horizon <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "horizon must be positive").
			WithDetails(map[string]any{"horizon": horizon})
	}
	if !model.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid projection model").
			WithDetails(map[string]any{"model": model.String()})
	}
	for i := 1; i < len(history); i++ {
		if !history[i].Date.After(history[i-1].Date) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "history must be sorted by ascending date").
				WithDetails(map[string]any{"index": i})
		}
	}

	var start time.Time
	switch {
	case len(history) > 0:
		start = history[len(history)-1].Date
	case !params.Anchor.IsZero():
		start = params.Anchor
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "an anchor date is required without history")
	}

	if totalOrders(history) == 0 {
		return empty(start, horizon), nil
	}

	var raw []daily
	switch model {
	case enums.ProjectionModelTrend:
		raw = projectTrend(history, horizon)
	case enums.ProjectionModelSeasonal:
		raw = projectSeasonal(history, start, horizon)
	case enums.ProjectionModelBlended:
		raw = blend(projectTrend(history, horizon), projectSeasonal(history, start, horizon), trendWeight(params.TrendWeight))
	}

	mult := params.Multipliers
	if mult.Weekend == 0 && mult.Sunday == 0 && mult.Payday == 0 {
		mult = DefaultMultipliers()
	}

	out := make([]Prediction, horizon)
	for i := range out {
		date := start.AddDate(0, 0, i+1)
		factor := mult.factor(date)
		revenue := math.Max(0, raw[i].revenue*factor)
		orders := math.Max(0, math.Round(raw[i].orders*factor))
		out[i] = Prediction{
			Date:             date,
			PredictedRevenue: decimal.NewFromFloat(revenue).Round(2),
			PredictedOrders:  int(orders),
			Confidence:       Confidence(i + 1),
		}
	}
	return out, nil
}

// Confidence decays linearly with the number of days ahead, floored at 0.1.
func Confidence(daysAhead int) float64 {
	c := baseConfidence * (1 - confidenceDecay*float64(daysAhead))
	c = math.Max(minConfidence, c)
	return math.Round(c*10000) / 10000
}

func (m Multipliers) factor(date time.Time) float64 {
	f := 1.0
	switch date.Weekday() {
	case time.Friday, time.Saturday:
		f *= nonZero(m.Weekend)
	case time.Sunday:
		f *= nonZero(m.Sunday)
	}
	for _, d := range m.PaydayDays {
		if date.Day() == d {
			f *= nonZero(m.Payday)
			break
		}
	}
	return f
}

func projectTrend(history []DailyPoint, horizon int) []daily {
	revenues, orders := series(history)
	rSlope, rIntercept := regress(revenues)
	oSlope, oIntercept := regress(orders)

	n := float64(len(history))
	out := make([]daily, horizon)
	for i := range out {
		x := n + float64(i)
		out[i] = daily{revenue: rIntercept + rSlope*x, orders: oIntercept + oSlope*x}
	}
	return out
}

func projectSeasonal(history []DailyPoint, start time.Time, horizon int) []daily {
	if len(history) < seasonalMinDays {
		return projectTrend(history, horizon)
	}

	var sums [7]daily
	var counts [7]int
	var all daily
	for _, p := range history {
		wd := p.Date.Weekday()
		r := p.Revenue.InexactFloat64()
		sums[wd].revenue += r
		sums[wd].orders += float64(p.Orders)
		counts[wd]++
		all.revenue += r
		all.orders += float64(p.Orders)
	}
	n := float64(len(history))
	mean := daily{revenue: all.revenue / n, orders: all.orders / n}

	out := make([]daily, horizon)
	for i := range out {
		wd := start.AddDate(0, 0, i+1).Weekday()
		if counts[wd] == 0 {
			out[i] = mean
			continue
		}
		c := float64(counts[wd])
		out[i] = daily{revenue: sums[wd].revenue / c, orders: sums[wd].orders / c}
	}
	return out
}

func blend(trend, seasonal []daily, w float64) []daily {
	out := make([]daily, len(trend))
	for i := range out {
		out[i] = daily{
			revenue: w*trend[i].revenue + (1-w)*seasonal[i].revenue,
			orders:  w*trend[i].orders + (1-w)*seasonal[i].orders,
		}
	}
	return out
}

// regress fits y over x = 0..n-1 by least squares. Fewer than two points give a flat line at the mean.
func regress(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	if n == 0 {
		return 0, 0
	}
	var sumY float64
	for _, v := range y {
		sumY += v
	}
	meanY := sumY / n
	if n < 2 {
		return 0, meanY
	}
	meanX := (n - 1) / 2
	var num, den float64
	for i, v := range y {
		dx := float64(i) - meanX
		num += dx * (v - meanY)
		den += dx * dx
	}
	if den != 0 {
		slope = num / den
	}
	return slope, meanY - slope*meanX
}

func series(history []DailyPoint) (revenues, orders []float64) {
	revenues = make([]float64, len(history))
	orders = make([]float64, len(history))
	for i, p := range history {
		revenues[i] = p.Revenue.InexactFloat64()
		orders[i] = float64(p.Orders)
	}
	return revenues, orders
}

func totalOrders(history []DailyPoint) int {
	total := 0
	for _, p := range history {
		total += p.Orders
	}
	return total
}

func empty(start time.Time, horizon int) []Prediction {
	out := make([]Prediction, horizon)
	for i := range out {
		out[i] = Prediction{Date: start.AddDate(0, 0, i+1), PredictedRevenue: decimal.Zero}
	}
	return out
}

func trendWeight(w float64) float64 {
	if w <= 0 || w > 1 {
		return defaultTrendWeight
	}
	return w
}

func nonZero(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}
