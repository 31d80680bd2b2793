package trends

import (
	"math"
	"time"

	"github.com/delizzia/pos-backend/pkg/db/models"
	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// DailyHistory groups non-cancelled orders by local calendar day in loc.
// Days without orders between the first and last day are filled with zeros.
func DailyHistory(orders []models.Order, loc *time.Location) []DailyPoint {
	if loc == nil {
		loc = time.UTC
	}
	byDay := map[time.Time]*DailyPoint{}
	var first, last time.Time
	for _, o := range orders {
		if o.Status == enums.OrderStatusCancelled {
			continue
		}
		day := localDay(o.CreatedAt, loc)
		p, ok := byDay[day]
		if !ok {
			p = &DailyPoint{Date: day, Revenue: decimal.Zero}
			byDay[day] = p
		}
		p.Orders++
		p.Revenue = p.Revenue.Add(o.Total)
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
	}
	if len(byDay) == 0 {
		return nil
	}

	var out []DailyPoint
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if p, ok := byDay[day]; ok {
			out = append(out, *p)
			continue
		}
		out = append(out, DailyPoint{Date: day, Revenue: decimal.Zero})
	}
	return out
}

// Band is a revenue interval around a prediction.
type Band struct {
	Date  time.Time
	Lower decimal.Decimal
	Upper decimal.Decimal
}

// ConfidenceBands widens each prediction by the historical daily revenue
// standard deviation, scaled up as confidence drops. Needs at least two days of history.
func ConfidenceBands(history []DailyPoint, predictions []Prediction) []Band {
	if len(history) < 2 || len(predictions) == 0 {
		return nil
	}
	sd := stdDev(history)
	out := make([]Band, len(predictions))
	for i, p := range predictions {
		v := p.PredictedRevenue.InexactFloat64()
		width := sd * (2 - p.Confidence)
		out[i] = Band{
			Date:  p.Date,
			Lower: decimal.NewFromFloat(math.Max(0, v-width)).Round(2),
			Upper: decimal.NewFromFloat(v + width).Round(2),
		}
	}
	return out
}

// stdDev is the sample standard deviation of daily revenue.
func stdDev(history []DailyPoint) float64 {
	n := float64(len(history))
	var sum float64
	for _, p := range history {
		sum += p.Revenue.InexactFloat64()
	}
	mean := sum / n
	var sq float64
	for _, p := range history {
		d := p.Revenue.InexactFloat64() - mean
		sq += d * d
	}
	return math.Sqrt(sq / (n - 1))
}

func localDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
