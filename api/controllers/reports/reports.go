package reports

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/delizzia/pos-backend/api/responses"
	"github.com/delizzia/pos-backend/api/validators"
	"github.com/delizzia/pos-backend/internal/analytics"
	internalreports "github.com/delizzia/pos-backend/internal/reports"
	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/logger"
)

func unavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable")
}

// Period aggregates orders between ?from and ?to into ?bucket sized buckets.
// Bare dates are read in the business timezone and ?to covers its whole day.
func Period(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable())
			return
		}
		from, to, bucket, err := parsePeriod(r, svc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		report, err := svc.PeriodReport(ctx, from, to, bucket)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, analytics.FromReport(report))
	}
}

// Daily reports a single local day (?date, default today) bucketed by hour.
func Daily(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable())
			return
		}
		date, err := validators.ParseQueryDate(r, "date", svc.Location())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		report, err := svc.DailyReport(ctx, date)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, analytics.FromReport(report))
	}
}

// Weekly reports seven days from ?start, defaulting to the last seven days.
func Weekly(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable())
			return
		}
		start, err := validators.ParseQueryDate(r, "start", svc.Location())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		report, err := svc.WeeklyReport(ctx, start)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, analytics.FromReport(report))
	}
}

func Monthly(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable())
			return
		}
		year, err := validators.ParseQueryInt(r, "year", 0, 2000, 2100)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		month, err := validators.ParseQueryInt(r, "month", 0, 1, 12)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if (year == 0) != (month == 0) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "year and month must be provided together"))
			return
		}
		report, err := svc.MonthlyReport(ctx, year, time.Month(month))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, analytics.FromReport(report))
	}
}

// Export streams the period report as an xlsx download.
func Export(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable())
			return
		}
		from, to, bucket, err := parsePeriod(r, svc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var buf bytes.Buffer
		filename, err := svc.ExportReport(ctx, from, to, bucket, &buf)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteAttachment(w, internalreports.XLSXContentType, filename, buf.Bytes())
	}
}

// parsePeriod reads ?from, ?to and ?bucket. Omitting both bounds selects today.
func parsePeriod(r *http.Request, svc analytics.Service) (time.Time, time.Time, enums.BucketGranularity, error) {
	var bucket enums.BucketGranularity
	if raw := strings.TrimSpace(r.URL.Query().Get("bucket")); raw != "" {
		parsed, err := enums.ParseBucketGranularity(strings.ToLower(raw))
		if err != nil {
			return time.Time{}, time.Time{}, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bucket").
				WithDetails(map[string]any{"bucket": raw})
		}
		bucket = parsed
	}

	loc := svc.Location()
	from, err := validators.ParseQueryTime(r, "from", loc, false)
	if err != nil {
		return time.Time{}, time.Time{}, "", err
	}
	to, err := validators.ParseQueryTime(r, "to", loc, true)
	if err != nil {
		return time.Time{}, time.Time{}, "", err
	}
	switch {
	case from == nil && to == nil:
		window := svc.DefaultWindow()
		if bucket == "" {
			bucket = window.Granularity
		}
		return window.Start, window.End, bucket, nil
	case from == nil || to == nil:
		return time.Time{}, time.Time{}, "", pkgerrors.New(pkgerrors.CodeValidation, "from and to must be provided together")
	case to.Before(*from):
		return time.Time{}, time.Time{}, "", pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from")
	}
	return *from, *to, bucket, nil
}
