// Package analytics runs reports, channel comparison, projections and pricing
// advice over stored orders.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/delizzia/pos-backend/internal/pricing"
	"github.com/delizzia/pos-backend/internal/reports"
	"github.com/delizzia/pos-backend/internal/trends"
	"github.com/delizzia/pos-backend/pkg/clock"
	"github.com/delizzia/pos-backend/pkg/db/models"
	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/logger"
	"github.com/delizzia/pos-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 365
	DefaultHorizon     = 7
	MaxHorizon         = 90
)

type orderHistory interface {
	History(ctx context.Context, from, to time.Time, channel *enums.Channel) ([]models.Order, error)
}

type menuCatalog interface {
	Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
}

// Service exposes the read side of the back office.
type Service interface {
	PeriodReport(ctx context.Context, from, to time.Time, granularity enums.BucketGranularity) (reports.PeriodReport, error)
	DailyReport(ctx context.Context, date time.Time) (reports.PeriodReport, error)
	WeeklyReport(ctx context.Context, start time.Time) (reports.PeriodReport, error)
	MonthlyReport(ctx context.Context, year int, month time.Month) (reports.PeriodReport, error)
	ExportReport(ctx context.Context, from, to time.Time, granularity enums.BucketGranularity, w io.Writer) (string, error)
	ChannelPerformance(ctx context.Context, from, to time.Time) ([]reports.ChannelStats, error)
	Trends(ctx context.Context, req TrendsRequest) (*TrendsResult, error)
	RecommendPrice(ctx context.Context, itemID uuid.UUID, targetMargin *decimal.Decimal) (pricing.Recommendation, error)
	Location() *time.Location
	DefaultWindow() reports.Window
}

// TrendsRequest selects the history window and projection settings. Zero values take defaults.
type TrendsRequest struct {
	Days    int
	Horizon int
	Model   enums.ProjectionModel
}

// TrendsResult bundles the history used with its projection.
type TrendsResult struct {
	Model       enums.ProjectionModel
	History     []trends.DailyPoint
	Predictions []trends.Prediction
	Bands       []trends.Band
}

// ServiceParams wires the analytics service dependencies.
type ServiceParams struct {
	Orders       orderHistory
	Menu         menuCatalog
	Clock        clock.Clock
	Location     *time.Location
	Multipliers  trends.Multipliers
	Pricing      pricing.Options
	TargetMargin decimal.Decimal
	Metrics      *metrics.OrderMetrics
	Logger       *logger.Logger
}

type service struct {
	orders       orderHistory
	menu         menuCatalog
	clock        clock.Clock
	loc          *time.Location
	multipliers  trends.Multipliers
	pricing      pricing.Options
	targetMargin decimal.Decimal
	metrics      *metrics.OrderMetrics
	logg         *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, errors.New("order history required")
	}
	if params.Menu == nil {
		return nil, errors.New("menu catalog required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	multipliers := params.Multipliers
	if multipliers.Weekend == 0 && multipliers.Sunday == 0 && multipliers.Payday == 0 {
		multipliers = trends.DefaultMultipliers()
	}
	margin := params.TargetMargin
	if margin.IsZero() {
		margin = decimal.RequireFromString("0.30")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		orders:       params.Orders,
		menu:         params.Menu,
		clock:        clock.OrReal(params.Clock),
		loc:          loc,
		multipliers:  multipliers,
		pricing:      params.Pricing,
		targetMargin: margin,
		metrics:      params.Metrics,
		logg:         logg,
	}, nil
}

func (s *service) Location() *time.Location { return s.loc }

// DefaultWindow is today in the business timezone, read from the injected clock.
func (s *service) DefaultWindow() reports.Window {
	return reports.DefaultWindow(s.clock, s.loc)
}

func (s *service) PeriodReport(ctx context.Context, from, to time.Time, granularity enums.BucketGranularity) (reports.PeriodReport, error) {
	if granularity == "" {
		granularity = enums.BucketGranularityDay
	}
	if !granularity.IsValid() {
		return reports.PeriodReport{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid bucket granularity").
			WithDetails(map[string]any{"bucket": granularity.String()})
	}
	orders, err := s.orders.History(ctx, from, to, nil)
	if err != nil {
		return reports.PeriodReport{}, err
	}
	report, err := reports.BuildReport(orders, from, to, granularity, s.loc)
	if err != nil {
		return reports.PeriodReport{}, err
	}
	s.metrics.IncReport(string(granularity))
	return report, nil
}

func (s *service) DailyReport(ctx context.Context, date time.Time) (reports.PeriodReport, error) {
	if date.IsZero() {
		date = s.clock.Now()
	}
	return s.windowReport(ctx, reports.DailyWindow(date, s.loc))
}

func (s *service) WeeklyReport(ctx context.Context, start time.Time) (reports.PeriodReport, error) {
	if start.IsZero() {
		start = s.clock.Now().In(s.loc).AddDate(0, 0, -6)
	}
	return s.windowReport(ctx, reports.WeeklyWindow(start, s.loc))
}

func (s *service) MonthlyReport(ctx context.Context, year int, month time.Month) (reports.PeriodReport, error) {
	if year == 0 || month == 0 {
		now := s.clock.Now().In(s.loc)
		year, month = now.Year(), now.Month()
	}
	if month < time.January || month > time.December {
		return reports.PeriodReport{}, pkgerrors.New(pkgerrors.CodeValidation, "month must be between 1 and 12")
	}
	return s.windowReport(ctx, reports.MonthlyWindow(year, month, s.loc))
}

func (s *service) windowReport(ctx context.Context, w reports.Window) (reports.PeriodReport, error) {
	return s.PeriodReport(ctx, w.Start, w.End, w.Granularity)
}

// ExportReport writes the period report as an xlsx workbook to w and returns its file name.
func (s *service) ExportReport(ctx context.Context, from, to time.Time, granularity enums.BucketGranularity, w io.Writer) (string, error) {
	report, err := s.PeriodReport(ctx, from, to, granularity)
	if err != nil {
		return "", err
	}
	if err := reports.ExportXLSX(report, w); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "export report")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"period_start": report.PeriodStart.Format(time.RFC3339),
		"period_end":   report.PeriodEnd.Format(time.RFC3339),
		"orders":       report.TotalOrders,
	}), "report exported")
	return reports.ExportFilename(report), nil
}

func (s *service) ChannelPerformance(ctx context.Context, from, to time.Time) ([]reports.ChannelStats, error) {
	orders, err := s.orders.History(ctx, from, to, nil)
	if err != nil {
		return nil, err
	}
	return reports.ChannelPerformance(orders, from, to), nil
}

// Trends projects from the last Days local days, today included.
func (s *service) Trends(ctx context.Context, req TrendsRequest) (*TrendsResult, error) {
	req, err := normalizeTrends(req)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().In(s.loc)
	y, m, d := now.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, s.loc).AddDate(0, 0, -(req.Days - 1))

	orders, err := s.orders.History(ctx, from, now, nil)
	if err != nil {
		return nil, err
	}
	history := trends.DailyHistory(orders, s.loc)

	params := trends.DefaultParams(time.Date(y, m, d, 0, 0, 0, 0, s.loc))
	params.Multipliers = s.multipliers
	predictions, err := trends.Project(history, req.Horizon, req.Model, params)
	if err != nil {
		return nil, err
	}
	return &TrendsResult{
		Model:       req.Model,
		History:     history,
		Predictions: predictions,
		Bands:       trends.ConfidenceBands(history, predictions),
	}, nil
}

func normalizeTrends(req TrendsRequest) (TrendsRequest, error) {
	if req.Days == 0 {
		req.Days = DefaultHistoryDays
	}
	if req.Horizon == 0 {
		req.Horizon = DefaultHorizon
	}
	if req.Model == "" {
		req.Model = enums.ProjectionModelBlended
	}
	switch {
	case req.Days < 1 || req.Days > MaxHistoryDays:
		return req, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("days must be between 1 and %d", MaxHistoryDays))
	case req.Horizon < 1 || req.Horizon > MaxHorizon:
		return req, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("horizon must be between 1 and %d", MaxHorizon))
	case !req.Model.IsValid():
		return req, pkgerrors.New(pkgerrors.CodeValidation, "invalid projection model").
			WithDetails(map[string]any{"model": req.Model.String()})
	}
	return req, nil
}

// RecommendPrice advises on the menu item's price using its stored cost and price.
// A nil targetMargin uses the configured default.
func (s *service) RecommendPrice(ctx context.Context, itemID uuid.UUID, targetMargin *decimal.Decimal) (pricing.Recommendation, error) {
	item, err := s.menu.Get(ctx, itemID)
	if err != nil {
		return pricing.Recommendation{}, err
	}
	margin := s.targetMargin
	if targetMargin != nil {
		margin = *targetMargin
	}
	return pricing.RecommendPrice(item.ID, item.Cost, item.Price, margin, s.pricing)
}
