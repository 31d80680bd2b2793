package cron

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/delizzia/pos-backend/internal/reports"
	"github.com/delizzia/pos-backend/pkg/clock"
	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/delizzia/pos-backend/pkg/logger"
	"go.uber.org/multierr"
)

type reportExporter interface {
	ExportReport(ctx context.Context, from, to time.Time, granularity enums.BucketGranularity, w io.Writer) (string, error)
}

type ReportExportJobParams struct {
	Logger   *logger.Logger
	Exporter reportExporter
	Dir      string
	Location *time.Location
	Clock    clock.Clock
}

func NewReportExportJob(params ReportExportJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Exporter == nil {
		return nil, fmt.Errorf("report exporter required")
	}
	if params.Dir == "" {
		return nil, fmt.Errorf("export directory required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &reportExportJob{
		logg:     params.Logger,
		exporter: params.Exporter,
		dir:      params.Dir,
		loc:      loc,
		clock:    clock.OrReal(params.Clock),
	}, nil
}

type reportExportJob struct {
	logg     *logger.Logger
	exporter reportExporter
	dir      string
	loc      *time.Location
	clock    clock.Clock
}

func (j *reportExportJob) Name() string { return "daily-report-export" }

// Run exports yesterday's daily report (business timezone) once; an existing file is left alone.
func (j *reportExportJob) Run(ctx context.Context) error {
	window := reports.DailyWindow(j.clock.Now().In(j.loc).AddDate(0, 0, -1), j.loc)
	name := reports.ExportFilename(reports.PeriodReport{PeriodStart: window.Start, PeriodEnd: window.End})
	target := filepath.Join(j.dir, name)

	if _, err := os.Stat(target); err == nil {
		j.logg.Debug(j.logg.WithField(ctx, "file", target), "report already exported")
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", target, err)
	}

	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(j.dir, ".report-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, exportErr := j.exporter.ExportReport(ctx, window.Start, window.End, window.Granularity, tmp)
	err = multierr.Append(exportErr, tmp.Close())
	if err == nil {
		err = os.Rename(tmpName, target)
	}
	if err != nil {
		return multierr.Append(fmt.Errorf("export %s: %w", name, err), removeIfExists(tmpName))
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"file":         target,
		"period_start": window.Start.Format(time.RFC3339),
	}), "daily report exported")
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
