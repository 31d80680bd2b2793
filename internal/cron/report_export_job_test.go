package cron

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/delizzia/pos-backend/pkg/clock"
	"github.com/delizzia/pos-backend/pkg/enums"
)

type fakeExporter struct {
	calls       int
	from, to    time.Time
	granularity enums.BucketGranularity
	err         error
}

func (f *fakeExporter) ExportReport(_ context.Context, from, to time.Time, g enums.BucketGranularity, w io.Writer) (string, error) {
	f.calls++
	f.from, f.to, f.granularity = from, to, g
	if f.err != nil {
		return "", f.err
	}
	_, err := w.Write([]byte("xlsx"))
	return "ignored.xlsx", err
}

var ect = time.FixedZone("ECT", -5*3600)

func newExportJob(t *testing.T, exporter *fakeExporter, dir string) Job {
	t.Helper()
	// 01:30 local on Mar 5 exports Mar 4.
	now := time.Date(2024, 3, 5, 6, 30, 0, 0, time.UTC)
	job, err := NewReportExportJob(ReportExportJobParams{
		Logger:   testLogger(),
		Exporter: exporter,
		Dir:      dir,
		Location: ect,
		Clock:    clock.Fixed{At: now},
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	return job
}

func TestReportExportJobWritesYesterday(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	exporter := &fakeExporter{}
	job := newExportJob(t, exporter, dir)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if exporter.calls != 1 {
		t.Fatalf("expected one export, got %d", exporter.calls)
	}
	if want := time.Date(2024, 3, 4, 0, 0, 0, 0, ect); !exporter.from.Equal(want) {
		t.Fatalf("expected window start %s, got %s", want, exporter.from)
	}
	if exporter.granularity != enums.BucketGranularityHour {
		t.Fatalf("expected hourly buckets, got %s", exporter.granularity)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report-2024-03-04-2024-03-04.xlsx"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "xlsx" {
		t.Fatalf("unexpected file contents %q", data)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if exporter.calls != 1 {
		t.Fatalf("existing export should be skipped")
	}
}

func TestReportExportJobCleansUpOnFailure(t *testing.T) {
	dir := t.TempDir()
	exporter := &fakeExporter{err: errors.New("db unavailable")}
	job := newExportJob(t, exporter, dir)

	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected export error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files left behind, found %d", len(entries))
	}
}
