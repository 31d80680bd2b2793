package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	channelsSheet = "Channels"
	bucketsSheet  = "Buckets"

	// XLSXContentType is the media type of ExportXLSX output.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportXLSX writes the report as a workbook with summary, channel and time sheets.
func ExportXLSX(report PeriodReport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	summary := [][]any{
		{"Metric", "Value"},
		{"Period start", report.PeriodStart.Format(time.RFC3339)},
		{"Period end", report.PeriodEnd.Format(time.RFC3339)},
		{"Timezone", report.Timezone},
		{"Granularity", report.Granularity.String()},
		{"Total orders", report.TotalOrders},
		{"Total revenue", cellAmount(report.TotalRevenue)},
		{"Total costs", cellAmount(report.TotalCosts)},
		{"Total profit", cellAmount(report.TotalProfit)},
		{"Average order value", cellAmount(report.AverageOrderValue)},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}

	channels := [][]any{{"Channel", "Orders", "Revenue", "Commission"}}
	for _, ch := range report.Channels() {
		t := report.ChannelBreakdown[ch]
		channels = append(channels, []any{ch.String(), t.Orders, cellAmount(t.Revenue), cellAmount(t.Commission)})
	}
	if err := addSheet(f, channelsSheet, channels); err != nil {
		return err
	}

	buckets := [][]any{{"Bucket", "Orders", "Revenue"}}
	for _, key := range report.BucketKeys() {
		b := report.TimeBreakdown[key]
		buckets = append(buckets, []any{key, b.Orders, cellAmount(b.Revenue)})
	}
	if err := addSheet(f, bucketsSheet, buckets); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ExportFilename names the workbook for a report.
func ExportFilename(report PeriodReport) string {
	return fmt.Sprintf("report-%s-%s.xlsx", report.PeriodStart.Format(dayKeyLayout), report.PeriodEnd.Format(dayKeyLayout))
}

func addSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// cellAmount converts a currency amount for display in a spreadsheet cell.
func cellAmount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
