// Package xlsx writes monthly reports as Excel workbooks.
package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"despesas/internal/core"
	"despesas/internal/report"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Writer struct{}

var _ report.Writer = (*Writer)(nil)

func New() *Writer { return &Writer{} }

// Write renders rows into a single-sheet workbook. Amounts are numeric cells
// formatted as BRL.
func (w *Writer) Write(ctx context.Context, month core.MonthKey, rows []report.Row) (report.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return report.Artifact{}, err
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", report.SheetName); err != nil {
		return report.Artifact{}, fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(report.Header))
	for i, h := range report.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(report.SheetName, "A1", &header); err != nil {
		return report.Artifact{}, fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return report.Artifact{}, err
		}
		vals := r.Values()
		if err := f.SetSheetRow(report.SheetName, cell, &vals); err != nil {
			return report.Artifact{}, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	numFmt := report.CurrencyFormat
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return report.Artifact{}, fmt.Errorf("currency style: %w", err)
	}
	if len(rows) > 0 {
		last := fmt.Sprintf("C%d", len(rows)+1)
		if err := f.SetCellStyle(report.SheetName, "C2", last, style); err != nil {
			return report.Artifact{}, fmt.Errorf("apply currency style: %w", err)
		}
	}
	_ = f.SetColWidth(report.SheetName, "A", "A", 12)
	_ = f.SetColWidth(report.SheetName, "B", "B", 28)
	_ = f.SetColWidth(report.SheetName, "C", "D", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return report.Artifact{}, fmt.Errorf("encode workbook: %w", err)
	}
	return report.Artifact{
		Name:        report.FileName(month, "xlsx"),
		ContentType: ContentType,
		Data:        buf.Bytes(),
	}, nil
}
