// Package report turns a month of expenses into spreadsheet rows and hands
// them to a Writer, either a local workbook or a Google Sheets tab.
package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"despesas/internal/core"
)

// SheetName is the tab name used by the workbook export.
const SheetName = "Despesas"

// Header is the first row of every export.
var Header = []string{"Data", "Classificação", "Valor (BRL)", "Prioridade"}

// CurrencyFormat is the number format applied to the amount column.
const CurrencyFormat = `"R$" #,##0.00`

type Row struct {
	Date           core.DateKey
	Classification string
	Amount         decimal.Decimal
	Priority       core.Priority
}

// Values returns the row as spreadsheet cells with the amount kept numeric.
func (r Row) Values() []any {
	return []any{string(r.Date), r.Classification, r.Amount.InexactFloat64(), r.Priority.String()}
}

// Artifact is the result of a write. Data is set for file exports, Ref for
// remote sinks.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
	Ref         string
}

// Ports for report sinks.
type (
	// EntrySource exposes the entries of a month in date order.
	EntrySource interface {
		EntriesForMonth(month core.MonthKey) []core.Dated
	}

	Writer interface {
		Write(ctx context.Context, month core.MonthKey, rows []Row) (Artifact, error)
	}
)

// BuildRows flattens the entries of month into rows, ascending by date and
// insertion order within a day. A month without entries yields
// core.ErrEmptyReport.
func BuildRows(src EntrySource, month core.MonthKey) ([]Row, error) {
	entries := src.EntriesForMonth(month)
	if len(entries) == 0 {
		return nil, core.ErrEmptyReport
	}
	rows := make([]Row, 0, len(entries))
	for _, d := range entries {
		rows = append(rows, Row{
			Date:           d.Date,
			Classification: d.Entry.Classification,
			Amount:         d.Entry.Amount,
			Priority:       d.Entry.Priority,
		})
	}
	return rows, nil
}

// FileName returns despesas_<YYYY-MM>.<ext>.
func FileName(month core.MonthKey, ext string) string {
	return fmt.Sprintf("despesas_%s.%s", month, ext)
}
