package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"despesas/internal/amqp"
	"despesas/internal/core"
	"despesas/internal/report"
	"despesas/internal/store"
)

type fakeWriter struct {
	calls int
	rows  []report.Row
	err   error
}

func (f *fakeWriter) Write(_ context.Context, month core.MonthKey, rows []report.Row) (report.Artifact, error) {
	f.calls++
	f.rows = rows
	if f.err != nil {
		return report.Artifact{}, f.err
	}
	return report.Artifact{Name: report.FileName(month, "xlsx"), Data: []byte("x")}, nil
}

type fakeNotifier struct {
	msgs []*amqp.ReportExportedMessage
	err  error
}

func (f *fakeNotifier) PublishReportExported(_ context.Context, msg *amqp.ReportExportedMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

func seeded(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	require.NoError(t, s.Add("2025-03-15", core.Entry{Classification: "Farmácia", Amount: decimal.RequireFromString("150.5"), Priority: core.PriorityHigh}))
	require.NoError(t, s.Add("2025-03-02", core.Entry{Classification: "Mercado", Amount: decimal.RequireFromString("42"), Priority: core.PriorityMedium}))
	return s
}

func TestReportService_Export(t *testing.T) {
	w := &fakeWriter{}
	n := &fakeNotifier{}
	svc := NewReportService(w, "xlsx", n)

	art, err := svc.Export(context.Background(), seeded(t), "2025-03")
	require.NoError(t, err)
	assert.Equal(t, "despesas_2025-03.xlsx", art.Name)
	require.Len(t, w.rows, 2)
	assert.Equal(t, core.DateKey("2025-03-02"), w.rows[0].Date)

	require.Len(t, n.msgs, 1)
	assert.Equal(t, "2025-03", n.msgs[0].Month)
	assert.Equal(t, "xlsx", n.msgs[0].Sink)
	assert.Equal(t, 2, n.msgs[0].Rows)
	assert.Equal(t, "192.50", n.msgs[0].Total)
}

func TestReportService_EmptyMonth(t *testing.T) {
	w := &fakeWriter{}
	n := &fakeNotifier{}
	svc := NewReportService(w, "xlsx", n)

	_, err := svc.Export(context.Background(), store.New(), "2025-03")
	assert.ErrorIs(t, err, core.ErrEmptyReport)
	assert.Zero(t, w.calls)
	assert.Empty(t, n.msgs)
}

func TestReportService_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("disk full")}
	n := &fakeNotifier{}
	svc := NewReportService(w, "sheets", n)

	_, err := svc.Export(context.Background(), seeded(t), "2025-03")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write sheets report")
	assert.Empty(t, n.msgs)
}

func TestReportService_PublishFailureDoesNotFailExport(t *testing.T) {
	n := &fakeNotifier{err: amqp.ErrCircuitOpen}
	svc := NewReportService(&fakeWriter{}, "xlsx", n)

	art, err := svc.Export(context.Background(), seeded(t), "2025-03")
	require.NoError(t, err)
	assert.NotEmpty(t, art.Data)
	assert.Len(t, n.msgs, 1)
}

func TestReportService_NilNotifier(t *testing.T) {
	svc := NewReportService(&fakeWriter{}, "xlsx", nil)
	_, err := svc.Export(context.Background(), seeded(t), "2025-03")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", svc.Sink())
}
