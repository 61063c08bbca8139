package services

import (
	"context"
	"fmt"
	"log/slog"

	"despesas/internal/amqp"
	"despesas/internal/core"
	"despesas/internal/report"
)

// Notifier announces finished exports.
type Notifier interface {
	PublishReportExported(ctx context.Context, msg *amqp.ReportExportedMessage) error
}

// ReportService builds a month report, writes it through the configured
// sink and announces it.
type ReportService struct {
	writer   report.Writer
	sink     string
	notifier Notifier
}

// NewReportService wires a writer named sink. notifier may be nil.
func NewReportService(writer report.Writer, sink string, notifier Notifier) *ReportService {
	return &ReportService{writer: writer, sink: sink, notifier: notifier}
}

func (s *ReportService) Sink() string { return s.sink }

// Export writes the entries of month. A month without entries returns
// core.ErrEmptyReport and nothing is written.
func (s *ReportService) Export(ctx context.Context, src report.EntrySource, month core.MonthKey) (report.Artifact, error) {
	rows, err := report.BuildRows(src, month)
	if err != nil {
		return report.Artifact{}, err
	}

	art, err := s.writer.Write(ctx, month, rows)
	if err != nil {
		return report.Artifact{}, fmt.Errorf("write %s report: %w", s.sink, err)
	}

	ov := core.Summarize(month, src.EntriesForMonth(month))
	slog.InfoContext(ctx, "Report exported",
		"month", month,
		"sink", s.sink,
		"rows", ov.Count,
		"classifications", len(ov.ByClassification),
		"total", ov.Total.StringFixed(2))

	if err := s.publish(ctx, art, ov); err != nil {
		slog.ErrorContext(ctx, "Failed to publish report exported message",
			"month", month, "error", err)
		// The artifact exists; the notification is best-effort.
	}
	return art, nil
}

func (s *ReportService) publish(ctx context.Context, art report.Artifact, ov core.MonthOverview) error {
	if s.notifier == nil {
		slog.DebugContext(ctx, "AMQP notifier not configured, skipping report message")
		return nil
	}
	msg := amqp.NewReportExportedMessage(string(ov.Month), s.sink, art.Name, art.Ref, ov.Count, ov.Total.StringFixed(2))
	return s.notifier.PublishReportExported(ctx, msg)
}
