package backend

import (
	"context"

	"despesas/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the report pipeline and an optional cleanup function
type Result struct {
	Reports *services.ReportService
	Cleanup CleanupFunc
	// NotifierEnabled reports whether exports publish report.exported.
	NotifierEnabled bool
}

// Factory builds the report pipeline based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for the report pipeline
type Config struct {
	Sink SinkType

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleOAuthClientFile    string
	GoogleOAuthTokenFile     string
	GoogleOAuthClientJSON    string
	GoogleOAuthTokenJSON     string

	// AMQP (optional)
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// SinkType represents where reports are written
type SinkType string

const (
	XLSXSink   SinkType = "xlsx"
	SheetsSink SinkType = "sheets"
)

// String implements fmt.Stringer
func (st SinkType) String() string {
	return string(st)
}

// IsValid returns true if the sink type is valid
func (st SinkType) IsValid() bool {
	switch st {
	case XLSXSink, SheetsSink:
		return true
	default:
		return false
	}
}
