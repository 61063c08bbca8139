package backend

import (
	"context"
	"fmt"
	"log/slog"

	"despesas/internal/amqp"
	"despesas/internal/report"
	"despesas/internal/report/google"
	"despesas/internal/report/xlsx"
	"despesas/internal/services"
)

// notifier is what the factory needs from a broker client.
type notifier interface {
	services.Notifier
	Close() error
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger

	dialNotifier func(ctx context.Context, url, exchange, routingKey string) (notifier, error)
	sheetsWriter func(ctx context.Context, config Config) (report.Writer, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
		dialNotifier: func(ctx context.Context, url, exchange, routingKey string) (notifier, error) {
			return amqp.NewClient(ctx, url, exchange, routingKey)
		},
		sheetsWriter: func(ctx context.Context, config Config) (report.Writer, error) {
			return google.NewFromCredentials(ctx, config.GoogleSpreadsheetID, google.Credentials{
				JSON:            config.GoogleServiceAccountJSON,
				File:            config.GoogleServiceAccountFile,
				OAuthClientJSON: config.GoogleOAuthClientJSON,
				OAuthClientFile: config.GoogleOAuthClientFile,
				OAuthTokenJSON:  config.GoogleOAuthTokenJSON,
				OAuthTokenFile:  config.GoogleOAuthTokenFile,
			})
		},
	}
}

// Create implements Factory.Create
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	writer, err := f.createWriter(ctx, config)
	if err != nil {
		return nil, err
	}

	// Initialize AMQP client (optional)
	var (
		n       services.Notifier
		cleanup CleanupFunc
	)
	if config.AMQPURL != "" {
		client, err := f.dialNotifier(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without notifications", "error", err)
		} else {
			n = client
			cleanup = client.Close
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"routing_key", config.AMQPRoutingKey)
		}
	}

	f.logger.Info("Initialized report pipeline",
		"sink", config.Sink,
		"amqp_enabled", n != nil)

	return &Result{
		Reports:         services.NewReportService(writer, config.Sink.String(), n),
		Cleanup:         cleanup,
		NotifierEnabled: n != nil,
	}, nil
}

func (f *DefaultFactory) createWriter(ctx context.Context, config Config) (report.Writer, error) {
	switch config.Sink {
	case XLSXSink:
		return xlsx.New(), nil
	case SheetsSink:
		w, err := f.sheetsWriter(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets writer: %w", err)
		}
		f.logger.Info("Initialized Google Sheets writer", "spreadsheet_id", config.GoogleSpreadsheetID)
		return w, nil
	default:
		return nil, fmt.Errorf("unsupported report sink: %s", config.Sink)
	}
}
