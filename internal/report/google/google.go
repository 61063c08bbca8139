// Package google exports monthly reports into a Google Sheets spreadsheet,
// one tab per month.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"despesas/internal/core"
	"despesas/internal/report"
)

type Writer struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ report.Writer = (*Writer)(nil)

// Credentials selects how the Sheets API is reached. A service account wins
// over an OAuth client and token; inline JSON wins over a file.
type Credentials struct {
	JSON string
	File string

	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenJSON  string
	OAuthTokenFile  string
}

func (c Credentials) hasServiceAccount() bool {
	return strings.TrimSpace(c.JSON) != "" || strings.TrimSpace(c.File) != ""
}

func New(svc *gsheet.Service, spreadsheetID string) *Writer {
	return &Writer{svc: svc, spreadsheetID: spreadsheetID}
}

// NewFromCredentials creates a writer authenticated with a service account.
func NewFromCredentials(ctx context.Context, spreadsheetID string, creds Credentials) (*Writer, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, spreadsheetID), nil
}

func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	if !creds.hasServiceAccount() {
		if creds.OAuthClientJSON == "" && creds.OAuthClientFile == "" {
			return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
		}
		return newOAuthSheetsService(ctx, creds)
	}

	credentialsJSON, err := readInlineOrFile(creds.JSON, creds.File)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func readInlineOrFile(inline, file string) ([]byte, error) {
	if strings.TrimSpace(inline) != "" {
		return []byte(inline), nil
	}
	return os.ReadFile(file)
}

// TabName returns the tab used for month.
func TabName(month core.MonthKey) string {
	return fmt.Sprintf("%s %s", report.SheetName, month)
}

// Write replaces the content of the month tab with the header and rows,
// creating the tab when missing. The returned artifact carries the A1 range
// that was written.
func (w *Writer) Write(ctx context.Context, month core.MonthKey, rows []report.Row) (report.Artifact, error) {
	if w.svc == nil {
		return report.Artifact{}, errors.New("sheets service not initialized")
	}
	tab := TabName(month)
	sheetID, err := w.ensureTab(ctx, tab)
	if err != nil {
		return report.Artifact{}, err
	}

	all := fmt.Sprintf("'%s'!A:D", tab)
	if _, err := w.svc.Spreadsheets.Values.Clear(w.spreadsheetID, all, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return report.Artifact{}, fmt.Errorf("clear %s: %w", all, err)
	}

	values := make([][]any, 0, len(rows)+1)
	header := make([]any, len(report.Header))
	for i, h := range report.Header {
		header[i] = h
	}
	values = append(values, header)
	for _, r := range rows {
		values = append(values, r.Values())
	}
	rng := fmt.Sprintf("'%s'!A1:D%d", tab, len(values))
	_, err = w.svc.Spreadsheets.Values.Update(w.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return report.Artifact{}, fmt.Errorf("write %s: %w", rng, err)
	}

	if len(rows) > 0 {
		if err := w.formatAmounts(ctx, sheetID, len(rows)); err != nil {
			// Values are already in place; a missing mask is cosmetic.
			slog.WarnContext(ctx, "Failed to apply currency format", "tab", tab, "error", err)
		}
	}

	return report.Artifact{Name: tab, Ref: rng}, nil
}

func (w *Writer) ensureTab(ctx context.Context, tab string) (int64, error) {
	ss, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			return s.Properties.SheetId, nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tab}},
	}}}
	resp, err := w.svc.Spreadsheets.BatchUpdate(w.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("add tab %s: %w", tab, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("add tab %s: empty reply", tab)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (w *Writer) formatAmounts(ctx context.Context, sheetID int64, n int) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		RepeatCell: &gsheet.RepeatCellRequest{
			Range: &gsheet.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    1,
				EndRowIndex:      int64(n + 1),
				StartColumnIndex: 2,
				EndColumnIndex:   3,
				ForceSendFields:  []string{"SheetId"},
			},
			Cell: &gsheet.CellData{UserEnteredFormat: &gsheet.CellFormat{
				NumberFormat: &gsheet.NumberFormat{Type: "CURRENCY", Pattern: report.CurrencyFormat},
			}},
			Fields: "userEnteredFormat.numberFormat",
		},
	}}}
	_, err := w.svc.Spreadsheets.BatchUpdate(w.spreadsheetID, req).Context(ctx).Do()
	return err
}
