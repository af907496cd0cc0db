// Package sheets exports ledger data to a Google spreadsheet: daily-log
// entries as rows and per-card month summaries. The export is a side channel;
// failures are logged by callers and never reach the core.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"cuotas/internal/core"
	"cuotas/internal/report"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base sheet name without year; the current year is prefixed so each
	// year's export lands on its own tab.
	sheetBase string
}

// NewFromEnv creates a Sheets exporter using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (default "Gastos"), plus service-account
// credentials via GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Exporter, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetBase := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetBase == "" {
		sheetBase = "Gastos"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from the environment.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// sheetName returns the year-prefixed tab name, e.g. "2026 Gastos".
func (e *Exporter) sheetName(year int) string {
	return fmt.Sprintf("%d %s", year, e.sheetBase)
}

// AppendDailyEntry appends one journal entry as a row:
// date | ledger | description | category | amount.
func (e *Exporter) AppendDailyEntry(ctx context.Context, ledgerID string, item core.Item) error {
	year := time.Now().Year()
	if t, err := time.Parse("2006-01-02", item.Date); err == nil {
		year = t.Year()
	}

	values := &gsheet.ValueRange{
		Values: [][]interface{}{{
			item.Date,
			ledgerID,
			item.Description,
			string(item.Category),
			item.TotalAmount.String(),
		}},
	}

	rng := fmt.Sprintf("%s!A:E", e.sheetName(year))
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append daily entry: %w", err)
	}

	slog.InfoContext(ctx, "Exported daily entry to sheet",
		"ledger_id", ledgerID,
		"description", item.Description,
		"amount", item.TotalAmount.String())

	return nil
}

// AppendMonthSummary appends one row per card with its current monthly due
// and outstanding totals: month | ledger | card | monthly due | outstanding.
func (e *Exporter) AppendMonthSummary(ctx context.Context, ledgerID string, snap core.Snapshot) error {
	now := time.Now()
	month := now.Format("2006-01")

	rows := make([][]interface{}, 0, len(snap.Cards))
	for _, card := range snap.Cards {
		rows = append(rows, []interface{}{
			month,
			ledgerID,
			card.Name,
			report.MonthlyDue(card.Items).String(),
			card.Outstanding().String(),
		})
	}
	if len(rows) == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A:E", e.sheetName(now.Year()))
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append month summary: %w", err)
	}

	slog.InfoContext(ctx, "Exported month summary to sheet",
		"ledger_id", ledgerID,
		"cards", len(rows),
		"month", month)

	return nil
}
