package record

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/nmburu/supportprobe/internal/config"
	"github.com/nmburu/supportprobe/internal/service/convo"
)

// SheetsRecorder appends one transcript row per ended session to a Google
// spreadsheet.
type SheetsRecorder struct {
	svc           *sheets.Service
	spreadsheetID string
	appendRange   string
}

// NewSheetsRecorder authenticates with the configured service-account
// credentials file.
func NewSheetsRecorder(ctx context.Context, cfg config.RecorderConfig) (*SheetsRecorder, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("sheets recorder requires GOOGLE_APPLICATION_CREDENTIALS and SPREADSHEET_ID")
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return &SheetsRecorder{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		appendRange:   cfg.Range,
	}, nil
}

// Append writes the row via the values.append API with USER_ENTERED input.
func (r *SheetsRecorder) Append(ctx context.Context, row convo.Row) error {
	values := &sheets.ValueRange{
		Values: [][]interface{}{{row.Date, row.Time, row.Agent, row.Transcript, row.Assessment}},
	}

	result, err := r.svc.Spreadsheets.Values.
		Append(r.spreadsheetID, r.appendRange, values).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append transcript row: %w", err)
	}

	updatedRange := r.appendRange
	if result.Updates != nil {
		updatedRange = result.Updates.UpdatedRange
	}
	log.Printf("[recorder] appended row to %s, range=%s", r.spreadsheetID, updatedRange)
	return nil
}
