// Package sheetlog appends opted-in case rows to the spreadsheet-backed
// research log. Appends are best-effort: failures are reported to the
// caller and never retried, since a dropped telemetry row is acceptable
// and the remote append is not idempotent.
package sheetlog

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// Appender writes flat positional rows to one worksheet of one spreadsheet.
type Appender struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

// New authenticates with the service-account key file and builds an
// Appender for the given spreadsheet. Credentials stay external; the
// service never embeds or persists them.
func New(ctx context.Context, credentialsFile, spreadsheetID string, opts ...Option) (*Appender, error) {
	key, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: reading credentials: %w", ErrAuth, err)
	}

	jwt, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing credentials: %w", ErrAuth, err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("%w: building sheets client: %w", ErrAuth, err)
	}

	return NewWithService(svc, spreadsheetID, opts...), nil
}

// NewWithService builds an Appender around an existing sheets service.
func NewWithService(svc *sheets.Service, spreadsheetID string, opts ...Option) *Appender {
	a := &Appender{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     "Sheet1",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Append adds one row at the bottom of the worksheet. The row must already
// be flat primitives; the remote store rejects nested structures.
func (a *Appender) Append(ctx context.Context, row []any) error {
	vr := &sheets.ValueRange{Values: [][]any{row}}

	_, err := a.svc.Spreadsheets.Values.
		Append(a.spreadsheetID, a.worksheet, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAppendFailed, err)
	}
	return nil
}
