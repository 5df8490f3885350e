// Package google mirrors transactions into a Google Sheets spreadsheet using
// service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gastos/internal/log"
	"gastos/internal/sheets"
)

// Options configures the spreadsheet target and its credentials. Inline JSON
// wins over the file path.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ sheets.TransactionWriter = (*Client)(nil)

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	creds, err := loadCredentials(ctx, opts)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", spreadsheetID, "sheet", sheetName)

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func loadCredentials(ctx context.Context, opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		return []byte(opts.CredentialsJSON), nil
	case strings.TrimSpace(opts.CredentialsFile) != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read service account credentials", "path", opts.CredentialsFile, "size", len(b))
		return b, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// newHTTPClientWithPooling keeps connections to the Sheets API warm between
// worker batches.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// AppendRows writes rows after the last used line of the sheet and returns
// the range Sheets reports as updated.
func (c *Client) AppendRows(ctx context.Context, rows []sheets.Row) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	vr := &gsheet.ValueRange{Values: valueMatrix(rows)}
	rng := appendRange(c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append %s: %w", rng, err)
	}
	ref := rng
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	log.FromContext(ctx).WithComponent(log.ComponentSheets).DebugContext(ctx, "Rows appended",
		log.FieldOperation, log.OpAppend,
		log.FieldSheetsRange, ref,
		"rows", len(rows))
	return ref, nil
}

// appendRange spans every mirror column; sheet names with spaces must be
// quoted in A1 notation.
func appendRange(sheetName string) string {
	last := rune('A' + len(sheets.Header) - 1)
	name := sheetName
	if strings.ContainsAny(name, " '!") {
		name = "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return fmt.Sprintf("%s!A:%c", name, last)
}

func valueMatrix(rows []sheets.Row) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, sheets.Values(r))
	}
	return out
}
