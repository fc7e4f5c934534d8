package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"housebudget/internal/analytics"
	"housebudget/internal/export"
	ports "housebudget/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// clearRange bounds the area wiped before each write. Reports never grow
// wider than a handful of columns.
const clearRange = "A:Z"

type Config struct {
	SpreadsheetID string
	SheetName     string
	// One of the two is required. Inline JSON wins when both are set.
	CredentialsFile string
	CredentialsJSON string
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.SpreadsheetID) == "" {
		return errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(c.SheetName) == "" {
		return errors.New("missing sheet name")
	}
	if c.CredentialsFile == "" && c.CredentialsJSON == "" {
		return errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
	return nil
}

// Client writes analytics reports into one sheet of a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	now           func() time.Time
}

var _ ports.ReportWriter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithService wraps an already configured service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(spreadsheetID),
		sheetName:     strings.TrimSpace(sheetName),
		now:           time.Now,
	}
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	default:
		slog.InfoContext(ctx, "Reading service account credentials from file", "path", cfg.CredentialsFile)
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteReport clears the sheet and writes a title row followed by the
// report sections. Values are written RAW so amounts keep their formatting.
func (c *Client) WriteReport(ctx context.Context, r analytics.Report) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	_, err := c.svc.Spreadsheets.Values.
		Clear(c.spreadsheetID, c.a1(clearRange), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	values := c.reportValues(r)
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.a1("A1"), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Report written to spreadsheet",
		"sheet", c.sheetName,
		"span", r.Span.String(),
		"rows", len(values))
	return nil
}

func (c *Client) reportValues(r analytics.Report) [][]any {
	records := export.ReportRecords(r)
	values := make([][]any, 0, len(records)+2)
	values = append(values,
		[]any{"Household Budget Report", r.Span.Display(), c.now().UTC().Format(time.RFC3339)},
		[]any{""},
	)
	for _, rec := range records {
		row := make([]any, len(rec))
		for i, cell := range rec {
			row[i] = cell
		}
		values = append(values, row)
	}
	return values
}

// a1 qualifies a range with the sheet name, quoted so names with spaces or
// quotes survive.
func (c *Client) a1(rng string) string {
	return quoteSheetName(c.sheetName) + "!" + rng
}

func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
