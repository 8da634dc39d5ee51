// Package google mirrors the purchase history into a Google Sheets tab.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spesa/internal/core"
	applog "spesa/internal/log"
	"spesa/internal/ports"
)

// DefaultSheetName is the tab rewritten when none is configured.
const DefaultSheetName = "Purchases"

// Header is the first row of the mirrored tab.
var Header = []string{
	"Date", "Item", "Quantity", "Unit", "Price", "Price/Unit",
	"Category", "Vendor", "Payment Status", "Payment Method",
}

var _ ports.PurchaseMirror = (*Client)(nil)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

// NewFromEnv creates a client authenticated with a service account taken
// from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, spreadsheetID, sheetName string, logger *applog.Logger) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := serviceAccountJSON()
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return New(svc, spreadsheetID, sheetName, logger), nil
}

// New wraps an existing service.
func New(svc *gsheet.Service, spreadsheetID, sheetName string, logger *applog.Logger) *Client {
	if sheetName = strings.TrimSpace(sheetName); sheetName == "" {
		sheetName = DefaultSheetName
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(applog.ComponentSheets),
	}
}

func serviceAccountJSON() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// ReplacePurchases rewrites the whole tab: header first, then one row per
// purchase. The tab is created when missing.
func (c *Client) ReplacePurchases(ctx context.Context, rows []core.PurchaseRow) error {
	if err := c.ensureSheet(ctx); err != nil {
		return err
	}

	quoted := quoteSheet(c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quoted, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	vr := &gsheet.ValueRange{Values: buildValues(rows)}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quoted+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write sheet %s: %w", c.sheetName, err)
	}

	c.logger.InfoContext(ctx, "Purchases mirrored",
		applog.FieldOperation, applog.OpMirror,
		"sheet", c.sheetName,
		"rows", len(rows))
	return nil
}

func (c *Client) ensureSheet(ctx context.Context) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: c.sheetName}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", c.sheetName, err)
	}
	c.logger.InfoContext(ctx, "Created sheet", "sheet", c.sheetName)
	return nil
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
