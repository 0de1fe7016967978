// Package google mirrors ledger transactions into a Google spreadsheet, one
// sheet per calendar year ("2024 Transactions").
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"smartcents/internal/log"
	"smartcents/internal/sheets"
)

type Options struct {
	SpreadsheetID string
	// SheetName is the base name; the row's year is prefixed.
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *log.Logger

	mu    sync.Mutex
	known map[string]int64 // sheet title -> sheet id
}

var _ sheets.TransactionMirror = (*Client)(nil)

type sheetInfo struct {
	title string
	id    int64
}

func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(opts.SheetName)
	if base == "" {
		base = "Transactions"
	}

	svc, err := newSheetsService(ctx, opts.CredentialsJSON, opts.CredentialsFile, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     base,
		logger:        logger,
	}, nil
}

// newSheetsService authenticates with a service account, from inline JSON,
// a file, or GOOGLE_APPLICATION_CREDENTIALS in that order.
func newSheetsService(ctx context.Context, credentialsJSON, credentialsFile string, logger *log.Logger) (*gsheet.Service, error) {
	credentials, err := loadCredentials(credentialsJSON, credentialsFile)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(credentials),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func loadCredentials(inline, file string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Append writes the row to the sheet of its year, creating the sheet with a
// header row on first use. A row whose transaction id is already present is
// not written again.
func (c *Client) Append(ctx context.Context, r sheets.Row) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if r.TransactionID == "" {
		return "", errors.New("row without transaction id")
	}
	year, err := rowYear(r)
	if err != nil {
		return "", err
	}
	title := yearPrefixedName(c.sheetBase, year)
	if err := c.ensureSheet(ctx, title); err != nil {
		return "", err
	}

	ids, err := c.readColumn(ctx, title, sheets.ColTransactionID)
	if err != nil {
		return "", err
	}
	if rows := findRows(ids, 0, r.TransactionID); len(rows) > 0 {
		return fmt.Sprintf("%s!A%d:G%d", title, rows[0], rows[0]), nil
	}

	start := time.Now()
	vr := &gsheet.ValueRange{Values: [][]any{r.Values()}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, title+"!A:G", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", title, err)
	}

	ref := title
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Row appended",
		log.FieldTransactionID, r.TransactionID,
		log.FieldSheetsRef, ref,
		log.FieldDuration, time.Since(start).Milliseconds())
	return ref, nil
}

// DeleteTransaction removes every row carrying transactionID across the
// yearly sheets.
func (c *Client) DeleteTransaction(ctx context.Context, transactionID string) (bool, error) {
	if c.svc == nil {
		return false, errors.New("sheets service not initialized")
	}
	mirrors, err := c.mirrorSheets(ctx)
	if err != nil {
		return false, err
	}

	removed := false
	for _, s := range mirrors {
		ids, err := c.readColumn(ctx, s.title, sheets.ColTransactionID)
		if err != nil {
			return removed, err
		}
		rows := findRows(ids, 0, transactionID)
		if len(rows) == 0 {
			continue
		}
		if err := c.deleteRows(ctx, s.id, rows); err != nil {
			return removed, fmt.Errorf("delete rows in %s: %w", s.title, err)
		}
		removed = true
	}
	return removed, nil
}

// ClearCategory blanks the Category and Category ID cells of rows filed under
// categoryID, leaving the transactions uncategorized.
func (c *Client) ClearCategory(ctx context.Context, categoryID string) (int, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}
	mirrors, err := c.mirrorSheets(ctx)
	if err != nil {
		return 0, err
	}

	cleared := 0
	for _, s := range mirrors {
		ids, err := c.readColumn(ctx, s.title, sheets.ColCategoryID)
		if err != nil {
			return cleared, err
		}
		rows := findRows(ids, 0, categoryID)
		if len(rows) == 0 {
			continue
		}

		req := &gsheet.BatchUpdateValuesRequest{ValueInputOption: "RAW"}
		for _, row := range rows {
			req.Data = append(req.Data,
				&gsheet.ValueRange{Range: fmt.Sprintf("%s!D%d", s.title, row), Values: [][]any{{""}}},
				&gsheet.ValueRange{Range: fmt.Sprintf("%s!G%d", s.title, row), Values: [][]any{{""}}},
			)
		}
		if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return cleared, fmt.Errorf("clear category in %s: %w", s.title, err)
		}
		cleared += len(rows)
	}
	return cleared, nil
}

func (c *Client) readColumn(ctx context.Context, title string, col int) ([][]any, error) {
	letter := string(rune('A' + col))
	rng := fmt.Sprintf("%s!%s:%s", title, letter, letter)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) deleteRows(ctx context.Context, sheetID int64, rows []int) error {
	// bottom-up so earlier deletions do not shift later indexes
	sorted := append([]int(nil), rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	req := &gsheet.BatchUpdateSpreadsheetRequest{}
	for _, row := range sorted {
		req.Requests = append(req.Requests, &gsheet.Request{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		})
	}
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	return err
}

// mirrorSheets lists the yearly sheets of this mirror and refreshes the
// title cache.
func (c *Client) mirrorSheets(ctx context.Context) ([]sheetInfo, error) {
	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet metadata: %w", err)
	}

	var out []sheetInfo
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.known == nil {
		c.known = make(map[string]int64)
	}
	for _, s := range resp.Sheets {
		if s.Properties == nil {
			continue
		}
		c.known[s.Properties.Title] = s.Properties.SheetId
		if isYearSheet(s.Properties.Title, c.sheetBase) {
			out = append(out, sheetInfo{title: s.Properties.Title, id: s.Properties.SheetId})
		}
	}
	return out, nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	c.mu.Lock()
	_, ok := c.known[title]
	c.mu.Unlock()
	if ok {
		return nil
	}

	if _, err := c.mirrorSheets(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	_, ok = c.known[title]
	c.mu.Unlock()
	if ok {
		return nil
	}

	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("create sheet %s: %w", title, err)
	}

	header := make([]any, len(sheets.Header))
	for i, h := range sheets.Header {
		header[i] = h
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, title+"!A1:G1", &gsheet.ValueRange{Values: [][]any{header}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header in %s: %w", title, err)
	}

	var id int64
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		id = resp.Replies[0].AddSheet.Properties.SheetId
	}
	c.mu.Lock()
	c.known[title] = id
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Sheet created", "sheet", title)
	return nil
}

// findRows returns the 1-based row numbers whose cell in col equals want.
// The header row is never matched.
func findRows(values [][]any, col int, want string) []int {
	var out []int
	for i, row := range values {
		if i == 0 || col >= len(row) {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[col])) == want {
			out = append(out, i+1)
		}
	}
	return out
}

func rowYear(r sheets.Row) (int, error) {
	if len(r.Date) < 4 {
		return 0, fmt.Errorf("row date %q has no year", r.Date)
	}
	y, err := strconv.Atoi(r.Date[:4])
	if err != nil {
		return 0, fmt.Errorf("row date %q has no year", r.Date)
	}
	return y, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if _, ok := leadingYear(base); ok {
		return base
	}
	return fmt.Sprintf("%d %s", year, base)
}

func isYearSheet(title, base string) bool {
	if _, ok := leadingYear(title); !ok {
		return false
	}
	return title[5:] == strings.TrimSpace(base)
}

func leadingYear(s string) (int, bool) {
	if len(s) < 5 || s[4] != ' ' {
		return 0, false
	}
	y, err := strconv.Atoi(s[0:4])
	if err != nil || y <= 1900 || y >= 3000 {
		return 0, false
	}
	return y, true
}
