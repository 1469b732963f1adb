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
	"sync"
	"time"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Default tab names, one per collection.
const (
	DefaultTransactionsSheet = "Transactions"
	DefaultCategoriesSheet   = "Categories"
	DefaultGoalsSheet        = "Goals"
	DefaultCardsSheet        = "Cards"
	DefaultProfileSheet      = "Profile"
)

// Client stores every collection as rows of a spreadsheet tab. Row 1 of each
// tab is a header; column A holds the record ID.
type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	categoriesSheet   string
	goalsSheet        string
	cardsSheet        string
	profileSheet      string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// Ensure interface conformance
var (
	_ ports.Store             = (*Client)(nil)
	_ ports.TransactionMirror = (*Client)(nil)
)

// Config names the spreadsheet and its tabs. Empty tab names use the defaults.
type Config struct {
	SpreadsheetID     string
	TransactionsSheet string
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME for the transactions tab (default "Transactions").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	creds, err := serviceAccountCredentials(ctx)
	if err != nil {
		return nil, err
	}

	return New(ctx, Config{
		SpreadsheetID:     spreadsheetID,
		TransactionsSheet: os.Getenv("GOOGLE_SHEET_NAME"),
	},
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()),
	)
}

// New creates a client with explicit client options.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	txSheet := strings.TrimSpace(cfg.TransactionsSheet)
	if txSheet == "" {
		txSheet = DefaultTransactionsSheet
	}
	return &Client{
		svc:               svc,
		spreadsheetID:     cfg.SpreadsheetID,
		transactionsSheet: txSheet,
		categoriesSheet:   DefaultCategoriesSheet,
		goalsSheet:        DefaultGoalsSheet,
		cardsSheet:        DefaultCardsSheet,
		profileSheet:      DefaultProfileSheet,
		sheetIDs:          make(map[string]int64),
	}, nil
}

// serviceAccountCredentials reads the service account JSON from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func serviceAccountCredentials(ctx context.Context) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading service account credentials from file", "path", serviceAccountFile)
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// newHTTPClientWithPooling creates an HTTP client tuned for the Sheets API.
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
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := c.readRows(ctx, c.transactionsSheet)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, ok := parseTransactionRow(row)
		if !ok {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	txs, err := c.ListTransactions(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, ports.ErrNotFound
}

func (c *Client) SaveTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return c.upsertRow(ctx, c.transactionsSheet, tx.ID, transactionRow(tx))
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.deleteRow(ctx, c.transactionsSheet, id)
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := c.readRows(ctx, c.categoriesSheet)
	if err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(rows))
	for _, row := range rows {
		if cat, ok := parseCategoryRow(row); ok {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (c *Client) SaveCategory(ctx context.Context, cat core.Category) error {
	if err := cat.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return c.upsertRow(ctx, c.categoriesSheet, cat.ID, categoryRow(cat))
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.deleteRow(ctx, c.categoriesSheet, id)
}

func (c *Client) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := c.readRows(ctx, c.goalsSheet)
	if err != nil {
		return nil, err
	}
	out := make([]core.Goal, 0, len(rows))
	for _, row := range rows {
		if g, ok := parseGoalRow(row); ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (c *Client) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	goals, err := c.ListGoals(ctx)
	if err != nil {
		return core.Goal{}, err
	}
	for _, g := range goals {
		if g.ID == id {
			return g, nil
		}
	}
	return core.Goal{}, ports.ErrNotFound
}

func (c *Client) SaveGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return c.upsertRow(ctx, c.goalsSheet, g.ID, goalRow(g))
}

func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	return c.deleteRow(ctx, c.goalsSheet, id)
}

func (c *Client) ListCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := c.readRows(ctx, c.cardsSheet)
	if err != nil {
		return nil, err
	}
	out := make([]core.CreditCard, 0, len(rows))
	for _, row := range rows {
		if card, ok := parseCardRow(row); ok {
			out = append(out, card)
		}
	}
	return out, nil
}

func (c *Client) GetCard(ctx context.Context, id string) (core.CreditCard, error) {
	cards, err := c.ListCards(ctx)
	if err != nil {
		return core.CreditCard{}, err
	}
	for _, card := range cards {
		if card.ID == id {
			return card, nil
		}
	}
	return core.CreditCard{}, ports.ErrNotFound
}

func (c *Client) SaveCard(ctx context.Context, card core.CreditCard) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return c.upsertRow(ctx, c.cardsSheet, card.ID, cardRow(card))
}

func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.deleteRow(ctx, c.cardsSheet, id)
}

// profileRowID is the ID cell of the single profile row.
const profileRowID = "profile"

func (c *Client) GetProfile(ctx context.Context) (core.UserProfile, error) {
	rows, err := c.readRows(ctx, c.profileSheet)
	if err != nil {
		return core.UserProfile{}, err
	}
	for _, row := range rows {
		if p, ok := parseProfileRow(row); ok {
			return p, nil
		}
	}
	return core.DefaultProfile(), nil
}

func (c *Client) SaveProfile(ctx context.Context, p core.UserProfile) error {
	return c.upsertRow(ctx, c.profileSheet, profileRowID, profileRow(p))
}

// readRows returns the data rows of a tab, skipping the header row.
func (c *Client) readRows(ctx context.Context, sheet string) ([][]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:Z", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		out = append(out, toStrings(row))
	}
	return out, nil
}

// findRow returns the 1-based sheet row holding id, or 0.
func (c *Client) findRow(ctx context.Context, sheet, id string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, row := range resp.Values {
		if i == 0 || len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (c *Client) upsertRow(ctx context.Context, sheet, id string, values []any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	row, err := c.findRow(ctx, sheet, id)
	if err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	if row > 0 {
		rng := fmt.Sprintf("%s!A%d", sheet, row)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update %s: %w", rng, err)
		}
		slog.InfoContext(ctx, "Sheet row updated", "sheet", sheet, "row", row, "id", id)
		return nil
	}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, fmt.Sprintf("%s!A:A", sheet), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheet, err)
	}
	slog.InfoContext(ctx, "Sheet row appended", "sheet", sheet, "id", id)
	return nil
}

func (c *Client) deleteRow(ctx context.Context, sheet, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	row, err := c.findRow(ctx, sheet, id)
	if err != nil {
		return err
	}
	if row == 0 {
		return ports.ErrNotFound
	}
	sheetID, err := c.sheetID(ctx, sheet)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d of %s: %w", row, sheet, err)
	}
	slog.InfoContext(ctx, "Sheet row deleted", "sheet", sheet, "row", row, "id", id)
	return nil
}

// sheetID resolves a tab title to its numeric ID, caching the lookup.
func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[title]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}
	id, ok = c.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("sheet %q not found", title)
	}
	return id, nil
}

// EnsureHeaders writes the header row of every tab whose first row is empty.
// The tabs themselves must already exist.
func (c *Client) EnsureHeaders(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	tabs := []struct {
		name   string
		header []string
	}{
		{c.transactionsSheet, transactionHeader},
		{c.categoriesSheet, categoryHeader},
		{c.goalsSheet, goalHeader},
		{c.cardsSheet, cardHeader},
		{c.profileSheet, profileHeader},
	}
	for _, tab := range tabs {
		rng := fmt.Sprintf("%s!A1:Z1", tab.name)
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("read %s: %w", rng, err)
		}
		if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
			continue
		}
		row := make([]any, len(tab.header))
		for i, h := range tab.header {
			row[i] = h
		}
		vr := &gsheet.ValueRange{Values: [][]any{row}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1", tab.name), vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write header of %s: %w", tab.name, err)
		}
		slog.InfoContext(ctx, "Sheet header written", "sheet", tab.name)
	}
	return nil
}
