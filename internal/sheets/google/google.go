package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendlog/internal/core"
	ports "spendlog/internal/sheets"
)

// Options selects the spreadsheet, its tabs and the credentials used to reach it.
type Options struct {
	SpreadsheetID string
	UsersSheet    string
	ExpensesSheet string

	ServiceAccountJSON string
	ServiceAccountFile string

	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenJSON  string
	OAuthTokenFile  string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	usersSheet    string
	expensesSheet string
	// initErr explains why an unconfigured client has no service.
	initErr error
}

var (
	errMissingCredentials = fmt.Errorf("%w: missing credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_OAUTH_CLIENT_JSON)", core.ErrStorageNotConfigured)
	errMissingOAuthToken  = fmt.Errorf("%w: missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE)", core.ErrStorageNotConfigured)
)

// Ensure interface conformance
var (
	_ ports.ExpenseStore    = (*Client)(nil)
	_ ports.CredentialStore = (*Client)(nil)
	_ ports.Pinger          = (*Client)(nil)
)

// New creates a Sheets client. Without a spreadsheet id or without
// credentials the client is returned unconfigured and every operation fails
// with an error wrapping core.ErrStorageNotConfigured. Unreadable or
// malformed credentials are returned as errors.
func New(ctx context.Context, opts Options) (*Client, error) {
	opts.SpreadsheetID = strings.TrimSpace(opts.SpreadsheetID)
	if opts.SpreadsheetID == "" {
		slog.WarnContext(ctx, "Spreadsheet id not set, sheet operations will fail")
		return NewWithService(nil, opts), nil
	}
	svc, err := newSheetsService(ctx, opts)
	if errors.Is(err, core.ErrStorageNotConfigured) {
		slog.WarnContext(ctx, "Sheets credentials not set, sheet operations will fail", "error", err)
		c := NewWithService(nil, opts)
		c.initErr = err
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, opts), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test endpoint.
func NewWithService(svc *gsheet.Service, opts Options) *Client {
	users := strings.TrimSpace(opts.UsersSheet)
	if users == "" {
		users = ports.UsersTable
	}
	expenses := strings.TrimSpace(opts.ExpensesSheet)
	if expenses == "" {
		expenses = ports.ExpensesTable
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(opts.SpreadsheetID),
		usersSheet:    users,
		expensesSheet: expenses,
	}
}

// newSheetsService initializes a Sheets Service. Service Account credentials
// take precedence; an OAuth client plus a stored token is the fallback.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	credentialsJSON, err := readSecret(opts.ServiceAccountJSON, opts.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	if len(credentialsJSON) > 0 {
		slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
			"credentials_size", len(credentialsJSON),
			"scope", gsheet.SpreadsheetsScope)
		service, err := gsheet.NewService(ctx,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return service, nil
	}

	clientJSON, err := readSecret(opts.OAuthClientJSON, opts.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client file: %w", err)
	}
	if len(clientJSON) == 0 {
		return nil, errMissingCredentials
	}
	tokenJSON, err := readSecret(opts.OAuthTokenJSON, opts.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file: %w", err)
	}
	if len(tokenJSON) == 0 {
		return nil, errMissingOAuthToken
	}

	cfg, err := google.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with OAuth token", "scope", gsheet.SpreadsheetsScope)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(cfg.Client(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func readSecret(inline, path string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	if p := strings.TrimSpace(path); p != "" {
		return os.ReadFile(p)
	}
	return nil, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
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
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

func (c *Client) configured() bool {
	return c.svc != nil && c.spreadsheetID != ""
}

func (c *Client) notConfigured() error {
	if c.initErr != nil {
		return c.initErr
	}
	return core.ErrStorageNotConfigured
}

// ListExpenses reads every Expenses data row and filters them in memory.
func (c *Client) ListExpenses(ctx context.Context, userID string, r core.DateRange) ([]core.Expense, error) {
	if userID == "" {
		return nil, core.ErrUserIDRequired
	}
	rows, err := c.readRows(ctx, "list", c.expensesSheet, "A2:H")
	if err != nil {
		return nil, err
	}
	return ports.DecodeExpenses(rows, userID, r), nil
}

// AppendExpense appends one row after the last data row. The returned
// expense carries the sheet row number when the API reports it.
func (c *Client) AppendExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.UserID == "" {
		return core.Expense{}, core.ErrUserIDRequired
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validation failed: %w", err)
	}
	row, err := c.appendRow(ctx, c.expensesSheet, ports.ExpenseColumns, ports.ExpenseRow(e))
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = row
	return e, nil
}

// FindByEmail scans the Users table for a normalized email.
func (c *Client) FindByEmail(ctx context.Context, email string) (core.User, error) {
	rows, err := c.readRows(ctx, "find", c.usersSheet, "A2:D")
	if err != nil {
		return core.User{}, err
	}
	return ports.FindUser(rows, email)
}

func (c *Client) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.Email = core.NormalizeEmail(u.Email)
	if u.Email == "" {
		return core.User{}, core.ErrEmailRequired
	}
	if u.UserID == "" {
		u.UserID = ports.NewUserID()
	}
	if _, err := c.appendRow(ctx, c.usersSheet, ports.UserColumns, ports.UserRow(u)); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// Ping fetches the spreadsheet id only.
func (c *Client) Ping(ctx context.Context) error {
	if !c.configured() {
		return c.notConfigured()
	}
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return classify("ping", c.spreadsheetID, err)
	}
	return nil
}

// EnsureHeaders creates missing tabs and writes the header row of any
// empty table. Existing headers are left untouched.
func (c *Client) EnsureHeaders(ctx context.Context) error {
	if !c.configured() {
		return c.notConfigured()
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return classify("inspect", c.spreadsheetID, err)
	}
	existing := map[string]bool{}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}

	tables := []struct {
		name   string
		header []string
	}{
		{c.usersSheet, ports.UserHeader},
		{c.expensesSheet, ports.ExpenseHeader},
	}
	var add []*gsheet.Request
	for _, t := range tables {
		if !existing[t.name] {
			add = append(add, &gsheet.Request{AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: t.name},
			}})
		}
	}
	if len(add) > 0 {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: add}).Context(ctx).Do()
		if err != nil {
			return classify("add sheet", c.spreadsheetID, err)
		}
		slog.InfoContext(ctx, "Created missing sheets", "count", len(add))
	}

	for _, t := range tables {
		last := string(rune('A' + len(t.header) - 1))
		rows, err := c.readRows(ctx, "read header", t.name, "A1:"+last+"1")
		if err != nil {
			return err
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			continue
		}
		header := make([]any, len(t.header))
		for i, h := range t.header {
			header[i] = h
		}
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1(t.name, "A1:"+last+"1"),
			&gsheet.ValueRange{Values: [][]any{header}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return classify("write header", t.name, err)
		}
		slog.InfoContext(ctx, "Wrote sheet header", "sheet", t.name)
	}
	return nil
}

func (c *Client) readRows(ctx context.Context, op, table, cells string) ([][]any, error) {
	if !c.configured() {
		return nil, c.notConfigured()
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1(table, cells)).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, classify(op, table, err)
	}
	return resp.Values, nil
}

func (c *Client) appendRow(ctx context.Context, table, columns string, row []any) (int64, error) {
	if !c.configured() {
		return 0, c.notConfigured()
	}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, a1(table, columns),
		&gsheet.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, classify("append", table, err)
	}
	if resp.Updates == nil {
		return 0, nil
	}
	return rowOf(resp.Updates.UpdatedRange), nil
}

// a1 builds an A1 range, quoting sheet names that need it.
func a1(sheet, cells string) string {
	plain := true
	for _, r := range sheet {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			plain = false
			break
		}
	}
	if !plain {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet + "!" + cells
}

// rowOf extracts the first row number of an A1 range such as "Expenses!A7:H7".
func rowOf(rng string) int64 {
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		rng = rng[i+1:]
	}
	if i := strings.Index(rng, ":"); i >= 0 {
		rng = rng[:i]
	}
	digits := strings.TrimLeft(rng, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$")
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
