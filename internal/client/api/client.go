package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Sentinel errors mapped from server responses.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrUnauthorized       = errors.New("session is not valid")
	ErrForbidden          = errors.New("operation requires the master account")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
)

// Account is the wire form of an account.
type Account struct {
	ID        string `json:"id"`
	Handle    string `json:"handle"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Report is the wire form of a report; title and date come derived from
// the server.
type Report struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Body      string `json:"body"`
	Title     string `json:"title"`
	Date      string `json:"date,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SearchResult pairs a report with its author.
type SearchResult struct {
	Report
	Author Account `json:"author"`
}

// Session is a signed-in account with its token pair.
type Session struct {
	Account      Account `json:"account"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
}

// SearchFilter is the administrator search request. Criteria combine
// conjunctively.
type SearchFilter struct {
	OwnerIDs []string `json:"owner_ids"`
	Date     string   `json:"date,omitempty"`
	Keyword  string   `json:"keyword,omitempty"`
}

// Export is a rendered document returned by the export endpoint.
type Export struct {
	Filename string
	Content  []byte
}

// Client talks to the daybook server over HTTP. It holds the current
// token pair and refreshes the access token once on a 401 before
// giving up.
type Client struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetTokens installs a previously saved token pair, e.g. on startup.
func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

// Tokens returns the current token pair for persistence.
func (c *Client) Tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// ClearTokens drops the current token pair.
func (c *Client) ClearTokens() {
	c.SetTokens("", "")
}

// Login exchanges credentials for a session and installs its tokens.
func (c *Client) Login(ctx context.Context, handle, password string) (Session, error) {
	var session Session
	err := c.doPublic(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"handle": handle, "password": password}, &session)
	if err != nil {
		return Session{}, err
	}
	c.SetTokens(session.AccessToken, session.RefreshToken)
	return session, nil
}

// Refresh rotates the refresh token and installs the new pair.
func (c *Client) Refresh(ctx context.Context) (Session, error) {
	_, refresh := c.Tokens()
	if refresh == "" {
		return Session{}, ErrUnauthorized
	}

	var session Session
	err := c.doPublic(ctx, http.MethodPost, "/api/auth/refresh",
		map[string]string{"refresh_token": refresh}, &session)
	if err != nil {
		return Session{}, err
	}
	c.SetTokens(session.AccessToken, session.RefreshToken)
	return session, nil
}

// Logout revokes the refresh token server-side and drops both tokens
// locally. Local state is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, refresh := c.Tokens()
	defer c.ClearTokens()
	if refresh == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/api/auth/logout",
		map[string]string{"refresh_token": refresh}, nil)
}

// Me returns the signed-in account's profile.
func (c *Client) Me(ctx context.Context) (Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// ListReports returns the caller's reports, newest first.
func (c *Client) ListReports(ctx context.Context) ([]Report, error) {
	var reports []Report
	if err := c.do(ctx, http.MethodGet, "/api/reports", nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// CreateReport saves a new report.
func (c *Client) CreateReport(ctx context.Context, body string) (Report, error) {
	var created Report
	err := c.do(ctx, http.MethodPost, "/api/reports", map[string]string{"body": body}, &created)
	return created, err
}

// UpdateReport replaces a report's body.
func (c *Client) UpdateReport(ctx context.Context, id, body string) (Report, error) {
	var updated Report
	err := c.do(ctx, http.MethodPut, "/api/reports/"+id, map[string]string{"body": body}, &updated)
	return updated, err
}

// DeleteReport removes a report.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/reports/"+id, nil, nil)
}

// ExportReport downloads a report rendered as a PDF.
func (c *Client) ExportReport(ctx context.Context, id string) (Export, error) {
	resp, err := c.doRaw(ctx, http.MethodGet, "/api/reports/"+id+"/export", nil)
	if err != nil {
		return Export{}, err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return Export{}, fmt.Errorf("failed to read export body: %w", err)
	}

	return Export{
		Filename: filenameFromDisposition(resp.Header.Get("Content-Disposition")),
		Content:  content,
	}, nil
}

// ListAccounts returns every account. Master only.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := c.do(ctx, http.MethodGet, "/api/admin/accounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateAccount registers a new account. Master only.
func (c *Client) CreateAccount(ctx context.Context, handle, password string) (Account, error) {
	var created Account
	err := c.do(ctx, http.MethodPost, "/api/admin/accounts",
		map[string]string{"handle": handle, "password": password}, &created)
	return created, err
}

// SetAccountStatus blocks or unblocks an account. Master only.
func (c *Client) SetAccountStatus(ctx context.Context, id, status string) (Account, error) {
	var updated Account
	err := c.do(ctx, http.MethodPut, "/api/admin/accounts/"+id+"/status",
		map[string]string{"status": status}, &updated)
	return updated, err
}

// DeleteAccount removes an account and its reports. Master only.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/accounts/"+id, nil, nil)
}

// SearchReports runs the administrator filter. Master only.
func (c *Client) SearchReports(ctx context.Context, filter SearchFilter) ([]SearchResult, error) {
	var results []SearchResult
	if err := c.do(ctx, http.MethodPost, "/api/admin/reports/search", filter, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// doPublic performs an unauthenticated JSON round trip.
func (c *Client) doPublic(ctx context.Context, method, path string, reqBody, respBody any) error {
	resp, err := c.send(ctx, method, path, reqBody, "")
	if err != nil {
		return err
	}
	return decodeResponse(resp, respBody)
}

// do performs an authenticated JSON round trip, refreshing the access
// token once on 401.
func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	resp, err := c.doRaw(ctx, method, path, reqBody)
	if err != nil {
		return err
	}
	return decodeResponse(resp, respBody)
}

func (c *Client) doRaw(ctx context.Context, method, path string, reqBody any) (*http.Response, error) {
	access, _ := c.Tokens()

	resp, err := c.send(ctx, method, path, reqBody, access)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	if _, err := c.Refresh(ctx); err != nil {
		c.ClearTokens()
		if errors.Is(err, ErrAccountBlocked) {
			return nil, err
		}
		return nil, ErrUnauthorized
	}

	access, _ = c.Tokens()
	return c.send(ctx, method, path, reqBody, access)
}

func (c *Client) send(ctx context.Context, method, path string, reqBody any, accessToken string) (*http.Response, error) {
	var body io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusUnauthorized {
		defer resp.Body.Close()
		return nil, errorFromResponse(resp)
	}

	return resp, nil
}

func decodeResponse(resp *http.Response, respBody any) error {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errorFromResponse(resp)
	}
	if respBody == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorFromResponse maps a non-2xx response to a sentinel error,
// wrapping the server's message.
func errorFromResponse(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error == "" {
		payload.Error = resp.Status
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
		if payload.Error == "invalid username or password" {
			sentinel = ErrInvalidCredentials
		}
	case http.StatusForbidden:
		sentinel = ErrForbidden
		if payload.Error == "this account has been blocked by an administrator" {
			sentinel = ErrAccountBlocked
		}
	case http.StatusConflict:
		sentinel = ErrConflict
	case http.StatusNotFound:
		sentinel = ErrNotFound
	default:
		return fmt.Errorf("server error: %s", payload.Error)
	}

	return fmt.Errorf("%w: %s", sentinel, payload.Error)
}

// filenameFromDisposition pulls the quoted filename out of a
// Content-Disposition header, empty when absent.
func filenameFromDisposition(header string) string {
	const marker = `filename="`
	start := len(header)
	for i := 0; i+len(marker) <= len(header); i++ {
		if header[i:i+len(marker)] == marker {
			start = i + len(marker)
			break
		}
	}
	if start >= len(header) {
		return ""
	}
	for end := start; end < len(header); end++ {
		if header[end] == '"' {
			return header[start:end]
		}
	}
	return ""
}
