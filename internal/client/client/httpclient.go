package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/portalcli/internal/client/models"
	"github.com/dmitrijs2005/portalcli/internal/common"
	"github.com/dmitrijs2005/portalcli/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// HTTPClient talks to the Portal API over HTTP/JSON.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	timeout time.Duration
	log     logging.Logger

	mu    sync.RWMutex
	token string
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout bounds every request. Zero disables the per-request bound.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

// WithRateLimit throttles outbound requests to rps with the given burst.
// A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the request logger.
func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithHTTPClient replaces the underlying *http.Client (tests use httptest).
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

// NewPortalClient builds an HTTPClient rooted at baseURL.
func NewPortalClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{},
		log:     logging.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and returns the response for a 2xx status. The
// caller owns the body. The returned cancel func releases the per-request
// timeout and must be called once the body is consumed.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			cancel()
			return nil, nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if t := c.currentToken(); t != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerValue(t))
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return nil, nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	c.log.Debug(ctx, "request done", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", reqID, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		return nil, nil, mapStatus(resp.StatusCode, readDetail(resp.Body), path == "/auth/login")
	}
	return resp, cancel, nil
}

// readDetail extracts the "detail" field of an error body. Non-string
// details (validation error lists) and non-JSON bodies are returned raw.
func readDetail(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(b))
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	return string(envelope.Detail)
}

// doJSON sends in (when non-nil) as JSON and decodes the response into out
// (when non-nil).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	resp, cancel, err := c.do(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, cnpj, password string) (string, error) {
	var resp models.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil,
		map[string]string{"cnpj": cnpj, "password": password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrRequestFailed)
	}
	c.SetToken(resp.AccessToken)
	return resp.AccessToken, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.CurrentUser, error) {
	var u models.CurrentUser
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func flowPath(flow models.Flow, step string) (string, error) {
	switch flow {
	case models.FlowFirstAccess, models.FlowPasswordReset:
		return "/auth/" + string(flow) + "/" + step, nil
	}
	return "", fmt.Errorf("unknown recovery flow %q", flow)
}

func (c *HTTPClient) RequestCode(ctx context.Context, flow models.Flow, req models.CodeRequest) error {
	path, err := flowPath(flow, "request")
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPost, path, nil, req, nil)
}

func (c *HTTPClient) ConfirmCode(ctx context.Context, flow models.Flow, draft models.RecoveryDraft) error {
	path, err := flowPath(flow, "confirm")
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPost, path, nil, draft, nil)
}

func (c *HTTPClient) ListSpreadsheets(ctx context.Context) ([]models.Spreadsheet, error) {
	var out []models.Spreadsheet
	if err := c.doJSON(ctx, http.MethodGet, "/spreadsheets", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// pageValues builds the data query. Empty search/column are left out
// instead of being sent as empty strings.
func pageValues(q models.PageQuery) url.Values {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("offset", strconv.Itoa(q.Offset))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Column != "" {
		v.Set("col", q.Column)
	}
	return v
}

func (c *HTTPClient) SpreadsheetData(ctx context.Context, id int64, q models.PageQuery) (*models.TablePage, error) {
	var page models.TablePage
	path := "/spreadsheets/" + strconv.FormatInt(id, 10) + "/data"
	if err := c.doJSON(ctx, http.MethodGet, path, pageValues(q), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// cancelOnClose releases the request timeout together with the body.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

func (c *HTTPClient) DownloadSpreadsheet(ctx context.Context, id int64, format models.ExportFormat) (io.ReadCloser, error) {
	path := "/spreadsheets/" + strconv.FormatInt(id, 10) + "/download"
	resp, cancel, err := c.do(ctx, http.MethodGet, path, url.Values{"format": {string(format)}}, nil, "")
	if err != nil {
		return nil, err
	}
	return cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

func (c *HTTPClient) ListAccessLevels(ctx context.Context) ([]models.AccessLevel, error) {
	var out []models.AccessLevel
	if err := c.doJSON(ctx, http.MethodGet, "/admin/access-levels", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.doJSON(ctx, http.MethodGet, "/admin/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListAdminSpreadsheets(ctx context.Context) ([]models.Spreadsheet, error) {
	var out []models.Spreadsheet
	if err := c.doJSON(ctx, http.MethodGet, "/admin/spreadsheets", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateUser(ctx context.Context, draft models.UserDraft) error {
	return c.doJSON(ctx, http.MethodPost, "/admin/users", nil, draft, nil)
}

func (c *HTTPClient) UpdateUserAccess(ctx context.Context, userID int64, ids models.IDSet) error {
	path := "/admin/users/" + strconv.FormatInt(userID, 10) + "/access-levels"
	return c.doJSON(ctx, http.MethodPut, path, nil, models.AccessUpdate{AccessLevelIDs: ids}, nil)
}

func (c *HTTPClient) DeleteUser(ctx context.Context, userID int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/admin/users/"+strconv.FormatInt(userID, 10), nil, nil, nil)
}

func (c *HTTPClient) DeleteSpreadsheet(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/admin/spreadsheets/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *HTTPClient) UploadSpreadsheet(ctx context.Context, draft models.UploadDraft) error {
	if !draft.HasFile() {
		return errors.New("upload: no file attached")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("title", draft.Title); err != nil {
		return err
	}
	if err := w.WriteField("access_level_ids", draft.AccessLevelIDs.Join()); err != nil {
		return err
	}
	part, err := w.CreateFormFile("file", draft.FileName)
	if err != nil {
		return err
	}
	if _, err := part.Write(draft.Content); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	resp, cancel, err := c.do(ctx, http.MethodPost, "/admin/spreadsheets", nil, &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
