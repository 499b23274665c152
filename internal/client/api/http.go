package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/figmints/meetsync/internal/common"
	"github.com/figmints/meetsync/internal/meeting"
)

// HTTPClient implements Client over the server's JSON API. The bearer token
// obtained at login is attached to every subsequent request.
//
// Reads retry transient failures with a short fibonacci backoff. Writes are
// attempted once: the sync engine owns the save retry policy, and stacking a
// second policy underneath it would mask save failures.
type HTTPClient struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) getToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do performs one request and decodes the response into out (if non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.getToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// doRetry wraps do with a backoff for idempotent reads.
func (c *HTTPClient) doRetry(ctx context.Context, method, path string, body, out any) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(200*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, method, path, body, out)
		if common.IsRetriable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func statusError(status int, resp *http.Response) error {
	var payload apiError
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	msg := payload.Error.Message

	var sentinel error
	switch status {
	case http.StatusUnauthorized:
		sentinel = common.ErrorUnauthorized
	case http.StatusForbidden:
		sentinel = common.ErrorForbidden
	case http.StatusNotFound:
		sentinel = common.ErrorNotFound
	case http.StatusConflict:
		sentinel = common.ErrorAlreadyExists
	case http.StatusBadRequest:
		sentinel = common.ErrorValidation
	default:
		if status >= 500 {
			sentinel = common.ErrorUnavailable
		} else {
			sentinel = common.ErrorInternal
		}
	}

	if msg == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// Login authenticates and remembers the issued token.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Identity, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.setToken(resp.Token)
	return &resp.User, nil
}

// Logout drops the remembered token.
func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.setToken("")
	return err
}

func (c *HTTPClient) Me(ctx context.Context) (*Identity, error) {
	var identity Identity
	if err := c.doRetry(ctx, http.MethodGet, "/api/auth/me", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (c *HTTPClient) ListTenants(ctx context.Context) ([]Tenant, error) {
	var tenants []Tenant
	if err := c.doRetry(ctx, http.MethodGet, "/api/tenants", nil, &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

func (c *HTTPClient) ListSessions(ctx context.Context, tenantID string) ([]Session, error) {
	var sessions []Session
	if err := c.doRetry(ctx, http.MethodGet, "/api/tenants/"+tenantID+"/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

type resolveRequest struct {
	TenantID    string `json:"tenant_id"`
	SessionDate string `json:"session_date"`
}

// ResolveSession maps (tenant, date) to a session, creating one server-side
// on first access. Safe to retry: resolution is idempotent.
func (c *HTTPClient) ResolveSession(ctx context.Context, tenantID, sessionDate string) (*Session, error) {
	var session Session
	err := c.doRetry(ctx, http.MethodPost, "/api/sessions/resolve",
		resolveRequest{TenantID: tenantID, SessionDate: sessionDate}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

type documentResponse struct {
	Document  *meeting.Document `json:"document"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

func (c *HTTPClient) GetDocument(ctx context.Context, sessionID string) (*meeting.Document, time.Time, error) {
	var resp documentResponse
	if err := c.doRetry(ctx, http.MethodGet, "/api/sessions/"+sessionID+"/document", nil, &resp); err != nil {
		return nil, time.Time{}, err
	}

	doc := resp.Document
	if doc == nil {
		doc = meeting.Empty()
	}
	var updatedAt time.Time
	if resp.UpdatedAt != nil {
		updatedAt = *resp.UpdatedAt
	}
	return doc, updatedAt, nil
}

func (c *HTTPClient) PutDocument(ctx context.Context, sessionID string, doc *meeting.Document) error {
	return c.do(ctx, http.MethodPut, "/api/sessions/"+sessionID+"/document", doc, nil)
}

func (c *HTTPClient) CompleteSession(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/complete", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
