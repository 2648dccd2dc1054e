// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Janus Core playground backend.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/januscore/janus-cli/internal/model"
)

// Configuration constants for the backend client.
const (
	// DefaultTimeout is the default timeout for API requests. Generation can
	// be slow on large models, so it is generous.
	DefaultTimeout = 120 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// userAgent identifies the client to the backend.
	userAgent = "janus-cli/0.1.0"
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared HTTP client with connection pooling for all backend requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotAuthenticated indicates no bearer token is set on the client.
	ErrNotAuthenticated = errors.New("not authenticated: run 'janus login'")

	// ErrAuthFailed indicates the backend rejected the token or credentials
	// (HTTP 401). Callers should reauthenticate.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotFound indicates the requested prompt or conversation does not exist.
	ErrNotFound = errors.New("not found")
)

// ServerError represents a non-2xx response from the backend.
type ServerError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error (HTTP %d)", e.Status)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the playground backend. It is safe for use from a
// single session; the bearer token is attached to every authenticated call.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	// limiter paces outgoing requests so a scripted REPL cannot hammer the
	// backend. Generation calls are naturally slow; list refreshes are not.
	limiter *rate.Limiter
}

// NewClient creates a client for the given backend base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
	}
}

// WithToken sets the bearer token attached to authenticated calls.
func (c *Client) WithToken(token string) *Client {
	c.token = strings.TrimSpace(token)
	return c
}

// WithHTTPClient overrides the HTTP client (used by tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// SetToken updates the bearer token after login.
func (c *Client) SetToken(token string) {
	c.token = strings.TrimSpace(token)
}

// ClearToken removes the bearer token (logout).
func (c *Client) ClearToken() {
	c.token = ""
}

// IsAuthenticated reports whether a token is set.
func (c *Client) IsAuthenticated() bool {
	return c.token != ""
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// verbose gates request/response logging. Off by default; the CLI enables
// it for --verbose runs.
var verbose bool

// SetVerbose enables or disables request/response logging.
func SetVerbose(v bool) {
	verbose = v
}

// logRequest logs an API request without exposing sensitive data.
// Headers (auth) and bodies (prompt content) are never logged.
func logRequest(req *http.Request) {
	if verbose {
		log.Printf("API request: %s %s", req.Method, req.URL.Path)
	}
}

// logResponse logs an API response status with duration, never the body.
func logResponse(resp *http.Response, duration time.Duration) {
	if verbose {
		log.Printf("API response: %d (%v)", resp.StatusCode, duration)
	}
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// do performs a single request and decodes the response into out (if non-nil).
// There is no retry: a failure surfaces once and leaves caller state alone.
func (c *Client) do(ctx context.Context, method, path string, reqBody any, out any, authed bool) error {
	if authed && c.token == "" {
		return ErrNotAuthenticated
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var bodyReader io.Reader
	if reqBody != nil {
		bodyBytes, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)

	// SECURITY: Clear the Authorization header immediately after the request
	// so the token cannot leak through request dumps.
	req.Header.Del("Authorization")

	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	logResponse(resp, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyError(resp.StatusCode, body)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// classifyError converts non-2xx responses to typed errors.
func classifyError(status int, body []byte) error {
	var apiErr apiErrorBody
	msg := ""
	if err := json.Unmarshal(body, &apiErr); err == nil {
		msg = apiErr.text()
	}

	switch status {
	case http.StatusUnauthorized:
		if msg != "" {
			return fmt.Errorf("%w: %s", ErrAuthFailed, msg)
		}
		return ErrAuthFailed
	case http.StatusNotFound:
		if msg != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return ErrNotFound
	default:
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return &ServerError{Status: status, Message: msg}
	}
}

// =============================================================================
// AUTH
// =============================================================================

// Login authenticates with username/password and stores the returned bearer
// token on the client. The token is also returned for persistence.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, &resp, false)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &ServerError{Status: http.StatusOK, Message: "login response contained no token"}
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// Register creates a new backend account. It does not log in.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/register", registerRequest{Username: username, Password: password}, nil, false)
}

// =============================================================================
// GENERATE
// =============================================================================

// Generate requests a completion for the given prompt and history. Returns
// the assistant text.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	var resp generateResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate", req, &resp, true); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// =============================================================================
// PROMPT TEMPLATES
// =============================================================================

// ListPrompts returns all saved prompt templates.
func (c *Client) ListPrompts(ctx context.Context) ([]model.PromptTemplate, error) {
	var resp promptsResponse
	if err := c.do(ctx, http.MethodGet, "/api/prompts", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Prompts, nil
}

// CreatePrompt saves a prompt template.
func (c *Client) CreatePrompt(ctx context.Context, name, systemPrompt, userPrompt string) error {
	body := createPromptRequest{Name: name, SystemPrompt: systemPrompt, UserPrompt: userPrompt}
	return c.do(ctx, http.MethodPost, "/api/prompts", body, nil, true)
}

// DeletePrompt removes a prompt template by ID.
func (c *Client) DeletePrompt(ctx context.Context, id int64) error {
	var ack messageResponse
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/prompts/%d", id), nil, &ack, true)
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// ListConversations returns all saved conversations.
func (c *Client) ListConversations(ctx context.Context) ([]WireConversation, error) {
	var resp conversationsResponse
	if err := c.do(ctx, http.MethodGet, "/api/conversations", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// CreateConversation saves the turn list under the given title. A nil title
// asks the backend to generate one. Returns the assigned id and title.
func (c *Client) CreateConversation(ctx context.Context, turns []*model.Turn, title *string) (int64, string, error) {
	body := createConversationRequest{Messages: TurnsToWire(turns), Title: title}
	var resp conversationRef
	if err := c.do(ctx, http.MethodPost, "/api/conversations", body, &resp, true); err != nil {
		return 0, "", err
	}
	return resp.ID, resp.Title, nil
}

// ForkConversation creates a server-side copy of conversation id up to and
// including forkIndex. Returns the new conversation's id and title.
func (c *Client) ForkConversation(ctx context.Context, id int64, forkIndex int) (int64, string, error) {
	var resp conversationRef
	path := fmt.Sprintf("/api/conversations/%d/fork", id)
	if err := c.do(ctx, http.MethodPost, path, forkRequest{ForkIndex: forkIndex}, &resp, true); err != nil {
		return 0, "", err
	}
	return resp.ID, resp.Title, nil
}

// DeleteConversation removes a saved conversation by ID. The backend
// acknowledges with a {message} body.
func (c *Client) DeleteConversation(ctx context.Context, id int64) error {
	var ack messageResponse
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/conversations/%d", id), nil, &ack, true)
}
