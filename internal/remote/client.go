// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package remote implements the ReelCraft backend client.
//
// The backend stores confirmed generation results per user and exposes a
// streaming generation endpoint. This package implements the HTTP client,
// the error taxonomy the UI layers dispatch on, and SSE stream handling.
package remote

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the ReelCraft API.
const (
	// DefaultBaseURL is the base URL for the ReelCraft API.
	DefaultBaseURL = "https://api.reelcraft.app/api/v1"

	// DefaultTimeout is the default timeout for mutating API requests.
	DefaultTimeout = 60 * time.Second

	// DefaultListTimeout is the timeout for result listing. Generous on
	// purpose: the backend paginates lazily and a slow list must surface
	// as ErrListTimeout rather than a generic network failure.
	DefaultListTimeout = 45 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for
	// transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize caps response bodies to keep a misbehaving server
	// from exhausting memory.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// sharedHTTPClient serves all non-streaming requests. Connection pooling
// keeps TCP handshake overhead off the request path.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// sharedStreamingClient serves streaming requests. No client timeout: the
// stream lifetime is controlled by the request context.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

// Error variables for common backend errors. Callers dispatch on these with
// errors.Is; the presentation layer decides which are loud and which are
// silent.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("ReelCraft API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrPermissionDenied indicates the account lacks access to the
	// feature (HTTP 402 or 403). This is an expected state for free-tier
	// accounts: callers must treat it as a signal, never log it as an
	// error, and fall back to local-only operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound indicates the requested result does not exist.
	ErrNotFound = errors.New("result not found")

	// ErrListTimeout indicates the result listing exceeded its deadline.
	// Expected on slow links; callers suppress it and serve the cache.
	ErrListTimeout = errors.New("result listing timed out")
)

// APIError represents an error response from the ReelCraft API.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("ReelCraft error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("ReelCraft error (HTTP %d): %s", e.Status, e.Message)
}

// apiErrorResponse represents an error body from the API.
type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// Record is a stored generation result as the backend returns it. Records
// that exist remotely are confirmed by definition.
type Record struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`

	// Type is the backend's coarse product type, e.g. "copywriting",
	// "plan", "persona" or "topic". Older records may omit it.
	Type string `json:"type,omitempty"`

	// Category is optional explicit category metadata. Newer records
	// carry it; reconciliation falls back to Type and then to content
	// when it is absent.
	Category string `json:"category,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// listResponse is the response envelope for result listing.
type listResponse struct {
	Results []Record `json:"results"`
}

// createRequest is the body for result creation.
type createRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`

	// ClientID carries the locally minted id so the backend can report
	// duplicates if a create is retried.
	ClientID string `json:"client_id,omitempty"`
}

// updateRequest is the body for result updates. Nil fields are untouched.
type updateRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the ReelCraft backend API.
type Client struct {
	apiKey      string
	baseURL     string
	maxRetries  int
	listTimeout time.Duration
	userAgent   string

	// limiter smooths request bursts so interactive use stays inside the
	// backend's per-key quota.
	limiter *rate.Limiter
}

// NewClient creates a new backend client with the given API key.
//
// If the key is empty the client is still created, but every request fails
// with ErrNotConfigured.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:      strings.TrimSpace(apiKey),
		baseURL:     DefaultBaseURL,
		maxRetries:  DefaultMaxRetries,
		listTimeout: DefaultListTimeout,
		userAgent:   "reelcraft-tui/0.1.0",
		limiter:     rate.NewLimiter(rate.Limit(10), 20),
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// WithListTimeout sets the timeout for result listing.
func (c *Client) WithListTimeout(timeout time.Duration) *Client {
	c.listTimeout = timeout
	return c
}

// WithMaxRetries sets the maximum number of retry attempts.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	c.maxRetries = maxRetries
	return c
}

// WithRateLimit sets the request rate limit and burst size.
func (c *Client) WithRateLimit(perSecond float64, burst int) *Client {
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return c
}

// IsConfigured returns true if the client has an API key configured.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// APIKeyMasked returns a masked identifier for the API key for display.
// The key itself is never exposed, only a hash fingerprint.
func (c *Client) APIKeyMasked() string {
	if c.apiKey == "" {
		return "[not set]"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(c.apiKey), hex.EncodeToString(h[:4]))
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// setHeaders sets the required headers for API requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
}

// logRequest logs an API request without exposing sensitive data. Headers
// carry auth and bodies carry user content, so neither is logged.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs an API response status with duration.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API response: %d (%v)", resp.StatusCode, duration)
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

// do performs a single request: rate limit, send, classify errors,
// and return the parsed body for 2xx responses.
func (c *Client) do(ctx context.Context, method, requestURL string, reqBody any) ([]byte, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if reqBody != nil {
		bodyBytes, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	c.logRequest(req)
	startTime := time.Now()
	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(startTime))

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.handleErrorResponse(resp, body)
	}
	return body, nil
}

// doWithRetry wraps do with exponential backoff for transient errors.
func (c *Client) doWithRetry(ctx context.Context, method, requestURL string, reqBody any) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.calculateBackoff(attempt)):
			}
		}

		body, err := c.do(ctx, method, requestURL, reqBody)
		if err == nil {
			return body, nil
		}
		if !c.isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// handleErrorResponse converts HTTP error responses to the error taxonomy.
func (c *Client) handleErrorResponse(resp *http.Response, body []byte) error {
	statusCode := resp.StatusCode

	var apiErr apiErrorResponse
	message := ""
	code := ""
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
		code = apiErr.Error.Code
	}

	switch statusCode {
	case http.StatusUnauthorized:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrAuthFailed, message)
		}
		return ErrAuthFailed
	case http.StatusPaymentRequired, http.StatusForbidden:
		// Both mean the plan does not cover the feature. Intentionally no
		// message: nothing upstream may log or display server text for
		// this expected state.
		return ErrPermissionDenied
	case http.StatusNotFound:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, message)
		}
		return ErrNotFound
	case http.StatusTooManyRequests:
		return c.rateLimitError(resp)
	default:
		if message == "" {
			message = string(body)
		}
		return &APIError{Code: code, Message: message, Status: statusCode}
	}
}

// rateLimitError builds a RateLimitError from the Retry-After header.
func (c *Client) rateLimitError(resp *http.Response) error {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return ErrRateLimited
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return &RateLimitError{RetryAfter: time.Duration(seconds) * time.Second}
	}
	if t, err := http.ParseTime(retryAfter); err == nil {
		return &RateLimitError{RetryAfter: time.Until(t)}
	}
	return ErrRateLimited
}

// RateLimitError is a rate limit error with retry information.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %v", e.RetryAfter)
	}
	return "rate limited"
}

// Is allows RateLimitError to be compared with ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// isRetryable determines if an error should trigger a retry.
func (c *Client) isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}
	return false
}

// calculateBackoff returns the delay before the next retry attempt.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// =============================================================================
// RESULT STORE OPERATIONS
// =============================================================================

// List fetches the stored results for userID, newest first per the backend
// contract. The call runs under the generous list timeout; when the deadline
// is the listing's own (not the caller's), the error maps to ErrListTimeout
// so callers can suppress it and serve the local cache.
func (c *Client) List(ctx context.Context, userID string) ([]Record, error) {
	listCtx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	u := c.baseURL + "/results"
	if userID != "" {
		u += "?user=" + url.QueryEscape(userID)
	}

	body, err := c.do(listCtx, http.MethodGet, u, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrListTimeout
		}
		return nil, err
	}

	var listResp listResponse
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}
	return listResp.Results, nil
}

// Create stores a new result and returns the backend's record, including
// the authoritative server-assigned id. Transient failures are retried
// with backoff; clientID makes the retries idempotent.
func (c *Client) Create(ctx context.Context, clientID, title, content, category string) (*Record, error) {
	reqBody := createRequest{
		Title:    title,
		Content:  content,
		Category: category,
		ClientID: clientID,
	}

	body, err := c.doWithRetry(ctx, http.MethodPost, c.baseURL+"/results", reqBody)
	if err != nil {
		return nil, err
	}

	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to parse created result: %w", err)
	}
	return &record, nil
}

// UpdateTitle renames a stored result.
func (c *Client) UpdateTitle(ctx context.Context, id, title string) error {
	reqBody := updateRequest{Title: &title}
	_, err := c.do(ctx, http.MethodPatch, c.baseURL+"/results/"+url.PathEscape(id), reqBody)
	return err
}

// UpdateContent replaces the content of a stored result.
func (c *Client) UpdateContent(ctx context.Context, id, content string) error {
	reqBody := updateRequest{Content: &content}
	_, err := c.do(ctx, http.MethodPatch, c.baseURL+"/results/"+url.PathEscape(id), reqBody)
	return err
}

// Delete removes a stored result. Deleting an already-deleted result
// returns ErrNotFound.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.baseURL+"/results/"+url.PathEscape(id), nil)
	return err
}

// CheckAccess verifies that the account's plan covers the generation
// feature. Returns nil when access is granted, ErrPermissionDenied when the
// plan does not cover it, and other errors for transport failures.
func (c *Client) CheckAccess(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, c.baseURL+"/auth/check", nil)
	return err
}
