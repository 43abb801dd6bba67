// Package sleephub is the HTTP client for the SleepHub cloud API.
package sleephub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrTokenInvalid indicates the service rejected the access token. The auth
// controller uses this to decide whether a refresh-and-retry is worthwhile.
var ErrTokenInvalid = errors.New("sleephub: access token rejected")

// APIError is a non-auth HTTP failure from the service.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sleephub: API error %d: %s", e.Status, e.Body)
}

// Client issues authenticated requests against a SleepHub deployment.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the given base URL with the given request
// timeout. Network timeouts are delegated entirely to the underlying
// http.Client; there is no retry logic at this layer.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// envelope is the {"result": ...} wrapper the API puts around every payload.
type envelope struct {
	Result json.RawMessage `json:"result"`
}

// listResult is the average-stats payload inside the envelope.
type listResult struct {
	SleptSessions []Session     `json:"slept_sessions"`
	AverageStats  *AverageStats `json:"average_stats"`
}

// refreshResult is the token payload inside the refresh envelope.
type refreshResult struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int64  `json:"expires_in,omitempty"`
	RefreshExpiresIn int64  `json:"refresh_expires_in,omitempty"`
}

// ListSessions fetches the user's sessions that ended inside [since, until]
// together with the service-side average block. Dates are interpreted by the
// service in the given IANA timezone. Ordering is the service's, which is
// chronological by session start.
func (c *Client) ListSessions(ctx context.Context, token, userID string, since, until time.Time, timezone string) (*SessionList, error) {
	q := url.Values{}
	q.Set("start_date", since.Format("2006-01-02"))
	q.Set("end_date", until.Format("2006-01-02"))
	q.Set("timezone", timezone)

	endpoint := fmt.Sprintf("%s/data/v1/users/%s/average-stats?%s", c.baseURL, url.PathEscape(userID), q.Encode())

	var result listResult
	if err := c.do(ctx, http.MethodGet, endpoint, token, nil, &result); err != nil {
		return nil, err
	}

	return &SessionList{Sessions: result.SleptSessions, Averages: result.AverageStats}, nil
}

// SessionDetail fetches the full metric set of a single session. Used when a
// listed session has not yet had its analysis attached.
func (c *Client) SessionDetail(ctx context.Context, token, userID, sessionID string) (*Session, error) {
	endpoint := fmt.Sprintf("%s/data/v1/users/%s/sessions/%s", c.baseURL, url.PathEscape(userID), url.PathEscape(sessionID))

	var session Session
	if err := c.do(ctx, http.MethodGet, endpoint, token, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Refresh exchanges a refresh token for a new token pair. This endpoint is
// unauthenticated apart from the refresh token itself; a rejection means the
// refresh token is exhausted.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	endpoint := c.baseURL + "/customer/v1/app/refresh"
	body := map[string]string{"refresh_token": refreshToken}

	var result refreshResult
	if err := c.do(ctx, http.MethodPost, endpoint, "", body, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("sleephub: refresh response missing access_token")
	}

	pair := &TokenPair{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}
	now := time.Now()
	if result.ExpiresIn > 0 {
		pair.AccessExpiresAt = now.Add(time.Duration(result.ExpiresIn) * time.Second)
	}
	if result.RefreshExpiresIn > 0 {
		pair.RefreshExpiresAt = now.Add(time.Duration(result.RefreshExpiresIn) * time.Second)
	}
	return pair, nil
}

// do issues one request and decodes the enveloped JSON response into result.
// 401 and 403 map to ErrTokenInvalid; other non-2xx statuses to *APIError.
func (c *Client) do(ctx context.Context, method, endpoint, token string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("sleephub: marshalling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("sleephub: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sleephub: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sleephub: reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrTokenInvalid, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	if result == nil {
		return nil
	}

	// Payloads arrive wrapped in {"result": ...}; fall back to the bare
	// object for deployments that skip the envelope.
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && len(env.Result) > 0 {
		data = env.Result
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("sleephub: unmarshalling response: %w", err)
	}
	return nil
}
