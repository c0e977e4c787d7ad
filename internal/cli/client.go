package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/rules"
)

// APIError is a non-2xx response from the rules server
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to the rule administration API
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListRules(ctx context.Context) ([]*rules.Rule, error) {
	var resp struct {
		Rules []*rules.Rule `json:"rules"`
	}
	if err := c.do(ctx, http.MethodGet, "/rules", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

func (c *Client) GetRule(ctx context.Context, id string) (*rules.Rule, error) {
	var rule rules.Rule
	if err := c.do(ctx, http.MethodGet, "/rules/"+url.PathEscape(id), nil, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// AddRule creates rule on the server and returns the stored copy
func (c *Client) AddRule(ctx context.Context, rule *rules.Rule) (*rules.Rule, error) {
	var stored rules.Rule
	if err := c.do(ctx, http.MethodPost, "/rules", rule, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (c *Client) RemoveRule(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rules/"+url.PathEscape(id), nil, nil)
}

func (c *Client) SetEnabled(ctx context.Context, id string, enabled bool) (*rules.Rule, error) {
	var rule rules.Rule
	body := map[string]bool{"enabled": enabled}
	if err := c.do(ctx, http.MethodPut, "/rules/"+url.PathEscape(id)+"/enabled", body, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// Fire sends an event through the engine. A failed ProcessEvent is returned
// as a result with Success false, not as an error.
func (c *Client) Fire(ctx context.Context, trigger rules.Trigger, payload rules.Payload) (*rules.ProcessResult, error) {
	var result rules.ProcessResult
	body := map[string]any{"type": trigger, "payload": payload}
	err := c.do(ctx, http.MethodPost, "/events", body, &result)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusInternalServerError && result.Error != "" {
		return &result, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var body struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			apiErr.Message, apiErr.Details = body.Error, body.Details
		}
		// event failures still carry a ProcessResult
		if out != nil && len(raw) > 0 {
			_ = json.Unmarshal(raw, out)
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
