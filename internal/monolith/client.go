// Package monolith is the outbound client for the core platform's internal
// activation endpoints. The payment service never mutates platform state
// directly; it reports verified payments here and the monolith applies them.
package monolith

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/damilsoft/payment-service/internal/resilience"
)

// MembershipActivation is the body sent when a gym member's payment is
// confirmed.
type MembershipActivation struct {
	SubscriptionPlan string `json:"subscriptionPlan"`
	Employment       string `json:"employment"`
	AllowedVisits    int64  `json:"allowedVisits"`
}

// StatusError reports a non-success HTTP response from the monolith.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("monolith: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client calls the monolith's internal payment endpoints through the shared
// retry and circuit-breaker wrapper.
type Client struct {
	BaseURL string
	HTTP    resilience.HTTPClient
}

// ActivateTenant reports a completed SaaS subscription payment so the
// monolith unlocks the tenant's plan for the paid duration.
func (c Client) ActivateTenant(ctx context.Context, tenantID, plan, duration string) error {
	q := url.Values{}
	q.Set("plan", plan)
	q.Set("duration", duration)
	endpoint := fmt.Sprintf("%s/internal/payments/tenants/%s/activate?%s",
		strings.TrimRight(c.BaseURL, "/"), url.PathEscape(tenantID), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("monolith: build tenant activation request: %w", err)
	}
	return c.send(ctx, req)
}

// ActivateMembership reports a completed gym membership payment for a member
// of a connected account.
func (c Client) ActivateMembership(ctx context.Context, userID string, activation MembershipActivation) error {
	body, err := json.Marshal(activation)
	if err != nil {
		return fmt.Errorf("monolith: encode membership activation: %w", err)
	}
	endpoint := fmt.Sprintf("%s/internal/payments/users/%s/memberships/activate",
		strings.TrimRight(c.BaseURL, "/"), url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("monolith: build membership activation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(ctx, req)
}

func (c Client) send(ctx context.Context, req *http.Request) error {
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("monolith: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
}

// NewClient builds a monolith client with the provided transport settings.
func NewClient(baseURL string, httpClient *http.Client, breaker *resilience.Breaker, baseBackoff time.Duration, maxAttempts int, jitter float64, timeout time.Duration) Client {
	return Client{
		BaseURL: baseURL,
		HTTP: resilience.HTTPClient{
			Client:      httpClient,
			Breaker:     breaker,
			BaseBackoff: baseBackoff,
			MaxAttempts: maxAttempts,
			Jitter:      jitter,
			Timeout:     timeout,
		},
	}
}
