package ranking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jobboard-backend/internal/shared/telemetry"
)

var ErrRejected = errors.New("ranking request rejected")

// Client asks the ranking service to compute a match score for an application.
// The score comes back later through the internal match-score endpoint.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// RequestScore posts to {BaseURL}/rank/application/{id}. Any 2xx counts as accepted.
func (c *Client) RequestScore(ctx context.Context, applicationID int64) error {
	if c == nil || c.BaseURL == "" {
		return fmt.Errorf("ranking service not configured")
	}
	url := c.BaseURL + "/rank/application/" + strconv.FormatInt(applicationID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("build ranking request: %w", err)
	}
	if c.Token != "" {
		req.Header.Set("X-Internal-Token", c.Token)
	}
	if requestID := telemetry.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("ranking request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	return nil
}
