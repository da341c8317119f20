// Package leaderboard talks to, and serves, the public high-score table.
package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verte-zerg/wwpm/internal/model"
)

// TopN is how many entries the leaderboard lists.
const TopN = 20

const apiPath = "/api/leaderboard"

// ErrRejected is returned when the service refuses a request (4xx).
var ErrRejected = errors.New("leaderboard rejected request")

// Client is an HTTP client for the leaderboard API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the service rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type submitRequest struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Top fetches the top entries ordered by score descending.
func (c *Client) Top(ctx context.Context) ([]model.LeaderboardEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	var entries []model.LeaderboardEntry
	if err := c.do(req, http.StatusOK, &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch scores: %w", err)
	}
	return entries, nil
}

// Submit inserts a new entry and returns what the service stored. Each call
// inserts a new row.
func (c *Client) Submit(ctx context.Context, username string, score int) ([]model.LeaderboardEntry, error) {
	body, err := json.Marshal(submitRequest{Username: username, Score: score})
	if err != nil {
		return nil, fmt.Errorf("failed to encode score: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	var stored []model.LeaderboardEntry
	if err := c.do(req, http.StatusCreated, &stored); err != nil {
		return nil, fmt.Errorf("failed to submit score: %w", err)
	}
	return stored, nil
}

func (c *Client) do(req *http.Request, want int, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != want {
		msg := http.StatusText(resp.StatusCode)
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("%w: %d %s", ErrRejected, resp.StatusCode, msg)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}
