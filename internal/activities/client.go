// Package activities is a thin client for the TravelPlaner backend
// activity list, with a local cache so the presentation layer can still
// render suggestions while the backend is unreachable. It consumes only
// a trip identifier and display filters and feeds nothing back into the
// chat core.
package activities

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/0SRAF0/TravelPlaner/internal/domain"
	"github.com/0SRAF0/TravelPlaner/internal/store"
)

// Client fetches activities from the backend and caches them locally.
type Client struct {
	baseURL string
	http    *http.Client
	repo    store.Repository
}

// NewClient creates an activities client for the given backend.
func NewClient(baseURL string, repo store.Repository) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		repo:    repo,
	}
}

// Fetch loads activities for a trip from the backend and refreshes the
// local cache. When the backend is unreachable or rejects the request,
// the cached list is served instead.
func (c *Client) Fetch(ctx context.Context, q store.ActivityQuery) ([]domain.Activity, error) {
	endpoint, err := c.endpoint(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build activity request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("Activity fetch failed, serving cache", "trip_id", q.TripID, "error", err)
		return c.repo.ListActivities(ctx, q)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Activity fetch rejected, serving cache", "trip_id", q.TripID, "status", resp.StatusCode)
		return c.repo.ListActivities(ctx, q)
	}

	var got []domain.Activity
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}

	if err := c.repo.ReplaceActivities(ctx, q.TripID, got); err != nil {
		slog.Warn("Activity cache refresh failed", "trip_id", q.TripID, "error", err)
	}
	return got, nil
}

func (c *Client) endpoint(q store.ActivityQuery) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/activities/"

	vals := url.Values{}
	vals.Set("trip_id", q.TripID)
	if q.Category != "" {
		vals.Set("category", q.Category)
	}
	if q.MinScore > 0 {
		vals.Set("min_score", strconv.FormatFloat(q.MinScore, 'f', -1, 64))
	}
	if q.Limit > 0 {
		vals.Set("limit", strconv.Itoa(q.Limit))
	}
	u.RawQuery = vals.Encode()
	return u.String(), nil
}
