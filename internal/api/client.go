// Package api provides the backend sinks that deferred user actions are
// delivered to.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client provides access to the hymnal backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new backend API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RecordPlay reports one playback of a hymn.
func (c *Client) RecordPlay(hymnID string, playedAt time.Time) error {
	body := map[string]any{"hymnId": hymnID, "timestamp": playedAt.UTC().Format(time.RFC3339)}
	return c.send(http.MethodPost, "/api/hymns/play-count", body)
}

// SetLike records or removes a like. The HTTP method carries the intent:
// POST to like, DELETE to unlike.
func (c *Client) SetLike(hymnID string, liked bool) error {
	method := http.MethodPost
	if !liked {
		method = http.MethodDelete
	}
	return c.send(method, "/api/hymns/"+hymnID+"/like", nil)
}

// AddToPlaylist appends a hymn to a playlist.
func (c *Client) AddToPlaylist(playlistID, hymnID string) error {
	return c.send(http.MethodPost, "/api/playlists/"+playlistID+"/tracks", map[string]any{"hymnId": hymnID})
}

// Rate submits a rating for a hymn.
func (c *Client) Rate(hymnID string, rating int) error {
	return c.send(http.MethodPost, "/api/hymns/"+hymnID+"/rating", map[string]any{"rating": rating})
}

// Comment submits a comment on a hymn.
func (c *Client) Comment(hymnID, comment string) error {
	return c.send(http.MethodPost, "/api/hymns/"+hymnID+"/comments", map[string]any{"comment": comment})
}

// send performs one request. Any non-2xx status is a delivery failure,
// indistinguishable from a transport error to callers.
func (c *Client) send(method, path string, body any) error {
	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return nil
}
