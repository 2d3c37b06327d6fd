package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

func newRecordingServer(t *testing.T, status int) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path}
		if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		requests = append(requests, rec)
		rw.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestRecordPlay(t *testing.T) {
	srv, requests := newRecordingServer(t, http.StatusOK)
	c := NewClient(srv.URL)

	playedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := c.RecordPlay("h42", playedAt); err != nil {
		t.Fatalf("RecordPlay failed: %v", err)
	}

	req := (*requests)[0]
	if req.Method != http.MethodPost || req.Path != "/api/hymns/play-count" {
		t.Errorf("request = %s %s, want POST /api/hymns/play-count", req.Method, req.Path)
	}
	if req.Body["hymnId"] != "h42" {
		t.Errorf("hymnId = %v, want h42", req.Body["hymnId"])
	}
	if req.Body["timestamp"] != "2026-03-01T10:00:00Z" {
		t.Errorf("timestamp = %v, want RFC3339 UTC", req.Body["timestamp"])
	}
}

func TestSetLike_MethodByIntent(t *testing.T) {
	tests := []struct {
		name       string
		liked      bool
		wantMethod string
	}{
		{"like", true, http.MethodPost},
		{"unlike", false, http.MethodDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, requests := newRecordingServer(t, http.StatusNoContent)
			c := NewClient(srv.URL)

			if err := c.SetLike("h7", tt.liked); err != nil {
				t.Fatalf("SetLike failed: %v", err)
			}

			req := (*requests)[0]
			if req.Method != tt.wantMethod {
				t.Errorf("method = %s, want %s", req.Method, tt.wantMethod)
			}
			if req.Path != "/api/hymns/h7/like" {
				t.Errorf("path = %s, want /api/hymns/h7/like", req.Path)
			}
		})
	}
}

func TestAddToPlaylist(t *testing.T) {
	srv, requests := newRecordingServer(t, http.StatusCreated)
	c := NewClient(srv.URL)

	if err := c.AddToPlaylist("p1", "h3"); err != nil {
		t.Fatalf("AddToPlaylist failed: %v", err)
	}

	req := (*requests)[0]
	if req.Path != "/api/playlists/p1/tracks" {
		t.Errorf("path = %s, want /api/playlists/p1/tracks", req.Path)
	}
	if req.Body["hymnId"] != "h3" {
		t.Errorf("hymnId = %v, want h3", req.Body["hymnId"])
	}
}

func TestRate(t *testing.T) {
	srv, requests := newRecordingServer(t, http.StatusOK)
	c := NewClient(srv.URL)

	if err := c.Rate("h3", 5); err != nil {
		t.Fatalf("Rate failed: %v", err)
	}

	req := (*requests)[0]
	if req.Path != "/api/hymns/h3/rating" {
		t.Errorf("path = %s, want /api/hymns/h3/rating", req.Path)
	}
	if req.Body["rating"] != float64(5) {
		t.Errorf("rating = %v, want 5", req.Body["rating"])
	}
}

func TestComment(t *testing.T) {
	srv, requests := newRecordingServer(t, http.StatusOK)
	c := NewClient(srv.URL)

	if err := c.Comment("h3", "beautiful harmony"); err != nil {
		t.Fatalf("Comment failed: %v", err)
	}

	req := (*requests)[0]
	if req.Path != "/api/hymns/h3/comments" {
		t.Errorf("path = %s, want /api/hymns/h3/comments", req.Path)
	}
	if req.Body["comment"] != "beautiful harmony" {
		t.Errorf("comment = %v, want text", req.Body["comment"])
	}
}

func TestNon2xxIsFailure(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusInternalServerError)
	c := NewClient(srv.URL)

	if err := c.RecordPlay("h1", time.Now()); err == nil {
		t.Error("expected error for 500 response")
	}
}
