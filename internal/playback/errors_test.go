// internal/playback/errors_test.go
package playback

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"aborted", ErrAborted, "aborted"},
		{"unavailable offline", fmt.Errorf("track h1: %w", ErrUnavailableOffline), "unavailable-offline"},
		{"decode failure", errors.New("decode /tmp/h1.audio: invalid frame"), "decode"},
		{"unsupported format", errors.New("unsupported format: .ogg"), "format-unsupported"},
		{"http status", errors.New("open stream: unexpected status 503 Service Unavailable"), "network"},
		{"unknown", errors.New("something else"), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyErr(tt.err); got != tt.want {
				t.Errorf("classifyErr(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
