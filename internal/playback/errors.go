// internal/playback/errors.go
package playback

import (
	"errors"
	"net"
	"strings"
)

// ErrUnavailableOffline is returned when a track has no completed download
// and the client is offline.
var ErrUnavailableOffline = errors.New("unavailable offline")

// ErrAborted is returned when loading is interrupted by a newer request.
var ErrAborted = errors.New("aborted")

// Error codes surfaced on PlayerState.Err.
const (
	errCodeAborted            = "aborted"
	errCodeNetwork            = "network"
	errCodeDecode             = "decode"
	errCodeFormatUnsupported  = "format-unsupported"
	errCodeUnavailableOffline = "unavailable-offline"
	errCodeUnknown            = "unknown"
)

// classifyErr maps a load/play failure to one user-facing error code.
func classifyErr(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrAborted):
		return errCodeAborted
	case errors.Is(err, ErrUnavailableOffline):
		return errCodeUnavailableOffline
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return errCodeNetwork
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "unexpected status"), strings.Contains(msg, "open stream"):
		return errCodeNetwork
	case strings.Contains(msg, "unsupported format"):
		return errCodeFormatUnsupported
	case strings.Contains(msg, "decode"):
		return errCodeDecode
	default:
		return errCodeUnknown
	}
}
