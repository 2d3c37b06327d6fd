package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	err := errors.New("connection refused")
	got := Format(OpStoreOpen, err)
	want := "Failed to open download store: connection refused"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormat_NilError(t *testing.T) {
	if got := Format(OpSyncDrain, nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
}

func TestFormatWith(t *testing.T) {
	err := errors.New("name resolution failed")
	got := FormatWith(OpSyncDrain, "like abc123 after 5 attempts", err)
	want := "Failed to sync pending actions 'like abc123 after 5 attempts': name resolution failed"
	if got != want {
		t.Errorf("FormatWith() = %q, want %q", got, want)
	}
}

func TestFormatWith_EmptyContext(t *testing.T) {
	err := errors.New("boom")
	if got, want := FormatWith(OpCacheInit, "", err), Format(OpCacheInit, err); got != want {
		t.Errorf("FormatWith(empty) = %q, want %q", got, want)
	}
}
