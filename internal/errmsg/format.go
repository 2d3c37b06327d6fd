// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants. Each names a failure surfaced to the user, either
// at startup or on the sync engine's drop list.
const (
	OpConfigLoad Op = "load configuration"
	OpStoreOpen  Op = "open download store"
	OpCacheInit  Op = "start audio cache"
	OpHydrate    Op = "load download records"
	OpSyncDrain  Op = "sync pending actions"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
