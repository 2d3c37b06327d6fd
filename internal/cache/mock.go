package cache

import (
	"context"
	"sync"

	"github.com/tlemaire/hymnbox/internal/hymn"
)

// Mock is a test double for the Collaborator.
type Mock struct {
	mu sync.Mutex

	downloadCalls []string
	deleteCalls   []string
	clearCalls    int

	downloadPath string
	downloadErr  error
	deleteErr    error
	clearErr     error
	usage        Usage
	usageErr     error
}

// NewMock creates a new mock collaborator for testing.
func NewMock() *Mock {
	return &Mock{downloadPath: "/cache/mock.audio"}
}

func (m *Mock) Download(_ context.Context, h hymn.Hymn) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadCalls = append(m.downloadCalls, h.ID)
	if m.downloadErr != nil {
		return "", m.downloadErr
	}
	return m.downloadPath, nil
}

func (m *Mock) Delete(_ context.Context, hymnID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls = append(m.deleteCalls, hymnID)
	return m.deleteErr
}

func (m *Mock) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	return m.clearErr
}

func (m *Mock) Estimate() (Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage, m.usageErr
}

// Test helpers

func (m *Mock) SetDownloadResult(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadPath = path
	m.downloadErr = err
}

func (m *Mock) SetDeleteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErr = err
}

func (m *Mock) SetUsage(u Usage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = u
}

func (m *Mock) DownloadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.downloadCalls...)
}

func (m *Mock) DeleteCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleteCalls...)
}

func (m *Mock) ClearCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearCalls
}

// Verify Mock implements Collaborator at compile time.
var _ Collaborator = (*Mock)(nil)
