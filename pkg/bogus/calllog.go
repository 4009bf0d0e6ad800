package bogus

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Call is one request seen by a dispatcher
type Call struct {
	ID     string
	Method string
	Path   string
	At     time.Time
}

// CallLog records every requested path in arrival order, matched or not
type CallLog struct {
	mu    sync.RWMutex
	calls []Call
}

// NewCallLog creates an empty call log
func NewCallLog() *CallLog {
	return &CallLog{}
}

// Record appends a call and returns it
func (l *CallLog) Record(method, path string) Call {
	call := Call{
		ID:     uuid.NewString(),
		Method: method,
		Path:   path,
		At:     time.Now(),
	}

	l.mu.Lock()
	l.calls = append(l.calls, call)
	l.mu.Unlock()
	return call
}

// Paths returns the requested paths in request order
func (l *CallLog) Paths() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	paths := make([]string, len(l.calls))
	for i, call := range l.calls {
		paths[i] = call.Path
	}
	return paths
}

// Calls returns a copy of the recorded calls
func (l *CallLog) Calls() []Call {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.calls)
}

// Called reports whether path was requested at least once
func (l *CallLog) Called(path string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, call := range l.calls {
		if call.Path == path {
			return true
		}
	}
	return false
}

// Len returns the number of recorded calls
func (l *CallLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.calls)
}

// Reset forgets every recorded call
func (l *CallLog) Reset() {
	l.mu.Lock()
	l.calls = nil
	l.mu.Unlock()
}
