package usecase

import "sync"

// ThresholdStore holds the process-wide minimum amount below which donations
// of the gated asset are suppressed. It is written from websocket clients and
// read from the webhook path, hence the lock.
type ThresholdStore struct {
	mu    sync.RWMutex
	value int
}

// NewThresholdStore creates a store with an initial threshold.
func NewThresholdStore(initial int) *ThresholdStore {
	if initial < 0 {
		initial = 0
	}
	return &ThresholdStore{value: initial}
}

// Get returns the current threshold.
func (s *ThresholdStore) Get() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the threshold. Callers validate non-negativity; Set clamps as a
// safety net.
func (s *ThresholdStore) Set(value int) {
	if value < 0 {
		return
	}
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
}
