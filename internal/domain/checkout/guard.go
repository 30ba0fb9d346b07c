package checkout

import (
	"context"
	"sync"
	"time"
)

// AttemptStore memoizes completed card-session results per checkout attempt,
// so a re-invoked payment widget receives the session that was already
// created instead of a second one. The scope of an entry is exactly one
// logical checkout attempt; implementations must expire entries after a TTL.
//
// Get returns (nil, nil) for an unknown attempt. Store failures are treated
// as a degraded guard, not a failed checkout: in-flight coalescing via
// singleflight still applies within one process.
type AttemptStore interface {
	Get(ctx context.Context, attemptID string) (*CardSessionResult, error)
	Put(ctx context.Context, attemptID string, res *CardSessionResult) error
}

type memoryAttempt struct {
	res       *CardSessionResult
	expiresAt time.Time
}

// MemoryAttemptStore is an in-process AttemptStore for single-instance
// deployments and tests. Expired entries are dropped lazily on access and,
// when StartCleanup is used, by a background sweep.
type MemoryAttemptStore struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]memoryAttempt
}

// NewMemoryAttemptStore creates a MemoryAttemptStore whose entries live for ttl.
func NewMemoryAttemptStore(ttl time.Duration) *MemoryAttemptStore {
	return &MemoryAttemptStore{
		ttl:     ttl,
		entries: make(map[string]memoryAttempt),
	}
}

func (s *MemoryAttemptStore) Get(_ context.Context, attemptID string) (*CardSessionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[attemptID]
	if !ok {
		return nil, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, attemptID)
		return nil, nil
	}
	return e.res, nil
}

func (s *MemoryAttemptStore) Put(_ context.Context, attemptID string, res *CardSessionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[attemptID] = memoryAttempt{res: res, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

// StartCleanup launches a background goroutine that evicts expired entries
// every TTL. It stops when ctx is cancelled.
func (s *MemoryAttemptStore) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.mu.Lock()
				for id, e := range s.entries {
					if now.After(e.expiresAt) {
						delete(s.entries, id)
					}
				}
				s.mu.Unlock()
			}
		}
	}()
}
