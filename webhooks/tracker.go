package webhooks

import (
	"strings"
	"sync"
	"time"
)

// UnlockTracker correlates authorized unlocks with the door openings that
// follow them. Records are keyed by lock id; a later unlock for the same lock
// overwrites the earlier one.
type UnlockTracker struct {
	mu      sync.Mutex
	unlocks map[string]time.Time
}

func NewUnlockTracker() *UnlockTracker {
	return &UnlockTracker{unlocks: map[string]time.Time{}}
}

// RecordUnlock marks lockID as legitimately unlocked at the given time.
func (t *UnlockTracker) RecordUnlock(lockID string, at time.Time) {
	if t == nil {
		return
	}
	lockID = strings.TrimSpace(lockID)
	if lockID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unlocks == nil {
		t.unlocks = map[string]time.Time{}
	}
	t.unlocks[lockID] = at
}

// CheckAndConsume reports whether an opening of lockID at the given time is
// unexplained. A record within the correlation window explains the opening
// and is consumed atomically; a stale record does not explain it and is left
// in place. Check and consume happen under one lock so two concurrent
// openings cannot both claim the same unlock.
func (t *UnlockTracker) CheckAndConsume(lockID string, at time.Time, window time.Duration) bool {
	if t == nil {
		return true
	}
	lockID = strings.TrimSpace(lockID)
	if lockID == "" {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	unlockedAt, ok := t.unlocks[lockID]
	if !ok {
		return true
	}
	if at.Sub(unlockedAt) <= window {
		delete(t.unlocks, lockID)
		return false
	}
	return true
}

// Len reports the number of outstanding unlock records.
func (t *UnlockTracker) Len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.unlocks)
}
