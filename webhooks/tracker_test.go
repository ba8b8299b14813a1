package webhooks

import (
	"testing"
	"time"
)

func TestUnlockTrackerConsumesWithinWindow(t *testing.T) {
	tracker := NewUnlockTracker()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tracker.RecordUnlock("9", base)
	if tracker.CheckAndConsume("9", base.Add(3*time.Second), 5*time.Second) {
		t.Fatalf("expected open within window to be explained")
	}
	if !tracker.CheckAndConsume("9", base.Add(4*time.Second), 5*time.Second) {
		t.Fatalf("expected consumed record not to explain a second open")
	}
}

func TestUnlockTrackerUnknownLockIsUnexplained(t *testing.T) {
	tracker := NewUnlockTracker()
	if !tracker.CheckAndConsume("404", time.Now(), 5*time.Second) {
		t.Fatalf("expected open with no prior unlock to be unexplained")
	}
}

func TestUnlockTrackerStaleRecordLeftInPlace(t *testing.T) {
	tracker := NewUnlockTracker()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tracker.RecordUnlock("9", base)
	if !tracker.CheckAndConsume("9", base.Add(10*time.Second), 5*time.Second) {
		t.Fatalf("expected open beyond window to be unexplained")
	}
	if tracker.Len() != 1 {
		t.Fatalf("expected stale record to survive, have %d records", tracker.Len())
	}
}

func TestUnlockTrackerOverwritesOnNewUnlock(t *testing.T) {
	tracker := NewUnlockTracker()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tracker.RecordUnlock("9", base)
	tracker.RecordUnlock("9", base.Add(time.Minute))
	if tracker.Len() != 1 {
		t.Fatalf("expected one record per lock, have %d", tracker.Len())
	}
	if tracker.CheckAndConsume("9", base.Add(time.Minute+time.Second), 5*time.Second) {
		t.Fatalf("expected refreshed record to explain the open")
	}
}

func TestUnlockTrackerIgnoresBlankLockID(t *testing.T) {
	tracker := NewUnlockTracker()
	tracker.RecordUnlock("  ", time.Now())
	if tracker.Len() != 0 {
		t.Fatalf("expected blank lock id to be ignored")
	}
	if !tracker.CheckAndConsume("", time.Now(), 5*time.Second) {
		t.Fatalf("expected blank lock id opens to be unexplained")
	}
}

func TestUnlockTrackerConcurrentOpensConsumeOnce(t *testing.T) {
	tracker := NewUnlockTracker()
	base := time.Now()
	tracker.RecordUnlock("9", base)

	const attempts = 16
	explained := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			explained <- !tracker.CheckAndConsume("9", base.Add(time.Second), 5*time.Second)
		}()
	}

	count := 0
	for i := 0; i < attempts; i++ {
		if <-explained {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one open to consume the unlock, got %d", count)
	}
}
