package mcc

import (
	"sync"
	"testing"

	"syzygos/internal/model"
)

func TestTryUseStopsAtLimit(t *testing.T) {
	tracker := NewResourceUsageTracker(2)
	tracker.Reconcile([]model.GenomeID{7})

	if !tracker.TryUse(7) {
		t.Fatalf("first use should pass")
	}
	if !tracker.TryUse(7) {
		t.Fatalf("second use should pass")
	}
	if tracker.TryUse(7) {
		t.Fatalf("third use must be rejected at limit 2")
	}
	if got := tracker.UsageOf(7); got != 2 {
		t.Fatalf("usage = %d, want 2", got)
	}
}

func TestTryUseIsAtomicUnderContention(t *testing.T) {
	tracker := NewResourceUsageTracker(5)
	tracker.Reconcile([]model.GenomeID{1})

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tracker.TryUse(1) {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != 5 {
		t.Fatalf("granted = %d, want exactly 5", granted)
	}
	if got := tracker.UsageOf(1); got != 5 {
		t.Fatalf("usage = %d, want 5", got)
	}
}

func TestReconcileDropsDepartedAndKeepsSurvivors(t *testing.T) {
	tracker := NewResourceUsageTracker(3)
	tracker.Reconcile([]model.GenomeID{1, 2})
	tracker.TryUse(1)
	tracker.TryUse(1)
	tracker.TryUse(2)

	tracker.Reconcile([]model.GenomeID{1, 3})
	if got := tracker.UsageOf(1); got != 2 {
		t.Fatalf("survivor usage = %d, want 2", got)
	}
	if got := tracker.UsageOf(3); got != 0 {
		t.Fatalf("new opponent usage = %d, want 0", got)
	}
	// 2 departed; readmission starts back at zero.
	tracker.Reconcile([]model.GenomeID{1, 2, 3})
	if got := tracker.UsageOf(2); got != 0 {
		t.Fatalf("readmitted usage = %d, want 0", got)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	tracker := NewResourceUsageTracker(3)
	opponents := []model.GenomeID{4, 5, 6}
	tracker.Reconcile(opponents)
	tracker.TryUse(5)
	tracker.TryUse(5)

	tracker.Reconcile(opponents)
	if got := tracker.UsageOf(5); got != 2 {
		t.Fatalf("usage after second reconcile = %d, want 2", got)
	}
	if got := tracker.UsageOf(4); got != 0 {
		t.Fatalf("usage after second reconcile = %d, want 0", got)
	}
}

func TestDisabledTrackerAlwaysGrants(t *testing.T) {
	tracker := NewResourceUsageTracker(0)
	for i := 0; i < 10; i++ {
		if !tracker.TryUse(9) {
			t.Fatalf("disabled tracker rejected use %d", i)
		}
	}
	if got := tracker.UsageOf(9); got != 0 {
		t.Fatalf("disabled tracker kept accounting: %d", got)
	}

	var nilTracker *ResourceUsageTracker
	if !nilTracker.TryUse(9) {
		t.Fatalf("nil tracker must behave as disabled")
	}
	nilTracker.Reconcile([]model.GenomeID{1})
}
