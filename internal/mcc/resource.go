package mcc

import (
	"sync"

	"syzygos/internal/model"
)

// ResourceUsageTracker caps how many times a single opponent may contribute
// to candidates' success counts. A limit of zero disables tracking entirely.
// A nil tracker behaves like a disabled one.
type ResourceUsageTracker struct {
	limit int

	mu    sync.Mutex
	usage map[model.GenomeID]int
}

func NewResourceUsageTracker(limit int) *ResourceUsageTracker {
	if limit < 0 {
		limit = 0
	}
	return &ResourceUsageTracker{
		limit: limit,
		usage: make(map[model.GenomeID]int),
	}
}

func (t *ResourceUsageTracker) Enabled() bool {
	return t != nil && t.limit > 0
}

func (t *ResourceUsageTracker) Limit() int {
	if t == nil {
		return 0
	}
	return t.limit
}

// Reconcile aligns the usage map with the current opponent population:
// newly admitted opponents start at zero, departed opponents are dropped,
// and surviving opponents keep their counts. Reconciling twice with the same
// set is a no-op the second time.
func (t *ResourceUsageTracker) Reconcile(current []model.GenomeID) {
	if !t.Enabled() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	next := make(map[model.GenomeID]int, len(current))
	for _, id := range current {
		next[id] = t.usage[id]
	}
	t.usage = next
}

// TryUse reports whether the opponent is still under its usage limit and, if
// so, increments its count. The check and the increment share one critical
// section so two concurrent trials cannot both slip under the limit.
func (t *ResourceUsageTracker) TryUse(id model.GenomeID) bool {
	if !t.Enabled() {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.usage[id] >= t.limit {
		return false
	}
	t.usage[id]++
	return true
}

func (t *ResourceUsageTracker) UsageOf(id model.GenomeID) int {
	if !t.Enabled() {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usage[id]
}
