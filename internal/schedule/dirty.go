package schedule

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// DefaultClearDelay is how long dirty state survives a completed save. It
// must outlast the store's echo of that save, and stay short so remote
// edits to the same days are not ignored for long.
const DefaultClearDelay = 3 * time.Second

// DaySet is a set of day indices.
type DaySet map[int]struct{}

// NewDaySet returns a set holding days.
func NewDaySet(days ...int) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// Has reports whether day is in the set.
func (s DaySet) Has(day int) bool {
	_, ok := s[day]
	return ok
}

// Sorted returns the days in ascending order.
func (s DaySet) Sorted() []int {
	return slices.Sorted(maps.Keys(s))
}

// Tracker records which days and whether the metadata a client changed
// without a confirmed save. It is per session and never persisted.
//
// Every mark bumps the generation. After a save completes, ScheduleClear
// clears the tracker once the delay passes, unless a newer generation has
// started in the meantime.
type Tracker struct {
	mu         sync.Mutex
	days       DaySet
	meta       bool
	generation uint64
	delay      time.Duration
	clearTimer *time.Timer
}

// NewTracker returns an empty tracker that clears delay after a save.
func NewTracker(delay time.Duration) *Tracker {
	return &Tracker{days: DaySet{}, delay: delay}
}

// MarkDay flags day as edited locally.
func (t *Tracker) MarkDay(day int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.days[day] = struct{}{}
	t.generation++
}

// MarkMeta flags the document metadata as edited locally.
func (t *Tracker) MarkMeta() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.meta = true
	t.generation++
}

// MarkAll flags every day in [0, total) and the metadata.
func (t *Tracker) MarkAll(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for day := 0; day < total; day++ {
		t.days[day] = struct{}{}
	}
	t.meta = true
	t.generation++
}

// Observe flags the metadata when next replaced the extraDays sequence of
// prev. This catches restructuring edits that did not flag it themselves.
func (t *Tracker) Observe(prev, next domain.Document) {
	if !sameDays(prev.ExtraDays, next.ExtraDays) {
		t.MarkMeta()
	}
}

// State returns a copy of the dirty days, the metadata flag and the current
// generation.
func (t *Tracker) State() (DaySet, bool, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.days), t.meta, t.generation
}

// Generation returns the current generation.
func (t *Tracker) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation
}

// ScheduleClear arranges for the tracker to clear after the delay if the
// generation is still gen by then. A previously scheduled clear is
// cancelled.
func (t *Tracker) ScheduleClear(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.clearTimer != nil {
		t.clearTimer.Stop()
	}
	t.clearTimer = time.AfterFunc(t.delay, func() {
		t.clearIf(gen)
	})
}

func (t *Tracker) clearIf(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.generation != gen {
		return
	}
	t.days = DaySet{}
	t.meta = false
}

// Stop cancels any scheduled clear.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.clearTimer != nil {
		t.clearTimer.Stop()
		t.clearTimer = nil
	}
}
