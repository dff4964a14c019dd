package schedule

import "github.com/hwang1401/travel-planner/internal/domain"

// Verdict is the outcome of filtering a change notification.
type Verdict int

const (
	// Accepted notifications are merged.
	Accepted Verdict = iota
	// SelfOrigin notifications echo this client's own write.
	SelfOrigin
	// Stale notifications carry a version at or below one already seen.
	Stale
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case SelfOrigin:
		return "self_origin"
	case Stale:
		return "stale"
	}
	return "unknown"
}

// VersionGuard filters incoming notifications for self-origin and
// staleness. The floor is the highest version received or saved by this
// client; versions at or below it would regress the local state.
// A VersionGuard is not safe for concurrent use.
type VersionGuard struct {
	self         string
	lastReceived int64
	lastSaved    int64
}

// NewVersionGuard returns a guard for the client identified by self.
func NewVersionGuard(self string) *VersionGuard {
	return &VersionGuard{self: self}
}

// Check classifies n and, when it is accepted, raises the received version.
func (g *VersionGuard) Check(n domain.Notification) Verdict {
	if n.UpdatedBy != "" && n.UpdatedBy == g.self {
		return SelfOrigin
	}
	if n.Version > 0 && n.Version <= g.floor() {
		return Stale
	}
	if n.Version > g.lastReceived {
		g.lastReceived = n.Version
	}
	return Accepted
}

// Seed records the version of a loaded snapshot as received.
func (g *VersionGuard) Seed(version int64) {
	if version > g.lastReceived {
		g.lastReceived = version
	}
}

// RecordSaved records a version minted for this client's own save.
func (g *VersionGuard) RecordSaved(version int64) {
	if version > g.lastSaved {
		g.lastSaved = version
	}
}

// LastReceived returns the highest accepted remote version.
func (g *VersionGuard) LastReceived() int64 { return g.lastReceived }

// LastSaved returns the highest version minted for this client's saves.
func (g *VersionGuard) LastSaved() int64 { return g.lastSaved }

func (g *VersionGuard) floor() int64 {
	return max(g.lastReceived, g.lastSaved)
}
