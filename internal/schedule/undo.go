package schedule

import "github.com/hwang1401/travel-planner/internal/domain"

// DefaultUndoDepth bounds the snapshots an UndoStack keeps.
const DefaultUndoDepth = 20

// UndoStack is a client-local stack of whole-document snapshots taken
// before destructive edits. It is never synchronized.
// An UndoStack is not safe for concurrent use.
type UndoStack struct {
	snapshots []domain.Document
	depth     int
}

// NewUndoStack returns a stack keeping at most depth snapshots.
func NewUndoStack(depth int) *UndoStack {
	if depth <= 0 {
		depth = DefaultUndoDepth
	}
	return &UndoStack{depth: depth}
}

// Push records doc, evicting the oldest snapshot beyond the depth.
func (u *UndoStack) Push(doc domain.Document) {
	u.snapshots = append(u.snapshots, doc)
	if over := len(u.snapshots) - u.depth; over > 0 {
		u.snapshots = append(u.snapshots[:0:0], u.snapshots[over:]...)
	}
}

// Pop removes and returns the most recent snapshot.
func (u *UndoStack) Pop() (domain.Document, bool) {
	if len(u.snapshots) == 0 {
		return domain.Document{}, false
	}
	last := len(u.snapshots) - 1
	doc := u.snapshots[last]
	u.snapshots[last] = domain.Document{}
	u.snapshots = u.snapshots[:last]
	return doc, true
}

// Len returns the number of snapshots held.
func (u *UndoStack) Len() int { return len(u.snapshots) }

// Clear drops every snapshot.
func (u *UndoStack) Clear() { u.snapshots = nil }
