package schedule

import (
	"context"
	"fmt"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// UpdateItem replaces an item in day. Freeform edits are debounced so a
// burst of typing produces one write.
func (s *Session) UpdateItem(ctx context.Context, day int, item domain.Item) error {
	return s.apply(ctx, freeform, func(doc domain.Document) (Edit, error) {
		return UpdateItem(doc, day, item)
	})
}

// RenameDay overrides the label of day. Debounced like other freeform edits.
func (s *Session) RenameDay(ctx context.Context, day int, label string) error {
	return s.apply(ctx, freeform, func(doc domain.Document) (Edit, error) {
		return RenameDay(doc, day, label)
	})
}

// AddItem inserts item into section of day and saves immediately.
func (s *Session) AddItem(ctx context.Context, day, section int, item domain.Item) error {
	return s.apply(ctx, structural, func(doc domain.Document) (Edit, error) {
		return AddItem(doc, day, section, item)
	})
}

// AddExtraItem adds item to the extraItems of day and saves immediately.
func (s *Session) AddExtraItem(ctx context.Context, day int, item domain.Item) error {
	return s.apply(ctx, structural, func(doc domain.Document) (Edit, error) {
		return AddExtraItem(doc, day, item)
	})
}

// MoveItem moves item from fromDay into section of toDay and saves
// immediately.
func (s *Session) MoveItem(ctx context.Context, fromDay int, item domain.Item, toDay, section int) error {
	return s.apply(ctx, structural, func(doc domain.Document) (Edit, error) {
		return MoveItem(doc, fromDay, item, toDay, section)
	})
}

// AddDay appends a user day and saves immediately.
func (s *Session) AddDay(ctx context.Context, day domain.Day) error {
	return s.apply(ctx, structural, func(doc domain.Document) (Edit, error) {
		return AddDay(doc, day), nil
	})
}

// MoveDay moves the day displayed at position from to position to and saves
// immediately.
func (s *Session) MoveDay(ctx context.Context, from, to int) error {
	return s.apply(ctx, structural, func(doc domain.Document) (Edit, error) {
		return MoveDay(doc, from, to)
	})
}

// DeleteItem removes item from day. The previous document is kept for undo.
func (s *Session) DeleteItem(ctx context.Context, day int, item domain.Item) error {
	return s.apply(ctx, destructive, func(doc domain.Document) (Edit, error) {
		loc, ok := Locate(doc, day, item)
		if !ok {
			return Edit{}, fmt.Errorf("%w: item %q not found in day %d", domain.ErrValidation, Key(item), day)
		}
		return RemoveItems(doc, day, []string{Key(itemsAt(doc, loc)[loc.Index])})
	})
}

// BulkDelete removes every item of day whose key is in keys. The previous
// document is kept for undo.
func (s *Session) BulkDelete(ctx context.Context, day int, keys []string) error {
	return s.apply(ctx, destructive, func(doc domain.Document) (Edit, error) {
		return RemoveItems(doc, day, keys)
	})
}

// DeleteDay removes a user day. The previous document is kept for undo.
func (s *Session) DeleteDay(ctx context.Context, day int) error {
	return s.apply(ctx, destructive, func(doc domain.Document) (Edit, error) {
		return DeleteDay(doc, day)
	})
}

// Undo restores the snapshot taken before the most recent destructive edit.
// Every day and the metadata are marked dirty so an in-flight remote merge
// cannot stomp the restoration, and the result is saved immediately.
func (s *Session) Undo(ctx context.Context) error {
	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return domain.ErrUnavailable
	}
	prev, ok := s.undo.Pop()
	if !ok {
		s.mu.Unlock()
		return ErrNothingToUndo
	}
	s.dirty.MarkAll(max(prev.TotalDays(), s.doc.TotalDays()))
	s.doc = prev
	empty := s.undo.Len() == 0
	s.mu.Unlock()

	if empty {
		s.undoExpire.Cancel()
	}
	return s.SaveNow(ctx)
}

// DismissUndo drops every undo snapshot, as when the undo affordance is
// dismissed.
func (s *Session) DismissUndo() {
	s.undoExpire.Cancel()
	s.mu.Lock()
	s.undo.Clear()
	s.mu.Unlock()
}
