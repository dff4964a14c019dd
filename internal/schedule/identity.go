// Package schedule is the synchronization engine for a trip's schedule
// document. It renders the layered document into days, tracks unsaved local
// edits, filters and merges remote snapshots day by day, and drives
// debounced and immediate persistence through a domain.Store.
//
// All document operations are copy-on-write: inputs are never modified, and
// results share every untouched slice and map with their inputs.
package schedule

import (
	"slices"

	"github.com/google/uuid"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// newItemID mints a fresh item identifier. It is a variable so tests can
// make identifiers deterministic.
var newItemID = uuid.NewString

// Key returns the identity of an item for set-membership checks: its ID when
// present, otherwise "{time}|{desc}".
func Key(it domain.Item) string {
	if it.ID != "" {
		return it.ID
	}
	return it.Time + "|" + it.Desc
}

// FindIndex returns the position of target in items, or -1.
// Identifier equality is preferred; a target without an identifier matches
// on time and description.
func FindIndex(items []domain.Item, target domain.Item) int {
	for i, it := range items {
		if target.ID != "" {
			if it.ID == target.ID {
				return i
			}
			continue
		}
		if it.Time == target.Time && it.Desc == target.Desc {
			return i
		}
	}
	return -1
}

// Normalize prepares a loaded or received document for use:
//
//  1. Sanitize removes items duplicated between a day's sections and its
//     extraItems (keys still fall back to time|desc here, so legacy items
//     without identifiers are matched before they get one).
//  2. The legacy "_extra" marker is stripped from every stored item.
//  3. Items without an identifier, or repeating one already seen in the
//     document's effective storage, get a fresh identifier.
func Normalize(doc domain.Document) domain.Document {
	doc = Sanitize(doc)
	seen := make(map[string]bool)
	return rewriteStorage(doc, func(_ int, items []domain.Item) []domain.Item {
		return rewriteItems(items, func(it domain.Item) (domain.Item, bool) {
			changed := false
			if it.Spliced() {
				it = it.WithoutSplice()
				changed = true
			}
			if it.ID == "" || seen[it.ID] {
				it.ID = newItemID()
				changed = true
			}
			seen[it.ID] = true
			return it, changed
		})
	})
}

// rewriteItems applies f to every item and returns items itself when f
// reported no change, otherwise a new slice.
func rewriteItems(items []domain.Item, f func(domain.Item) (domain.Item, bool)) []domain.Item {
	var out []domain.Item
	for i, it := range items {
		next, changed := f(it)
		if changed && out == nil {
			out = slices.Clone(items)
		}
		if out != nil {
			out[i] = next
		}
	}
	if out == nil {
		return items
	}
	return out
}

// filterItems returns items without those drop reports, sharing items when
// nothing is dropped.
func filterItems(items []domain.Item, drop func(domain.Item) bool) []domain.Item {
	idx := slices.IndexFunc(items, drop)
	if idx < 0 {
		return items
	}
	out := slices.Clone(items[:idx])
	for _, it := range items[idx+1:] {
		if !drop(it) {
			out = append(out, it)
		}
	}
	return out
}

// rewriteStorage visits every authoritative item run of the document in a
// deterministic order (base days, extra days, then overlays by day index,
// sections before extraItems) and writes back the runs f changed. f also
// receives the index of the day owning the run.
//
// Template sections shadowed by an overlay section are not visited: they are
// not authoritative storage for any item.
func rewriteStorage(doc domain.Document, f func(day int, items []domain.Item) []domain.Item) domain.Document {
	total := doc.TotalDays()
	for day := 0; day < total; day++ {
		tmpl, _ := doc.Template(day)
		patch := doc.Overlay[day]
		for s, sec := range tmpl.Sections {
			if _, shadowed := patch.Sections[s]; shadowed {
				continue
			}
			if next := f(day, sec.Items); !sameItems(next, sec.Items) {
				doc = withTemplateSection(doc, day, s, next)
			}
		}
	}
	for _, day := range sortedKeys(doc.Overlay) {
		patch := doc.Overlay[day]
		changed := false
		for _, s := range sortedKeys(patch.Sections) {
			items := patch.Sections[s]
			if next := f(day, items); !sameItems(next, items) {
				patch = patchWithSection(patch, s, next)
				changed = true
			}
		}
		if next := f(day, patch.ExtraItems); !sameItems(next, patch.ExtraItems) {
			patch.ExtraItems = next
			changed = true
		}
		if changed {
			doc = withPatch(doc, day, patch)
		}
	}
	return doc
}

// sameItems reports whether a and b are the same backing slice.
func sameItems(a, b []domain.Item) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// sameDays reports whether a and b are the same backing slice.
func sameDays(a, b []domain.Day) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
