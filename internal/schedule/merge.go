package schedule

import "github.com/hwang1401/travel-planner/internal/domain"

// Merge reconciles a remote snapshot with local optimistic state.
//
// Remote is authoritative except for days in dirtyDays and, when dirtyMeta
// is set, the document metadata (dayOrder, extraDays, dayOverrides,
// standalone). Every day of the result is taken whole from one side.
//
// When days are dirty, the extra-day counts differ and dirtyMeta is unset,
// local is returned unchanged: a remote structural change collides with a
// pending per-day edit, and local wins until that write resolves.
// dirtyMeta takes precedence over that short-circuit.
func Merge(local, remote domain.Document, dirtyDays DaySet, dirtyMeta bool) domain.Document {
	if len(dirtyDays) == 0 && !dirtyMeta {
		return Sanitize(remote)
	}
	if len(dirtyDays) > 0 && !dirtyMeta && len(local.ExtraDays) != len(remote.ExtraDays) {
		return local
	}

	merged := remote
	sameShape := len(local.BaseDays) == len(remote.BaseDays) && len(local.ExtraDays) == len(remote.ExtraDays)
	for _, day := range dirtyDays.Sorted() {
		merged = withPatch(merged, day, local.Overlay[day])
		if sameShape && !dirtyMeta && local.IsExtraDay(day) {
			tmpl, _ := local.Template(day)
			merged = withTemplate(merged, day, tmpl)
		}
	}

	if dirtyMeta {
		merged.DayOrder = nilIfEmptySlice(local.DayOrder)
		merged.ExtraDays = nilIfEmptySlice(local.ExtraDays)
		merged.DayOverrides = nilIfEmpty(local.DayOverrides)
		merged.Standalone = local.Standalone
		merged = pruneDays(merged)
	}
	return Sanitize(dropMovedItems(merged, dirtyDays))
}

// dropMovedItems keeps every item identifier in exactly one place after days
// were taken from different sides. An item found both in a dirty day and in
// a day taken from remote was moved remotely, so the dirty day's copy is
// dropped. Any other repeat keeps its first occurrence in storage order.
func dropMovedItems(doc domain.Document, dirtyDays DaySet) domain.Document {
	remote := make(map[string]bool)
	rewriteStorage(doc, func(day int, items []domain.Item) []domain.Item {
		if !dirtyDays.Has(day) {
			for _, it := range items {
				if it.ID != "" {
					remote[it.ID] = true
				}
			}
		}
		return items
	})

	kept := make(map[string]bool)
	return rewriteStorage(doc, func(day int, items []domain.Item) []domain.Item {
		return filterItems(items, func(it domain.Item) bool {
			if it.ID == "" {
				return false
			}
			if kept[it.ID] || (dirtyDays.Has(day) && remote[it.ID]) {
				return true
			}
			kept[it.ID] = true
			return false
		})
	})
}

func nilIfEmptySlice[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
