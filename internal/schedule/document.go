package schedule

import (
	"maps"
	"slices"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// withPatch returns doc with overlay[day] replaced by patch. An empty patch
// removes the entry; an empty overlay becomes nil.
func withPatch(doc domain.Document, day int, patch domain.DayPatch) domain.Document {
	overlay := maps.Clone(doc.Overlay)
	if overlay == nil {
		overlay = make(map[int]domain.DayPatch)
	}
	if patch.IsEmpty() {
		delete(overlay, day)
	} else {
		overlay[day] = patch
	}
	if len(overlay) == 0 {
		overlay = nil
	}
	doc.Overlay = overlay
	return doc
}

// patchWithSection returns patch with section s replaced by items.
func patchWithSection(patch domain.DayPatch, s int, items []domain.Item) domain.DayPatch {
	sections := maps.Clone(patch.Sections)
	if sections == nil {
		sections = make(map[int][]domain.Item)
	}
	sections[s] = items
	patch.Sections = sections
	return patch
}

// withTemplateSection returns doc with the template items of section s of
// day replaced. Only the migration pass writes templates; edits go to the
// overlay.
func withTemplateSection(doc domain.Document, day, s int, items []domain.Item) domain.Document {
	tmpl, ok := doc.Template(day)
	if !ok || s >= len(tmpl.Sections) {
		return doc
	}
	sections := slices.Clone(tmpl.Sections)
	sections[s].Items = items
	tmpl.Sections = sections
	return withTemplate(doc, day, tmpl)
}

// withTemplate returns doc with the template of day replaced.
func withTemplate(doc domain.Document, day int, tmpl domain.Day) domain.Document {
	if day < len(doc.BaseDays) {
		days := slices.Clone(doc.BaseDays)
		days[day] = tmpl
		doc.BaseDays = days
		return doc
	}
	days := slices.Clone(doc.ExtraDays)
	days[day-len(doc.BaseDays)] = tmpl
	doc.ExtraDays = days
	return doc
}

// sectionItems returns the effective items of section s of day: the overlay
// replacement when present, otherwise the template's.
func sectionItems(doc domain.Document, day, s int) []domain.Item {
	if items, ok := doc.Overlay[day].Sections[s]; ok {
		return items
	}
	tmpl, _ := doc.Template(day)
	if s < len(tmpl.Sections) {
		return tmpl.Sections[s].Items
	}
	return nil
}

// withSectionItems records items as the overlay replacement for section s of
// day.
func withSectionItems(doc domain.Document, day, s int, items []domain.Item) domain.Document {
	return withPatch(doc, day, patchWithSection(doc.Overlay[day], s, items))
}

// withExtraItems replaces the extraItems of day.
func withExtraItems(doc domain.Document, day int, items []domain.Item) domain.Document {
	patch := doc.Overlay[day]
	patch.ExtraItems = items
	return withPatch(doc, day, patch)
}

// pruneDays drops overlay and override entries addressing days outside
// [0, TotalDays) and a dayOrder that is not a permutation of the days.
func pruneDays(doc domain.Document) domain.Document {
	total := doc.TotalDays()
	out := func(k int) bool { return k < 0 || k >= total }
	if slices.ContainsFunc(sortedKeys(doc.Overlay), out) {
		overlay := maps.Clone(doc.Overlay)
		maps.DeleteFunc(overlay, func(k int, _ domain.DayPatch) bool { return out(k) })
		doc.Overlay = nilIfEmpty(overlay)
	}
	if slices.ContainsFunc(sortedKeys(doc.DayOverrides), out) {
		overrides := maps.Clone(doc.DayOverrides)
		maps.DeleteFunc(overrides, func(k int, _ domain.DayOverride) bool { return out(k) })
		doc.DayOverrides = nilIfEmpty(overrides)
	}
	if doc.DayOrder != nil && !validOrder(doc.DayOrder, total) {
		doc.DayOrder = nil
	}
	return doc
}

func nilIfEmpty[V any](m map[int]V) map[int]V {
	if len(m) == 0 {
		return nil
	}
	return m
}

// validOrder reports whether order is a permutation of [0, total).
func validOrder(order []int, total int) bool {
	if len(order) != total {
		return false
	}
	seen := make([]bool, total)
	for _, i := range order {
		if i < 0 || i >= total || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}
