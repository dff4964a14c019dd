package schedule

import (
	"slices"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// Sanitize removes duplication between a day's extraItems and its stored
// sections. For every day with extraItems, section-overlay items that carry
// the legacy splice marker or whose key matches an extra item are dropped,
// and the same filter is applied to the day's extraDays template.
//
// Afterwards no key appears both in a day's extraItems and, unflagged, in
// that day's rendered sections.
func Sanitize(doc domain.Document) domain.Document {
	for _, day := range sortedKeys(doc.Overlay) {
		patch := doc.Overlay[day]
		if len(patch.ExtraItems) == 0 {
			continue
		}
		keys := make(map[string]bool, len(patch.ExtraItems))
		for _, it := range patch.ExtraItems {
			keys[Key(it)] = true
		}
		drop := func(it domain.Item) bool {
			return it.Spliced() || keys[Key(it)]
		}

		changed := false
		for _, s := range sortedKeys(patch.Sections) {
			items := patch.Sections[s]
			if next := filterItems(items, drop); !sameItems(next, items) {
				patch = patchWithSection(patch, s, next)
				changed = true
			}
		}
		if changed {
			doc = withPatch(doc, day, patch)
		}

		if doc.IsExtraDay(day) {
			tmpl, _ := doc.Template(day)
			var sections []domain.Section
			for s, sec := range tmpl.Sections {
				next := filterItems(sec.Items, drop)
				if sameItems(next, sec.Items) {
					continue
				}
				if sections == nil {
					sections = slices.Clone(tmpl.Sections)
				}
				sections[s].Items = next
			}
			if sections != nil {
				tmpl.Sections = sections
				doc = withTemplate(doc, day, tmpl)
			}
		}
	}
	return doc
}
