package domain

import (
	"fmt"
	"sort"
)

// Validate checks the structural rules every stored document must satisfy:
// overlay and override keys address existing days and sections, dayOrder is
// nil or a permutation of the days, and no two stored items share an ID.
// Items without an ID are legacy data and are accepted.
func (d Document) Validate() error {
	total := d.TotalDays()

	for _, day := range sortedDayKeys(d.Overlay) {
		tmpl, ok := d.Template(day)
		if !ok {
			return fmt.Errorf("%w: overlay day %d out of range", ErrValidation, day)
		}
		for s := range d.Overlay[day].Sections {
			if s < 0 || s >= len(tmpl.Sections) {
				return fmt.Errorf("%w: overlay section %d out of range for day %d", ErrValidation, s, day)
			}
		}
	}
	for _, day := range sortedDayKeys(d.DayOverrides) {
		if day < 0 || day >= total {
			return fmt.Errorf("%w: day override %d out of range", ErrValidation, day)
		}
	}
	if d.DayOrder != nil {
		if len(d.DayOrder) != total {
			return fmt.Errorf("%w: dayOrder has %d entries for %d days", ErrValidation, len(d.DayOrder), total)
		}
		seen := make([]bool, total)
		for _, i := range d.DayOrder {
			if i < 0 || i >= total || seen[i] {
				return fmt.Errorf("%w: dayOrder is not a permutation", ErrValidation)
			}
			seen[i] = true
		}
	}
	return d.validateItemIDs()
}

// validateItemIDs walks the authoritative storage of every day: template
// sections not shadowed by the overlay, overlay sections and extraItems.
func (d Document) validateItemIDs() error {
	seen := make(map[string]int)
	check := func(day int, items []Item) error {
		for _, it := range items {
			if it.ID == "" {
				continue
			}
			if prev, dup := seen[it.ID]; dup {
				return fmt.Errorf("%w: item id %q used in day %d and day %d", ErrValidation, it.ID, prev, day)
			}
			seen[it.ID] = day
		}
		return nil
	}
	for day := 0; day < d.TotalDays(); day++ {
		tmpl, _ := d.Template(day)
		patch := d.Overlay[day]
		for s, sec := range tmpl.Sections {
			if _, shadowed := patch.Sections[s]; shadowed {
				continue
			}
			if err := check(day, sec.Items); err != nil {
				return err
			}
		}
		for _, s := range sortedDayKeys(patch.Sections) {
			if err := check(day, patch.Sections[s]); err != nil {
				return err
			}
		}
		if err := check(day, patch.ExtraItems); err != nil {
			return err
		}
	}
	return nil
}

func sortedDayKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
