package schedule

import (
	"fmt"
	"maps"
	"slices"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// Edit is the result of applying an edit intent to a document: the new
// document plus the days and metadata it touched.
type Edit struct {
	Doc  domain.Document
	Days []int
	Meta bool
}

// Location addresses the authoritative storage of an item within a day.
// Section is -1 for the day's extraItems.
type Location struct {
	Day     int
	Section int
	Index   int
}

// Locate finds target in day, searching the effective sections in order and
// then the extraItems.
func Locate(doc domain.Document, day int, target domain.Item) (Location, bool) {
	tmpl, ok := doc.Template(day)
	if !ok {
		return Location{}, false
	}
	for s := range tmpl.Sections {
		if i := FindIndex(sectionItems(doc, day, s), target); i >= 0 {
			return Location{Day: day, Section: s, Index: i}, true
		}
	}
	if i := FindIndex(doc.Overlay[day].ExtraItems, target); i >= 0 {
		return Location{Day: day, Section: -1, Index: i}, true
	}
	return Location{}, false
}

func checkDay(doc domain.Document, day int) error {
	if day < 0 || day >= doc.TotalDays() {
		return fmt.Errorf("%w: day %d out of range", domain.ErrValidation, day)
	}
	return nil
}

func itemsAt(doc domain.Document, loc Location) []domain.Item {
	if loc.Section < 0 {
		return doc.Overlay[loc.Day].ExtraItems
	}
	return sectionItems(doc, loc.Day, loc.Section)
}

func withItemsAt(doc domain.Document, loc Location, items []domain.Item) domain.Document {
	if loc.Section < 0 {
		return withExtraItems(doc, loc.Day, items)
	}
	return withSectionItems(doc, loc.Day, loc.Section, items)
}

// UpdateItem replaces the item matching item's identity in day.
func UpdateItem(doc domain.Document, day int, item domain.Item) (Edit, error) {
	if err := checkDay(doc, day); err != nil {
		return Edit{}, err
	}
	loc, ok := Locate(doc, day, item)
	if !ok {
		return Edit{}, fmt.Errorf("%w: item %q not found in day %d", domain.ErrValidation, Key(item), day)
	}
	items := slices.Clone(itemsAt(doc, loc))
	if item.ID == "" {
		item.ID = items[loc.Index].ID
	}
	items[loc.Index] = item.WithoutSplice()
	return Edit{Doc: withItemsAt(doc, loc, items), Days: []int{day}}, nil
}

// AddItem inserts item into section s of day in time order, assigning an
// identifier when it has none.
func AddItem(doc domain.Document, day, s int, item domain.Item) (Edit, error) {
	if err := checkDay(doc, day); err != nil {
		return Edit{}, err
	}
	tmpl, _ := doc.Template(day)
	if s < 0 || s >= len(tmpl.Sections) {
		return Edit{}, fmt.Errorf("%w: section %d out of range for day %d", domain.ErrValidation, s, day)
	}
	item = prepareNew(item)
	items := insertItemByTime(slices.Clone(sectionItems(doc, day, s)), item)
	return Edit{Doc: withSectionItems(doc, day, s, items), Days: []int{day}}, nil
}

// AddExtraItem appends item to the extraItems of day. It is displayed in
// whichever section its time falls into.
func AddExtraItem(doc domain.Document, day int, item domain.Item) (Edit, error) {
	if err := checkDay(doc, day); err != nil {
		return Edit{}, err
	}
	items := append(slices.Clip(doc.Overlay[day].ExtraItems), prepareNew(item))
	return Edit{Doc: withExtraItems(doc, day, items), Days: []int{day}}, nil
}

func prepareNew(item domain.Item) domain.Item {
	if item.ID == "" {
		item.ID = newItemID()
	}
	return item.WithoutSplice()
}

func insertItemByTime(items []domain.Item, item domain.Item) []domain.Item {
	m, ok := parseClock(item.Time)
	if !ok {
		return append(items, item)
	}
	pos := slices.IndexFunc(items, func(other domain.Item) bool {
		om, valid := parseClock(other.Time)
		return valid && om > m
	})
	if pos < 0 {
		return append(items, item)
	}
	return slices.Insert(items, pos, item)
}

// RemoveItems deletes every item of day whose key is in keys, from its
// sections and its extraItems.
func RemoveItems(doc domain.Document, day int, keys []string) (Edit, error) {
	if err := checkDay(doc, day); err != nil {
		return Edit{}, err
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	drop := func(it domain.Item) bool { return set[Key(it)] }

	next := doc
	removed := false
	tmpl, _ := doc.Template(day)
	for s := range tmpl.Sections {
		items := sectionItems(next, day, s)
		if kept := filterItems(items, drop); !sameItems(kept, items) {
			next = withSectionItems(next, day, s, kept)
			removed = true
		}
	}
	extras := next.Overlay[day].ExtraItems
	if kept := filterItems(extras, drop); !sameItems(kept, extras) {
		next = withExtraItems(next, day, kept)
		removed = true
	}
	if !removed {
		return Edit{}, fmt.Errorf("%w: no matching items in day %d", domain.ErrValidation, day)
	}
	return Edit{Doc: next, Days: []int{day}}, nil
}

// MoveItem moves item from fromDay into section s of toDay, keeping its
// identifier.
func MoveItem(doc domain.Document, fromDay int, item domain.Item, toDay, s int) (Edit, error) {
	if err := checkDay(doc, fromDay); err != nil {
		return Edit{}, err
	}
	loc, ok := Locate(doc, fromDay, item)
	if !ok {
		return Edit{}, fmt.Errorf("%w: item %q not found in day %d", domain.ErrValidation, Key(item), fromDay)
	}
	moving := itemsAt(doc, loc)[loc.Index]
	removed, err := RemoveItems(doc, fromDay, []string{Key(moving)})
	if err != nil {
		return Edit{}, err
	}
	added, err := AddItem(removed.Doc, toDay, s, moving)
	if err != nil {
		return Edit{}, err
	}
	return Edit{Doc: added.Doc, Days: uniqueDays(fromDay, toDay)}, nil
}

// AddDay appends a user day. A day without sections gets one catch-all
// section so items can be added to it.
func AddDay(doc domain.Document, day domain.Day) Edit {
	if len(day.Sections) == 0 {
		day.Sections = []domain.Section{{Title: "", Items: []domain.Item{}}}
	}
	doc.ExtraDays = slices.Concat(doc.ExtraDays, []domain.Day{day})
	if doc.DayOrder != nil {
		doc.DayOrder = append(slices.Clip(doc.DayOrder), doc.TotalDays()-1)
	}
	return Edit{Doc: doc, Days: []int{doc.TotalDays() - 1}, Meta: true}
}

// DeleteDay removes a user-appended day and shifts every later index down.
// Base days are authored externally and cannot be deleted.
func DeleteDay(doc domain.Document, day int) (Edit, error) {
	if !doc.IsExtraDay(day) {
		return Edit{}, fmt.Errorf("%w: day %d is not a user day", domain.ErrValidation, day)
	}
	total := doc.TotalDays()
	doc.ExtraDays = slices.Delete(slices.Clone(doc.ExtraDays), day-len(doc.BaseDays), day-len(doc.BaseDays)+1)
	doc.Overlay = shiftKeys(doc.Overlay, day)
	doc.DayOverrides = shiftKeys(doc.DayOverrides, day)
	if doc.DayOrder != nil {
		order := make([]int, 0, len(doc.DayOrder))
		for _, i := range doc.DayOrder {
			switch {
			case i == day:
			case i > day:
				order = append(order, i-1)
			default:
				order = append(order, i)
			}
		}
		doc.DayOrder = order
	}
	doc = pruneDays(doc)

	days := make([]int, 0, total-day)
	for i := day; i < total; i++ {
		days = append(days, i)
	}
	return Edit{Doc: doc, Days: days, Meta: true}, nil
}

// shiftKeys drops key removed and moves every later key down by one.
func shiftKeys[V any](m map[int]V, removed int) map[int]V {
	if len(m) == 0 {
		return m
	}
	out := make(map[int]V, len(m))
	for k, v := range m {
		switch {
		case k == removed:
		case k > removed:
			out[k-1] = v
		default:
			out[k] = v
		}
	}
	return nilIfEmpty(out)
}

// MoveDay moves the day displayed at position from to position to.
func MoveDay(doc domain.Document, from, to int) (Edit, error) {
	total := doc.TotalDays()
	if from < 0 || from >= total || to < 0 || to >= total {
		return Edit{}, fmt.Errorf("%w: move %d -> %d out of range", domain.ErrValidation, from, to)
	}
	order := slices.Clone(doc.DayOrder)
	if !validOrder(order, total) {
		order = make([]int, total)
		for i := range order {
			order[i] = i
		}
	}
	moved := order[from]
	order = slices.Insert(slices.Delete(order, from, from+1), to, moved)
	doc.DayOrder = order
	return Edit{Doc: doc, Meta: true}, nil
}

// RenameDay overrides the label of day.
func RenameDay(doc domain.Document, day int, label string) (Edit, error) {
	if err := checkDay(doc, day); err != nil {
		return Edit{}, err
	}
	overrides := maps.Clone(doc.DayOverrides)
	if overrides == nil {
		overrides = make(map[int]domain.DayOverride)
	}
	ov := overrides[day]
	ov.Label = &label
	overrides[day] = ov
	doc.DayOverrides = overrides
	return Edit{Doc: doc, Meta: true}, nil
}

func uniqueDays(days ...int) []int {
	slices.Sort(days)
	return slices.Compact(days)
}
