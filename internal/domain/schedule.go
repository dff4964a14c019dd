// Package domain contains the core data types shared by the schedule engine,
// the store service and the transport layers.
// This package has no dependencies on any other internal package.
package domain

import (
	"encoding/json"
)

// Document is the synchronization unit for one trip: a compact base+overlay
// representation of a multi-day itinerary.
//
// A Document is treated as an immutable value. Every mutation builds a new
// Document that shares untouched days, slices and maps with its predecessor,
// so nothing reachable from a Document may be modified in place.
type Document struct {
	// BaseDays are the externally authored day templates.
	BaseDays []Day `json:"baseDays,omitempty"`

	// ExtraDays are day templates appended by users after BaseDays.
	ExtraDays []Day `json:"extraDays,omitempty"`

	// Overlay records per-day patches over the templates, keyed by day index.
	Overlay map[int]DayPatch `json:"overlay,omitempty"`

	// DayOrder is an optional display permutation of day indices.
	// Nil means natural order.
	DayOrder []int `json:"dayOrder,omitempty"`

	// DayOverrides holds shallow field overrides for a day, keyed by day index.
	DayOverrides map[int]DayOverride `json:"dayOverrides,omitempty"`

	// Standalone marks a trip with no externally authored base itinerary.
	Standalone bool `json:"standalone,omitempty"`
}

// TotalDays returns the number of addressable days (base plus extra).
func (d Document) TotalDays() int {
	return len(d.BaseDays) + len(d.ExtraDays)
}

// Template returns the day template at index i and whether it exists.
func (d Document) Template(i int) (Day, bool) {
	switch {
	case i < 0:
		return Day{}, false
	case i < len(d.BaseDays):
		return d.BaseDays[i], true
	case i < d.TotalDays():
		return d.ExtraDays[i-len(d.BaseDays)], true
	}
	return Day{}, false
}

// IsExtraDay reports whether day index i addresses an entry of ExtraDays.
func (d Document) IsExtraDay(i int) bool {
	return i >= len(d.BaseDays) && i < d.TotalDays()
}

// Day is a day template: a label plus ordered sections of items.
type Day struct {
	Label    string    `json:"label"`
	Date     string    `json:"date,omitempty"`
	Note     string    `json:"note,omitempty"`
	Sections []Section `json:"sections"`
}

// Section is a named, ordered run of items within a day (e.g. "Morning").
type Section struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// DayPatch is the sparse overlay for one day.
// Sections maps a section index to replacement items for that section.
// ExtraItems are stored outside fixed sections and time-sorted into one only
// for display.
type DayPatch struct {
	Sections   map[int][]Item `json:"sections,omitempty"`
	ExtraItems []Item         `json:"extraItems,omitempty"`
}

// IsEmpty reports whether the patch carries no data at all.
func (p DayPatch) IsEmpty() bool {
	return len(p.Sections) == 0 && len(p.ExtraItems) == 0
}

// DayOverride holds shallow field overrides for a day. Nil fields leave the
// template value untouched.
type DayOverride struct {
	Label *string `json:"label,omitempty"`
	Date  *string `json:"date,omitempty"`
	Note  *string `json:"note,omitempty"`
}

// Apply returns day with the non-nil override fields copied over it.
func (o DayOverride) Apply(day Day) Day {
	if o.Label != nil {
		day.Label = *o.Label
	}
	if o.Date != nil {
		day.Date = *o.Date
	}
	if o.Note != nil {
		day.Note = *o.Note
	}
	return day
}

// Item is a single itinerary entry.
//
// ID is assigned once and never reused. Time is a 24h "HH:MM" clock time.
type Item struct {
	ID     string          `json:"id,omitempty"`
	Time   string          `json:"time"`
	Desc   string          `json:"desc"`
	Type   string          `json:"type,omitempty"`
	Detail json.RawMessage `json:"detail,omitempty"`

	// spliced carries the legacy "_extra" marker found in stored data. It is
	// read so the sanitizer can repair old documents, and never written back.
	spliced bool
}

// Spliced reports whether the item was stored with the legacy "_extra"
// display marker.
func (it Item) Spliced() bool {
	return it.spliced
}

// WithoutSplice returns a copy of the item with the legacy marker cleared.
func (it Item) WithoutSplice() Item {
	it.spliced = false
	return it
}

// MarkSpliced returns a copy of the item carrying the legacy marker.
// It exists for importers and tests that need to reproduce legacy data.
func (it Item) MarkSpliced() Item {
	it.spliced = true
	return it
}

// itemJSON mirrors Item for decoding, including the legacy marker.
type itemJSON struct {
	ID     string          `json:"id,omitempty"`
	Time   string          `json:"time"`
	Desc   string          `json:"desc"`
	Type   string          `json:"type,omitempty"`
	Detail json.RawMessage `json:"detail,omitempty"`
	Extra  bool            `json:"_extra,omitempty"`
}

// UnmarshalJSON decodes an item, capturing the legacy "_extra" marker.
func (it *Item) UnmarshalJSON(b []byte) error {
	var raw itemJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*it = Item{
		ID:      raw.ID,
		Time:    raw.Time,
		Desc:    raw.Desc,
		Type:    raw.Type,
		Detail:  raw.Detail,
		spliced: raw.Extra,
	}
	return nil
}
