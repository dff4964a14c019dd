package schedule

import (
	"slices"
	"strconv"
	"strings"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// RenderedItem is an item as displayed. Extra is set when the item is shown
// through the extraItems splice; it is presentation only and never stored.
type RenderedItem struct {
	domain.Item
	Extra bool `json:"extra,omitempty"`
}

// RenderedSection is a section as displayed.
type RenderedSection struct {
	Title string         `json:"title"`
	Items []RenderedItem `json:"items"`
}

// RenderedDay is a fully expanded day. Index is the day's storage index,
// which differs from its position when a dayOrder is in effect.
type RenderedDay struct {
	Index    int               `json:"index"`
	Label    string            `json:"label"`
	Date     string            `json:"date,omitempty"`
	Note     string            `json:"note,omitempty"`
	Sections []RenderedSection `json:"sections"`
}

// Fixed section names used when a catch-all section is expanded.
const (
	SectionMorning   = "Morning"
	SectionAfternoon = "Afternoon"
	SectionEvening   = "Evening"
)

const (
	noonMinutes    = 12 * 60
	eveningMinutes = 18 * 60
	dayMinutes     = 24 * 60

	// spliceGrace extends a section's time range past its last item.
	spliceGrace = 30
)

// clockRange is a half-open [from, to) range of minutes since midnight.
type clockRange struct{ from, to int }

// namedRanges maps lower-cased section names to their clock ranges.
var namedRanges = map[string]clockRange{
	"morning":   {0, noonMinutes},
	"am":        {0, noonMinutes},
	"오전":        {0, noonMinutes},
	"아침":        {0, noonMinutes},
	"afternoon": {noonMinutes, eveningMinutes},
	"pm":        {noonMinutes, eveningMinutes},
	"오후":        {noonMinutes, eveningMinutes},
	"점심":        {noonMinutes, eveningMinutes},
	"evening":   {eveningMinutes, dayMinutes},
	"night":     {eveningMinutes, dayMinutes},
	"저녁":        {eveningMinutes, dayMinutes},
	"밤":         {eveningMinutes, dayMinutes},
}

// Render expands a document into its displayed days.
//
// For each day the template is shallow-merged with its override, each
// section takes its overlay replacement when present, and the day's
// extraItems are spliced into sections by time. Days are then permuted by
// dayOrder when it is a valid permutation. Render is pure.
func Render(doc domain.Document) []RenderedDay {
	total := doc.TotalDays()
	days := make([]RenderedDay, total)
	for i := 0; i < total; i++ {
		days[i] = renderDay(doc, i)
	}
	if doc.DayOrder == nil || !validOrder(doc.DayOrder, total) {
		return days
	}
	ordered := make([]RenderedDay, total)
	for pos, i := range doc.DayOrder {
		ordered[pos] = days[i]
	}
	return ordered
}

func renderDay(doc domain.Document, i int) RenderedDay {
	tmpl, _ := doc.Template(i)
	if ov, ok := doc.DayOverrides[i]; ok {
		tmpl = ov.Apply(tmpl)
	}
	day := RenderedDay{
		Index: i,
		Label: tmpl.Label,
		Date:  tmpl.Date,
		Note:  tmpl.Note,
	}
	for s, sec := range tmpl.Sections {
		day.Sections = append(day.Sections, RenderedSection{
			Title: sec.Title,
			Items: wrapItems(sectionItems(doc, i, s)),
		})
	}
	extras := doc.Overlay[i].ExtraItems
	if len(extras) == 0 {
		if day.Sections == nil {
			day.Sections = []RenderedSection{}
		}
		return day
	}
	if len(day.Sections) == 0 {
		day.Sections = []RenderedSection{{Title: ""}}
	}
	day.Sections = splice(day.Sections, extras)
	return day
}

func wrapItems(items []domain.Item) []RenderedItem {
	out := make([]RenderedItem, len(items))
	for i, it := range items {
		out[i] = RenderedItem{Item: it}
	}
	return out
}

// splice places extras into sections by time. sections is owned by the
// caller and may be modified.
func splice(sections []RenderedSection, extras []domain.Item) []RenderedSection {
	sorted := slices.Clone(extras)
	slices.SortStableFunc(sorted, func(a, b domain.Item) int {
		return compareClock(a.Time, b.Time)
	})

	if len(sections) == 1 && len(sorted) >= 2 {
		sections = expandCatchAll(sections[0])
	}

	allEmpty := !slices.ContainsFunc(sections, func(s RenderedSection) bool { return len(s.Items) > 0 })
	for _, it := range sorted {
		ri := RenderedItem{Item: it, Extra: true}
		var target int
		if allEmpty {
			target = sectionByClock(sections, it.Time)
		} else {
			target = sectionByRange(sections, it.Time)
		}
		sections[target].Items = insertByTime(sections[target].Items, ri)
	}
	return sections
}

// expandCatchAll splits a single section into Morning/Afternoon/Evening,
// distributing its items by clock time. Untimed items stay in the morning.
func expandCatchAll(sec RenderedSection) []RenderedSection {
	out := []RenderedSection{
		{Title: SectionMorning, Items: []RenderedItem{}},
		{Title: SectionAfternoon, Items: []RenderedItem{}},
		{Title: SectionEvening, Items: []RenderedItem{}},
	}
	for _, it := range sec.Items {
		i := 0
		if m, ok := parseClock(it.Time); ok {
			i = positional(3, m)
		}
		out[i].Items = append(out[i].Items, it)
	}
	return out
}

// sectionByClock picks a section for an item when every section is empty:
// by the fixed range of the section's name, else by position.
func sectionByClock(sections []RenderedSection, clock string) int {
	m, ok := parseClock(clock)
	if !ok {
		return len(sections) - 1
	}
	for i, s := range sections {
		if r, known := namedRanges[strings.ToLower(strings.TrimSpace(s.Title))]; known && m >= r.from && m < r.to {
			return i
		}
	}
	return positional(len(sections), m)
}

// positional maps a clock time onto n sections: halves split at noon,
// thirds at noon and 18:00, larger counts evenly over the day.
func positional(n, m int) int {
	switch n {
	case 1:
		return 0
	case 2:
		if m < noonMinutes {
			return 0
		}
		return 1
	case 3:
		switch {
		case m < noonMinutes:
			return 0
		case m < eveningMinutes:
			return 1
		}
		return 2
	}
	return min(n-1, m*n/dayMinutes)
}

// sectionByRange picks a section for an item when some sections have items:
// the section whose time range (plus grace) contains it, else the last
// section whose last time is not after it, else the final section.
func sectionByRange(sections []RenderedSection, clock string) int {
	m, ok := parseClock(clock)
	if !ok {
		return len(sections) - 1
	}
	for i, s := range sections {
		first, last, timed := timeSpan(s.Items)
		if timed && m >= first && m <= last+spliceGrace {
			return i
		}
	}
	for i := len(sections) - 1; i >= 0; i-- {
		if _, last, timed := timeSpan(sections[i].Items); timed && last <= m {
			return i
		}
	}
	return len(sections) - 1
}

// timeSpan returns the earliest and latest parseable times among items.
func timeSpan(items []RenderedItem) (first, last int, ok bool) {
	for _, it := range items {
		m, valid := parseClock(it.Time)
		if !valid {
			continue
		}
		if !ok || m < first {
			first = m
		}
		if !ok || m > last {
			last = m
		}
		ok = true
	}
	return first, last, ok
}

// insertByTime inserts it before the first timed item that is later than it.
func insertByTime(items []RenderedItem, it RenderedItem) []RenderedItem {
	m, ok := parseClock(it.Time)
	if !ok {
		return append(items, it)
	}
	pos := slices.IndexFunc(items, func(other RenderedItem) bool {
		om, valid := parseClock(other.Time)
		return valid && om > m
	})
	if pos < 0 {
		return append(items, it)
	}
	return slices.Insert(items, pos, it)
}

// parseClock parses "H:MM" or "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	h, mm, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, false
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 24 {
		return 0, false
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

// compareClock orders clock strings by time; unparseable times sort last.
func compareClock(a, b string) int {
	ma, oka := parseClock(a)
	mb, okb := parseClock(b)
	switch {
	case oka && okb:
		return ma - mb
	case oka:
		return -1
	case okb:
		return 1
	}
	return 0
}
