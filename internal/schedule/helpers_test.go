package schedule

import (
	"fmt"
	"testing"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// ---- builders --------------------------------------------------------------

func item(id, clock, desc string) domain.Item {
	return domain.Item{ID: id, Time: clock, Desc: desc}
}

func section(title string, items ...domain.Item) domain.Section {
	if items == nil {
		items = []domain.Item{}
	}
	return domain.Section{Title: title, Items: items}
}

func day(label string, sections ...domain.Section) domain.Day {
	return domain.Day{Label: label, Sections: sections}
}

// seqIDs makes newItemID return "gen-1", "gen-2", ... for the rest of the test.
func seqIDs(t *testing.T) {
	t.Helper()
	n := 0
	orig := newItemID
	newItemID = func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
	t.Cleanup(func() { newItemID = orig })
}

// descs flattens the rendered items of a section into their descriptions.
func descs(sec RenderedSection) []string {
	out := make([]string, 0, len(sec.Items))
	for _, it := range sec.Items {
		out = append(out, it.Desc)
	}
	return out
}
