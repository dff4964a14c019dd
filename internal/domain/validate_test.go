package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hwang1401/travel-planner/internal/domain"
)

func validDocument() domain.Document {
	return domain.Document{
		BaseDays: []domain.Day{{
			Label: "Day 1",
			Sections: []domain.Section{
				{Title: "Morning", Items: []domain.Item{{ID: "a", Time: "09:00", Desc: "Breakfast"}}},
			},
		}},
		ExtraDays: []domain.Day{{Label: "Day 2", Sections: []domain.Section{{Title: "", Items: []domain.Item{}}}}},
		Overlay: map[int]domain.DayPatch{
			0: {Sections: map[int][]domain.Item{0: {{ID: "a", Time: "09:30", Desc: "Breakfast"}}}},
			1: {ExtraItems: []domain.Item{{ID: "b", Time: "10:00", Desc: "Walk"}, {Time: "11:00", Desc: "Legacy"}}},
		},
		DayOrder: []int{1, 0},
	}
}

func TestDocument_Validate(t *testing.T) {
	label := "x"
	cases := []struct {
		name    string
		mutate  func(d *domain.Document)
		wantErr bool
	}{
		{"valid", func(d *domain.Document) {}, false},
		{"empty", func(d *domain.Document) { *d = domain.Document{} }, false},
		{"overlay day out of range", func(d *domain.Document) {
			d.Overlay = map[int]domain.DayPatch{2: {ExtraItems: []domain.Item{{ID: "z"}}}}
		}, true},
		{"overlay section out of range", func(d *domain.Document) {
			d.Overlay = map[int]domain.DayPatch{0: {Sections: map[int][]domain.Item{1: {}}}}
		}, true},
		{"override out of range", func(d *domain.Document) {
			d.DayOverrides = map[int]domain.DayOverride{5: {Label: &label}}
		}, true},
		{"order too short", func(d *domain.Document) { d.DayOrder = []int{0} }, true},
		{"order repeats", func(d *domain.Document) { d.DayOrder = []int{0, 0} }, true},
		{"duplicate id across days", func(d *domain.Document) {
			d.Overlay = map[int]domain.DayPatch{1: {ExtraItems: []domain.Item{{ID: "a", Time: "10:00"}}}}
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDocument()
			tc.mutate(&d)
			err := d.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestItem_UnmarshalLegacyMarker(t *testing.T) {
	var it domain.Item
	err := it.UnmarshalJSON([]byte(`{"id":"a","time":"09:00","desc":"Walk","_extra":true}`))

	assert.NoError(t, err)
	assert.True(t, it.Spliced())
	assert.Equal(t, "Walk", it.Desc)
	assert.False(t, it.WithoutSplice().Spliced())
}

func TestItem_MarkerNeverWritten(t *testing.T) {
	b, err := json.Marshal(domain.Item{ID: "a", Time: "09:00", Desc: "Walk"}.MarkSpliced())

	assert.NoError(t, err)
	assert.NotContains(t, string(b), "_extra")
}
