package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwang1401/travel-planner/internal/domain"
)

func TestAddItem_InsertsByTimeWithFreshID(t *testing.T) {
	seqIDs(t)
	doc := domain.Document{BaseDays: []domain.Day{
		day("Day 1", section("Morning", item("a", "09:00", "Breakfast"), item("b", "11:00", "Museum"))),
	}}

	e, err := AddItem(doc, 0, 0, item("", "10:00", "Coffee"))

	require.NoError(t, err)
	assert.Equal(t, []int{0}, e.Days)
	assert.False(t, e.Meta)
	got := e.Doc.Overlay[0].Sections[0]
	require.Len(t, got, 3)
	assert.Equal(t, item("gen-1", "10:00", "Coffee"), got[1])
	// template stays as authored
	assert.Len(t, doc.BaseDays[0].Sections[0].Items, 2)
	assert.True(t, sameDays(doc.BaseDays, e.Doc.BaseDays))
}

func TestAddItem_Validation(t *testing.T) {
	doc := domain.Document{BaseDays: []domain.Day{day("Day 1", section("Morning"))}}

	_, err := AddItem(doc, 0, 3, item("", "10:00", "Coffee"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = AddItem(doc, 4, 0, item("", "10:00", "Coffee"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateItem(t *testing.T) {
	doc := domain.Document{BaseDays: []domain.Day{
		day("Day 1", section("Morning", item("a", "09:00", "Breakfast"))),
	}}
	doc = withExtraItems(doc, 0, []domain.Item{item("x", "20:00", "Bar")})

	t.Run("section item", func(t *testing.T) {
		e, err := UpdateItem(doc, 0, item("a", "09:30", "Brunch"))
		require.NoError(t, err)
		assert.Equal(t, []domain.Item{item("a", "09:30", "Brunch")}, e.Doc.Overlay[0].Sections[0])
		assert.True(t, sameItems(doc.Overlay[0].ExtraItems, e.Doc.Overlay[0].ExtraItems))
	})
	t.Run("extra item", func(t *testing.T) {
		e, err := UpdateItem(doc, 0, item("x", "21:00", "Late bar"))
		require.NoError(t, err)
		assert.Equal(t, []domain.Item{item("x", "21:00", "Late bar")}, e.Doc.Overlay[0].ExtraItems)
		assert.Nil(t, e.Doc.Overlay[0].Sections)
	})
	t.Run("unknown item", func(t *testing.T) {
		_, err := UpdateItem(doc, 0, item("nope", "21:00", "Late bar"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestRemoveItems(t *testing.T) {
	doc := domain.Document{BaseDays: []domain.Day{
		day("Day 1",
			section("Morning", item("a", "09:00", "Breakfast"), item("b", "10:00", "Museum")),
			section("Evening", item("c", "19:00", "Dinner")),
		),
	}}
	doc = withExtraItems(doc, 0, []domain.Item{item("x", "20:00", "Bar")})

	e, err := RemoveItems(doc, 0, []string{"b", "x"})

	require.NoError(t, err)
	days := Render(e.Doc)
	assert.Equal(t, []string{"Breakfast"}, descs(days[0].Sections[0]))
	assert.Equal(t, []string{"Dinner"}, descs(days[0].Sections[1]))
	_, hasEvening := e.Doc.Overlay[0].Sections[1]
	assert.False(t, hasEvening)

	_, err = RemoveItems(doc, 0, []string{"nope"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMoveItem_KeepsID(t *testing.T) {
	doc := domain.Document{BaseDays: []domain.Day{
		day("Day 1", section("Morning", item("a", "09:00", "Breakfast"))),
		day("Day 2", section("Morning", item("b", "08:00", "Ferry")), section("Afternoon")),
	}}

	e, err := MoveItem(doc, 0, item("a", "", ""), 1, 0)

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, e.Days)
	assert.Empty(t, e.Doc.Overlay[0].Sections[0])
	assert.Equal(t, []domain.Item{item("b", "08:00", "Ferry"), item("a", "09:00", "Breakfast")}, e.Doc.Overlay[1].Sections[0])
}

func TestAddDay(t *testing.T) {
	doc := domain.Document{
		BaseDays: []domain.Day{day("Day 1")},
		DayOrder: []int{0},
	}

	e := AddDay(doc, domain.Day{Label: "Day 2"})

	require.Len(t, e.Doc.ExtraDays, 1)
	assert.Equal(t, []domain.Section{{Title: "", Items: []domain.Item{}}}, e.Doc.ExtraDays[0].Sections)
	assert.Equal(t, []int{0, 1}, e.Doc.DayOrder)
	assert.Equal(t, []int{1}, e.Days)
	assert.True(t, e.Meta)
	assert.Nil(t, doc.ExtraDays)
	assert.Equal(t, []int{0}, doc.DayOrder)
}

func TestDeleteDay(t *testing.T) {
	label := "Renamed"
	doc := domain.Document{
		BaseDays:  []domain.Day{day("Day 1")},
		ExtraDays: []domain.Day{day("Day 2"), day("Day 3")},
		Overlay: map[int]domain.DayPatch{
			0: {ExtraItems: []domain.Item{item("a", "09:00", "Base")}},
			1: {ExtraItems: []domain.Item{item("b", "09:00", "Gone")}},
			2: {ExtraItems: []domain.Item{item("c", "09:00", "Shifted")}},
		},
		DayOverrides: map[int]domain.DayOverride{2: {Label: &label}},
		DayOrder:     []int{2, 0, 1},
	}

	e, err := DeleteDay(doc, 1)

	require.NoError(t, err)
	assert.Equal(t, []domain.Day{day("Day 3")}, e.Doc.ExtraDays)
	assert.Equal(t, "Base", e.Doc.Overlay[0].ExtraItems[0].Desc)
	assert.Equal(t, "Shifted", e.Doc.Overlay[1].ExtraItems[0].Desc)
	assert.NotContains(t, e.Doc.Overlay, 2)
	assert.Equal(t, &label, e.Doc.DayOverrides[1].Label)
	assert.Equal(t, []int{1, 0}, e.Doc.DayOrder)
	assert.Equal(t, []int{1, 2}, e.Days)
	assert.True(t, e.Meta)
	assert.Len(t, doc.ExtraDays, 2)
}

func TestDeleteDay_BaseDayRejected(t *testing.T) {
	doc := domain.Document{BaseDays: []domain.Day{day("Day 1")}}

	_, err := DeleteDay(doc, 0)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMoveDay(t *testing.T) {
	doc := domain.Document{BaseDays: []domain.Day{day("A"), day("B"), day("C")}}

	e, err := MoveDay(doc, 0, 2)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0}, e.Doc.DayOrder)
	assert.True(t, e.Meta)

	e, err = MoveDay(e.Doc, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, e.Doc.DayOrder)

	_, err = MoveDay(doc, 0, 3)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRenameDay(t *testing.T) {
	doc := domain.Document{BaseDays: []domain.Day{day("Day 1")}}

	e, err := RenameDay(doc, 0, "Arrival")

	require.NoError(t, err)
	assert.Equal(t, "Arrival", Render(e.Doc)[0].Label)
	assert.Nil(t, doc.DayOverrides)
}
