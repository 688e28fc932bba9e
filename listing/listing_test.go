package listing

import (
	"testing"

	"github.com/brunoscheufler/pocketnotes/store"
	"github.com/stretchr/testify/require"
)

func titles(notes []store.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Title)
	}
	return out
}

func ids(notes []store.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	notes := []store.Note{
		{ID: "1", Title: "Shopping list"},
		{ID: "2", Title: "Meeting"},
		{ID: "3", Title: "Ideas", Body: "a SHOPping mall app"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"matches title case-insensitively", "shop", []string{"1", "3"}},
		{"matches body", "mall", []string{"3"}},
		{"surrounding whitespace ignored", "  meeting ", []string{"2"}},
		{"empty query keeps all", "", []string{"1", "2", "3"}},
		{"no match", "zebra", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ids(Filter(notes, tt.query)))
		})
	}
}

func TestFilter_ShoppingQuery(t *testing.T) {
	notes := []store.Note{{Title: "Shopping list"}, {Title: "Meeting"}}
	require.Equal(t, []string{"Shopping list"}, titles(Filter(notes, "shop")))
}

func TestFilter_TitleBodyJoinedWithSpace(t *testing.T) {
	notes := []store.Note{{ID: "1", Title: "to", Body: "do"}}

	require.Len(t, Filter(notes, "to do"), 1)
	require.Empty(t, Filter(notes, "todo"))
}

func TestSort_ByTitle(t *testing.T) {
	notes := []store.Note{{Title: "Banana"}, {Title: "apple"}, {Title: "cherry"}}

	require.Equal(t, []string{"apple", "Banana", "cherry"}, titles(Sort(notes, Order{ByTitle, Asc})))
	require.Equal(t, []string{"cherry", "Banana", "apple"}, titles(Sort(notes, Order{ByTitle, Desc})))
}

func TestSort_ByTitle_TiesKeepInputOrder(t *testing.T) {
	notes := []store.Note{
		{ID: "1", Title: "Apple"},
		{ID: "2", Title: ""},
		{ID: "3", Title: "apple"},
		{ID: "4", Title: ""},
	}

	require.Equal(t, []string{"2", "4", "1", "3"}, ids(Sort(notes, Order{ByTitle, Asc})))
	require.Equal(t, []string{"1", "3", "2", "4"}, ids(Sort(notes, Order{ByTitle, Desc})))
}

func TestSort_ByUpdatedAt(t *testing.T) {
	notes := []store.Note{
		{ID: "a", UpdatedAt: 20},
		{ID: "b"}, // missing timestamp sorts as 0
		{ID: "c", UpdatedAt: 30},
		{ID: "d", UpdatedAt: 20},
	}

	require.Equal(t, []string{"b", "a", "d", "c"}, ids(Sort(notes, Order{ByUpdatedAt, Asc})))
	require.Equal(t, []string{"c", "a", "d", "b"}, ids(Sort(notes, DefaultOrder)))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	notes := []store.Note{{ID: "a", UpdatedAt: 1}, {ID: "b", UpdatedAt: 2}}

	sorted := Sort(notes, DefaultOrder)
	require.Equal(t, []string{"b", "a"}, ids(sorted))
	require.Equal(t, []string{"a", "b"}, ids(notes))
}

func TestApply(t *testing.T) {
	notes := []store.Note{
		{ID: "1", Title: "Shopping list", UpdatedAt: 1},
		{ID: "2", Title: "Meeting", UpdatedAt: 3},
		{ID: "3", Title: "Shop hours", UpdatedAt: 2},
	}

	require.Equal(t, []string{"3", "1"}, ids(Apply(notes, "shop", DefaultOrder)))
	require.Equal(t, []string{"3", "1"}, ids(Apply(notes, "SHOP", Order{ByTitle, Asc})))
}

func TestOrderLabelAndNext(t *testing.T) {
	require.Equal(t, "Last Updated (New -> Old)", DefaultOrder.Label())
	require.Equal(t, "Sort", Order{Field: "size", Direction: Asc}.Label())

	order := DefaultOrder
	seen := []Order{}
	for range Options {
		seen = append(seen, order)
		order = order.Next()
	}
	require.Equal(t, DefaultOrder, order, "Next cycles through every option")
	require.Len(t, seen, len(Options))

	// unknown orders restart at the first option
	require.Equal(t, Options[0].Order, Order{Field: "size"}.Next())
}
