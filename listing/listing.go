// Package listing filters and orders a user's notes for display.
package listing

import (
	"cmp"
	"slices"
	"strings"

	"github.com/brunoscheufler/pocketnotes/store"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Field string

const (
	ByUpdatedAt Field = "updatedAt"
	ByTitle     Field = "title"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type Order struct {
	Field     Field
	Direction Direction
}

// DefaultOrder shows the most recently saved notes first
var DefaultOrder = Order{Field: ByUpdatedAt, Direction: Desc}

// Option is a sort choice offered to the user
type Option struct {
	Order
	Label string
}

var Options = []Option{
	{Order{ByUpdatedAt, Desc}, "Last Updated (New -> Old)"},
	{Order{ByUpdatedAt, Asc}, "Last Updated (Old -> New)"},
	{Order{ByTitle, Asc}, "Title (A -> Z)"},
	{Order{ByTitle, Desc}, "Title (Z -> A)"},
}

// Label returns the display name of o, or "Sort" if o is not one of Options
func (o Order) Label() string {
	for _, opt := range Options {
		if opt.Order == o {
			return opt.Label
		}
	}
	return "Sort"
}

// Next returns the option after o, wrapping around
func (o Order) Next() Order {
	idx := slices.IndexFunc(Options, func(opt Option) bool { return opt.Order == o })
	return Options[(idx+1)%len(Options)].Order
}

// Filter keeps notes whose title or body contains query, ignoring case.
// An empty query keeps everything.
func Filter(notes []store.Note, query string) []store.Note {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]store.Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title+" "+n.Body), q) {
			out = append(out, n)
		}
	}
	return out
}

// Sort returns a sorted copy of notes. Equal keys keep their input order.
func Sort(notes []store.Note, order Order) []store.Note {
	out := slices.Clone(notes)

	var compare func(a, b store.Note) int
	switch order.Field {
	case ByTitle:
		// Collator is not safe for concurrent use
		collator := collate.New(language.English, collate.IgnoreCase)
		compare = func(a, b store.Note) int {
			return collator.CompareString(a.Title, b.Title)
		}
	default:
		compare = func(a, b store.Note) int {
			return cmp.Compare(a.UpdatedAt, b.UpdatedAt)
		}
	}

	if order.Direction == Desc {
		asc := compare
		compare = func(a, b store.Note) int { return asc(b, a) }
	}

	slices.SortStableFunc(out, compare)
	return out
}

// Apply filters then sorts, leaving notes untouched
func Apply(notes []store.Note, query string, order Order) []store.Note {
	return Sort(Filter(notes, query), order)
}
