package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brunoscheufler/pocketnotes/listing"
	"github.com/brunoscheufler/pocketnotes/notebook"
	"github.com/brunoscheufler/pocketnotes/store"
	"github.com/stretchr/testify/require"
)

func TestNotePreview(t *testing.T) {
	tests := []struct {
		name string
		body string
		max  int
		want string
	}{
		{"empty", "", 10, ""},
		{"blank lines", "\n  \n", 10, ""},
		{"first non blank line", "\n  hello  \nworld", 10, "hello"},
		{"exact length", "abcde", 5, "abcde"},
		{"truncated", "abcdefgh", 5, "abcd…"},
		{"runes", "äöüßéèê", 4, "äöü…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, notePreview(tt.body, tt.max))
		})
	}
}

func TestNoteTexts(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	note := store.Note{
		Title:     "Shopping [list]",
		Body:      "milk\neggs",
		ImageURIs: []string{"/a.jpg", "/b.jpg"},
		UpdatedAt: now.Add(-3 * time.Minute).UnixMilli(),
	}

	require.Equal(t, "Shopping [list[]", noteMainText(note))
	require.Equal(t, untitled, noteMainText(store.Note{}))
	require.Equal(t, "3 minutes ago · 2 images · milk", noteSecondaryText(note, now))

	note.ImageURIs = nil
	note.Body = ""
	require.Equal(t, "3 minutes ago", noteSecondaryText(note, now))
}

func TestNotesTitle(t *testing.T) {
	require.Equal(t, " 1 note · Last Updated (New -> Old) ", notesTitle(1, listing.DefaultOrder))
	require.Equal(t, " 0 notes · Last Updated (New -> Old) ", notesTitle(0, listing.DefaultOrder))
}

func TestImageLabel(t *testing.T) {
	require.Equal(t, "photo.jpg", imageLabel("/data/documents/photo.jpg", false))
	require.Equal(t, "photo.jpg (new)", imageLabel("/tmp/photo.jpg", true))
}

func TestDigitsOnly(t *testing.T) {
	require.True(t, digitsOnly("12", '3'))
	require.False(t, digitsOnly("12", 'a'))
	require.False(t, digitsOnly("12", '-'))
	require.False(t, digitsOnly("12", '٣'))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{store.ErrInvalidCredentials, "Invalid username or PIN"},
		{fmt.Errorf("wrapped: %w", store.ErrDuplicateUsername), "That username is already taken"},
		{store.ErrInvalidUsername, "Please enter a username"},
		{store.ErrInvalidPIN, "PIN must be at least 4 digits"},
		{notebook.ErrPINMismatch, "PINs do not match"},
		{notebook.ErrEmptyNote, "Add a title or some text first"},
		{notebook.ErrNoSession, "Please log in again"},
		{store.ErrNoteNotFound, "That note no longer exists"},
		{&store.CopyError{Source: "/tmp/cat.jpg", Err: errors.New("boom")}, "Could not attach cat.jpg"},
		{errors.New("disk full"), "Something went wrong: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, errorMessage(tt.err))
		})
	}
}

func TestFormatTopAccounts(t *testing.T) {
	require.Contains(t, formatTopAccounts(nil, DarkTheme), "No accounts yet")

	out := formatTopAccounts([]store.AccountStats{
		{Account: store.Account{Username: "alice"}, NoteCount: 3},
		{Account: store.Account{Username: strings.Repeat("x", 30)}, NoteCount: 1},
	}, LightTheme)

	require.Contains(t, out, "[navy]")
	require.Contains(t, out, "alice")
	require.Contains(t, out, strings.Repeat("x", 15)+"...")
	require.NotContains(t, out, strings.Repeat("x", 16))
}
