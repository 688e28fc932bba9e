package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/brunoscheufler/pocketnotes/constants"
	"github.com/brunoscheufler/pocketnotes/listing"
	"github.com/brunoscheufler/pocketnotes/notebook"
	"github.com/brunoscheufler/pocketnotes/store"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/rivo/tview"
)

const untitled = "(untitled)"

// notePreview returns the first non-blank line of body, cut to limit runes
func notePreview(body string, limit int) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > limit {
			return string(runes[:limit-1]) + "…"
		}
		return line
	}
	return ""
}

func noteMainText(note store.Note) string {
	if note.Title == "" {
		return untitled
	}
	return tview.Escape(note.Title)
}

func noteSecondaryText(note store.Note, now time.Time) string {
	parts := []string{humanize.RelTime(note.UpdatedTime(), now, "ago", "from now")}
	if len(note.ImageURIs) > 0 {
		parts = append(parts, english.Plural(len(note.ImageURIs), "image", ""))
	}
	if preview := notePreview(note.Body, constants.NotePreviewLength); preview != "" {
		parts = append(parts, tview.Escape(preview))
	}
	return strings.Join(parts, " · ")
}

func notesTitle(count int, order listing.Order) string {
	return fmt.Sprintf(" %s · %s ", english.Plural(count, "note", ""), order.Label())
}

// imageLabel is how an attached image is shown in the editor
func imageLabel(ref string, pending bool) string {
	label := tview.Escape(filepath.Base(ref))
	if pending {
		label += " (new)"
	}
	return label
}

// digitsOnly is an input field acceptance func for PIN entry
func digitsOnly(_ string, lastChar rune) bool {
	return store.IsPINDigit(lastChar)
}

// errorMessage turns service errors into inline messages
func errorMessage(err error) string {
	var copyErr *store.CopyError

	switch {
	case errors.Is(err, store.ErrInvalidCredentials):
		return "Invalid username or PIN"
	case errors.Is(err, store.ErrDuplicateUsername):
		return "That username is already taken"
	case errors.Is(err, store.ErrInvalidUsername):
		return "Please enter a username"
	case errors.Is(err, store.ErrInvalidPIN):
		return fmt.Sprintf("PIN must be at least %d digits", constants.MinPINLength)
	case errors.Is(err, notebook.ErrPINMismatch):
		return "PINs do not match"
	case errors.Is(err, notebook.ErrEmptyNote):
		return "Add a title or some text first"
	case errors.Is(err, notebook.ErrNoSession):
		return "Please log in again"
	case errors.Is(err, store.ErrNoteNotFound):
		return "That note no longer exists"
	case errors.As(err, &copyErr):
		return fmt.Sprintf("Could not attach %s", filepath.Base(copyErr.Source))
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}
