package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/brunoscheufler/pocketnotes/constants"
)

type kvNoteStore struct {
	kv    KV
	locks *keyedMutex
	now   func() time.Time
	newID func() string
}

// NoteStoreOption defines a functional option for configuring the note store
type NoteStoreOption func(*kvNoteStore)

// WithClock sets the clock used to stamp UpdatedAt
func WithClock(now func() time.Time) NoteStoreOption {
	return func(s *kvNoteStore) {
		s.now = now
	}
}

// WithIDGenerator sets how ids are assigned to new notes
func WithIDGenerator(newID func() string) NoteStoreOption {
	return func(s *kvNoteStore) {
		s.newID = newID
	}
}

func NewNoteStore(kv KV, options ...NoteStoreOption) NoteStore {
	s := &kvNoteStore{
		kv:    kv,
		locks: newKeyedMutex(),
		now:   time.Now,
		newID: NewID,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// NotesKey is the storage key holding a user's note collection
func NotesKey(username string) string {
	return constants.NotesKeyPrefix + username
}

func (s *kvNoteStore) ListNotes(ctx context.Context, username string) ([]Note, error) {
	if username == "" {
		return nil, ErrInvalidUsername
	}

	notes, err := loadList[Note](ctx, s.kv, NotesKey(username))
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (s *kvNoteStore) GetNote(ctx context.Context, username, noteID string) (*Note, error) {
	notes, err := s.ListNotes(ctx, username)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(notes, func(n Note) bool { return n.ID == noteID })
	if idx == -1 {
		return nil, ErrNoteNotFound
	}
	return &notes[idx], nil
}

// UpsertNote replaces the note with the same id in place, or prepends it as
// a new note. UpdatedAt is always taken from the store clock.
func (s *kvNoteStore) UpsertNote(ctx context.Context, username string, note Note) (Note, error) {
	if username == "" {
		return Note{}, ErrInvalidUsername
	}

	unlock := s.locks.Lock(username)
	defer unlock()

	notes, err := s.ListNotes(ctx, username)
	if err != nil {
		return Note{}, err
	}

	if note.ID == "" {
		note.ID = s.newID()
	}
	if len(note.ImageURIs) == 0 {
		note.ImageURIs = nil
	} else {
		note.ImageURIs = slices.Clone(note.ImageURIs)
	}
	note.UpdatedAt = s.now().UnixMilli()

	idx := slices.IndexFunc(notes, func(n Note) bool { return n.ID == note.ID })
	if idx == -1 {
		notes = slices.Insert(notes, 0, note)
	} else {
		notes[idx] = note
	}

	if err := saveList(ctx, s.kv, NotesKey(username), notes); err != nil {
		return Note{}, fmt.Errorf("failed to save note: %w", err)
	}
	return note, nil
}

func (s *kvNoteStore) DeleteNote(ctx context.Context, username, noteID string) error {
	if username == "" {
		return ErrInvalidUsername
	}

	unlock := s.locks.Lock(username)
	defer unlock()

	notes, err := s.ListNotes(ctx, username)
	if err != nil {
		return err
	}

	notes = slices.DeleteFunc(notes, func(n Note) bool { return n.ID == noteID })

	if err := saveList(ctx, s.kv, NotesKey(username), notes); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

func (s *kvNoteStore) CountNotes(ctx context.Context, username string) (int, error) {
	notes, err := s.ListNotes(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("failed to count notes for account: %w", err)
	}
	return len(notes), nil
}
