package notebook

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brunoscheufler/pocketnotes/listing"
	"github.com/brunoscheufler/pocketnotes/store"
	"github.com/brunoscheufler/pocketnotes/telemetry"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	accounts store.AccountStore
	notes    store.NoteStore
	blobs    store.BlobStore
	blobDir  string
	stats    *telemetry.StatsCollector
}

func newFixture(t *testing.T, wrapNotes func(store.NoteStore) store.NoteStore) *fixture {
	t.Helper()

	kv := store.NewMemoryKV()
	accounts := store.NewAccountStore(kv)
	var notes store.NoteStore = store.NewNoteStore(kv)
	if wrapNotes != nil {
		notes = wrapNotes(notes)
	}

	blobDir := t.TempDir()
	blobs, err := store.NewBlobStore(blobDir)
	require.NoError(t, err)

	stats := telemetry.NewStatsCollector(accounts, notes)
	t.Cleanup(stats.Stop)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := NewService(accounts, notes, blobs,
		WithLogger(logger),
		WithStats(stats),
		WithClock(func() time.Time { return time.UnixMilli(1_700_000_000_000) }),
		WithGCGrace(0),
	)

	return &fixture{svc: svc, accounts: accounts, notes: notes, blobs: blobs, blobDir: blobDir, stats: stats}
}

func (f *fixture) login(t *testing.T, username string) Session {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, username, "1234", "1234")
	require.NoError(t, err)
	sess, err := f.svc.Login(ctx, username, "1234")
	require.NoError(t, err)
	return sess
}

func writeImage(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func blobCount(t *testing.T, blobs store.BlobStore) int {
	t.Helper()
	refs, err := blobs.List(context.Background())
	require.NoError(t, err)
	return len(refs)
}

type failingUpserts struct {
	store.NoteStore
}

func (failingUpserts) UpsertNote(context.Context, string, store.Note) (store.Note, error) {
	return store.Note{}, errors.New("disk full")
}

func TestSignUpAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.svc.SignUp(ctx, "alice", "1234", "4321")
	require.ErrorIs(t, err, ErrPINMismatch)

	account, err := f.svc.SignUp(ctx, " Alice ", "1234", "1234")
	require.NoError(t, err)
	require.Equal(t, "Alice", account.Username)

	_, err = f.svc.SignUp(ctx, "alice", "9999", "9999")
	require.ErrorIs(t, err, store.ErrDuplicateUsername)

	_, err = f.svc.Login(ctx, "alice", "0000")
	require.ErrorIs(t, err, store.ErrInvalidCredentials)

	sess, err := f.svc.Login(ctx, "ALICE", "1234")
	require.NoError(t, err)
	require.Equal(t, "Alice", sess.Username)
	require.Equal(t, time.UnixMilli(1_700_000_000_000), sess.StartedAt)
	require.True(t, sess.Valid())
}

func TestOperationsRequireSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	var none Session

	_, err := f.svc.ListNotes(ctx, none, "", listing.DefaultOrder)
	require.ErrorIs(t, err, ErrNoSession)
	_, err = f.svc.GetNote(ctx, none, "x")
	require.ErrorIs(t, err, ErrNoSession)
	_, err = f.svc.SaveNote(ctx, none, Draft{Title: "t"})
	require.ErrorIs(t, err, ErrNoSession)
	require.ErrorIs(t, f.svc.DeleteNote(ctx, none, "x"), ErrNoSession)
	_, err = f.svc.OtherAccounts(ctx, none)
	require.ErrorIs(t, err, ErrNoSession)
	_, err = f.svc.SwitchAccount(ctx, none, "a", "1234")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSwitchAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	alice := f.login(t, "alice")
	f.login(t, "bob")
	f.login(t, "carol")

	others, err := f.svc.OtherAccounts(ctx, alice)
	require.NoError(t, err)
	require.Len(t, others, 2)
	require.Equal(t, "bob", others[0].Username)
	require.Equal(t, "carol", others[1].Username)

	_, err = f.svc.SwitchAccount(ctx, alice, "bob", "0000")
	require.ErrorIs(t, err, store.ErrInvalidCredentials)

	bob, err := f.svc.SwitchAccount(ctx, alice, "bob", "1234")
	require.NoError(t, err)
	require.Equal(t, "bob", bob.Username)

	same, err := f.svc.SwitchAccount(ctx, bob, "bob", "1234")
	require.NoError(t, err)
	require.Equal(t, "bob", same.Username)
}

func TestSaveNote_TrimsAndRejectsEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	sess := f.login(t, "alice")

	_, err := f.svc.SaveNote(ctx, sess, Draft{Title: "  ", Body: "\n"})
	require.ErrorIs(t, err, ErrEmptyNote)

	note, err := f.svc.SaveNote(ctx, sess, Draft{Title: "  Groceries ", Body: " milk\n"})
	require.NoError(t, err)
	require.NotEmpty(t, note.ID)
	require.Equal(t, "Groceries", note.Title)
	require.Equal(t, "milk", note.Body)
	require.Nil(t, note.ImageURIs)

	edited, err := f.svc.SaveNote(ctx, sess, Draft{ID: note.ID, Title: "Groceries", Body: "milk, eggs"})
	require.NoError(t, err)
	require.Equal(t, note.ID, edited.ID)

	notes, err := f.svc.ListNotes(ctx, sess, "", listing.DefaultOrder)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "milk, eggs", notes[0].Body)
}

func TestSaveNote_CopiesImagesInOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	sess := f.login(t, "alice")

	first := writeImage(t, "first")
	second := writeImage(t, "second-image")

	note, err := f.svc.SaveNote(ctx, sess, Draft{
		Title:     "Trip",
		ImageURIs: []string{"/elsewhere/kept.jpg"},
		NewImages: []string{first, second},
	})
	require.NoError(t, err)
	require.Len(t, note.ImageURIs, 3)
	require.Equal(t, "/elsewhere/kept.jpg", note.ImageURIs[0])

	data, err := os.ReadFile(note.ImageURIs[1])
	require.NoError(t, err)
	require.Equal(t, "first", string(data))
	data, err = os.ReadFile(note.ImageURIs[2])
	require.NoError(t, err)
	require.Equal(t, "second-image", string(data))

	for _, ref := range note.ImageURIs[1:] {
		require.Equal(t, f.blobDir, filepath.Dir(ref))
	}

	stats, err := f.stats.CollectStats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.BlobCopies)
}

func TestSaveNote_RollsBackWhenCopyFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	sess := f.login(t, "alice")

	good := writeImage(t, "ok")
	missing := filepath.Join(t.TempDir(), "missing.jpg")

	_, err := f.svc.SaveNote(ctx, sess, Draft{Title: "Trip", NewImages: []string{good, missing}})
	var copyErr *store.CopyError
	require.ErrorAs(t, err, &copyErr)
	require.Equal(t, missing, copyErr.Source)

	require.Equal(t, 0, blobCount(t, f.blobs))

	notes, err := f.svc.ListNotes(ctx, sess, "", listing.DefaultOrder)
	require.NoError(t, err)
	require.Empty(t, notes)
}

func TestSaveNote_RollsBackWhenWriteFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(ns store.NoteStore) store.NoteStore { return failingUpserts{ns} })
	sess := f.login(t, "alice")

	_, err := f.svc.SaveNote(ctx, sess, Draft{
		Title:     "Trip",
		NewImages: []string{writeImage(t, "a"), writeImage(t, "b")},
	})
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, 0, blobCount(t, f.blobs))
}

func TestListNotes_FilterAndSort(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	sess := f.login(t, "alice")
	other := f.login(t, "bob")

	for _, title := range []string{"banana", "Apple", "cherry pie"} {
		_, err := f.svc.SaveNote(ctx, sess, Draft{Title: title})
		require.NoError(t, err)
	}
	_, err := f.svc.SaveNote(ctx, other, Draft{Title: "bob's apple"})
	require.NoError(t, err)

	notes, err := f.svc.ListNotes(ctx, sess, "", listing.Order{Field: listing.ByTitle, Direction: listing.Asc})
	require.NoError(t, err)
	require.Len(t, notes, 3)
	require.Equal(t, "Apple", notes[0].Title)
	require.Equal(t, "banana", notes[1].Title)
	require.Equal(t, "cherry pie", notes[2].Title)

	notes, err = f.svc.ListNotes(ctx, sess, "APP", listing.DefaultOrder)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "Apple", notes[0].Title)
}

func TestGetAndDeleteNote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	sess := f.login(t, "alice")

	note, err := f.svc.SaveNote(ctx, sess, Draft{Title: "todo"})
	require.NoError(t, err)

	got, err := f.svc.GetNote(ctx, sess, note.ID)
	require.NoError(t, err)
	require.Equal(t, note, *got)

	require.NoError(t, f.svc.DeleteNote(ctx, sess, note.ID))
	_, err = f.svc.GetNote(ctx, sess, note.ID)
	require.ErrorIs(t, err, store.ErrNoteNotFound)

	// deleting an unknown id is not an error
	require.NoError(t, f.svc.DeleteNote(ctx, sess, note.ID))
}

func TestDraftFromNote(t *testing.T) {
	note := store.Note{ID: "n1", Title: "t", Body: "b", ImageURIs: []string{"/a.jpg"}}
	draft := DraftFromNote(note)
	require.Equal(t, Draft{ID: "n1", Title: "t", Body: "b", ImageURIs: []string{"/a.jpg"}}, draft)

	draft.ImageURIs[0] = "/changed.jpg"
	require.Equal(t, "/a.jpg", note.ImageURIs[0])
}
