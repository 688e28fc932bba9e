package notebook

import (
	"context"
	"slices"
	"strings"

	"github.com/brunoscheufler/pocketnotes/store"
	"golang.org/x/sync/errgroup"
)

// Draft is a note as edited in the UI. ImageURIs are references that are
// already stored; NewImages are source paths still to be copied.
type Draft struct {
	ID        string
	Title     string
	Body      string
	ImageURIs []string
	NewImages []string
}

// DraftFromNote starts an edit of an existing note
func DraftFromNote(note store.Note) Draft {
	return Draft{
		ID:        note.ID,
		Title:     note.Title,
		Body:      note.Body,
		ImageURIs: slices.Clone(note.ImageURIs),
	}
}

// SaveNote copies the draft's new images into the blob store and upserts
// the note. When any copy or the write fails, the images copied by this
// call are removed again.
func (s *Service) SaveNote(ctx context.Context, sess Session, draft Draft) (store.Note, error) {
	if !sess.Valid() {
		return store.Note{}, ErrNoSession
	}

	title := strings.TrimSpace(draft.Title)
	body := strings.TrimSpace(draft.Body)
	if title == "" && body == "" {
		return store.Note{}, ErrEmptyNote
	}

	s.gcMu.RLock()
	defer s.gcMu.RUnlock()

	copied, err := s.copyImages(ctx, draft.NewImages)
	if err != nil {
		s.rollback(ctx, copied)
		return store.Note{}, s.fail(err, "failed to attach images", "user", sess.Username)
	}

	images := make([]string, 0, len(draft.ImageURIs)+len(copied))
	images = append(images, draft.ImageURIs...)
	images = append(images, copied...)

	note, err := s.notes.UpsertNote(ctx, sess.Username, store.Note{
		ID:        draft.ID,
		Title:     title,
		Body:      body,
		ImageURIs: images,
	})
	if err != nil {
		s.rollback(ctx, copied)
		return store.Note{}, s.fail(err, "failed to save note", "user", sess.Username)
	}
	s.stats.IncrementNoteWrite()

	s.logger.Info("note saved", "user", sess.Username, "id", note.ID, "images", len(note.ImageURIs))
	return note, nil
}

// copyImages persists sources concurrently. The returned refs keep the
// order of sources; on error they hold whatever was copied before failing.
func (s *Service) copyImages(ctx context.Context, sources []string) ([]string, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	refs := make([]string, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelCopies)
	for i, src := range sources {
		g.Go(func() error {
			ref, err := s.blobs.PersistImage(gctx, src, "")
			if err != nil {
				return err
			}
			refs[i] = ref

			if info, err := s.blobs.Stat(gctx, ref); err == nil {
				s.stats.TrackBlobCopy(info.Size)
			}
			return nil
		})
	}
	err := g.Wait()

	if err != nil {
		return slices.DeleteFunc(refs, func(ref string) bool { return ref == "" }), err
	}
	return refs, nil
}

func (s *Service) rollback(ctx context.Context, refs []string) {
	ctx = context.WithoutCancel(ctx)
	for _, ref := range refs {
		if err := s.blobs.Remove(ctx, ref); err != nil {
			s.logger.Warn("failed to remove copied image", "ref", ref, "error", err)
		}
	}
}
