package notebook

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

type GCReport struct {
	Scanned    int
	Removed    int
	BytesFreed int64
	// unreferenced but younger than the grace period
	Recent int
}

func (r GCReport) String() string {
	out := fmt.Sprintf("scanned %d images, removed %d, freed %s",
		r.Scanned, r.Removed, humanize.IBytes(uint64(r.BytesFreed)))
	if r.Recent > 0 {
		out += fmt.Sprintf(", kept %d recent", r.Recent)
	}
	return out
}

// CollectGarbage removes stored images that no note of any account refers to.
// Images modified within the grace period are kept, since a save running in
// another process copies its images before it writes the note.
func (s *Service) CollectGarbage(ctx context.Context) (GCReport, error) {
	s.gcMu.Lock()
	defer s.gcMu.Unlock()

	referenced, err := s.referencedImages(ctx)
	if err != nil {
		return GCReport{}, s.fail(err, "failed to collect referenced images")
	}

	refs, err := s.blobs.List(ctx)
	if err != nil {
		return GCReport{}, s.fail(err, "failed to list images")
	}

	cutoff := s.now().Add(-s.gcGrace)
	report := GCReport{Scanned: len(refs)}
	for _, ref := range refs {
		if _, ok := referenced[normalizeRef(ref)]; ok {
			continue
		}

		info, err := s.blobs.Stat(ctx, ref)
		if err != nil {
			s.logger.Debug("skipping image", "ref", ref, "error", err)
			continue
		}
		if s.gcGrace > 0 && info.ModTime.After(cutoff) {
			report.Recent++
			continue
		}

		if err := s.blobs.Remove(ctx, ref); err != nil {
			return report, s.fail(err, "failed to remove image", "ref", ref)
		}
		report.Removed++
		report.BytesFreed += info.Size
		s.logger.Debug("removed unreferenced image", "ref", ref)
	}

	s.logger.Info("garbage collection finished",
		"scanned", report.Scanned,
		"removed", report.Removed,
		"recent", report.Recent,
		"freed", humanize.IBytes(uint64(report.BytesFreed)))
	return report, nil
}

func (s *Service) referencedImages(ctx context.Context) (map[string]struct{}, error) {
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	s.stats.IncrementAccountRead()

	referenced := make(map[string]struct{})
	for _, account := range accounts {
		notes, err := s.notes.ListNotes(ctx, account.Username)
		if err != nil {
			return nil, err
		}
		s.stats.IncrementNoteRead()

		for _, note := range notes {
			for _, uri := range note.ImageURIs {
				referenced[normalizeRef(uri)] = struct{}{}
			}
		}
	}
	return referenced, nil
}

// normalizeRef makes file:// URIs and plain paths comparable
func normalizeRef(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Scheme == "file" {
		return filepath.Clean(u.Path)
	}
	return filepath.Clean(ref)
}
