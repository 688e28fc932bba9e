package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const tempBlobPrefix = ".blob-"

type fileBlobStore struct {
	dir     string
	newName func() string
}

// BlobStoreOption defines a functional option for configuring the blob store
type BlobStoreOption func(*fileBlobStore)

// WithNameGenerator sets how blobs are named when no name is suggested
func WithNameGenerator(newName func() string) BlobStoreOption {
	return func(s *fileBlobStore) {
		s.newName = newName
	}
}

// NewBlobStore keeps blobs as plain files directly inside dir
func NewBlobStore(dir string, options ...BlobStoreOption) (BlobStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve blob dir: %w", err)
	}

	if err := os.MkdirAll(abs, 0750); err != nil {
		return nil, fmt.Errorf("could not create blob dir: %w", err)
	}

	s := &fileBlobStore{
		dir:     abs,
		newName: newBlobName,
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// PersistImage copies the file behind sourceURI into the blob directory and
// returns the path of the copy. The copy is written to a temp file first and
// renamed into place.
func (s *fileBlobStore) PersistImage(ctx context.Context, sourceURI, suggestedName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &CopyError{Source: sourceURI, Err: err}
	}

	src, err := sourcePath(sourceURI)
	if err != nil {
		return "", &CopyError{Source: sourceURI, Err: err}
	}

	name := suggestedName
	if name == "" {
		name = s.newName()
	}
	if name != filepath.Base(name) || name == "." || name == ".." || strings.HasPrefix(name, tempBlobPrefix) {
		return "", &CopyError{Source: sourceURI, Err: fmt.Errorf("%w: %q", ErrInvalidBlobName, name)}
	}

	dest := filepath.Join(s.dir, name)
	if err := s.copyFile(src, dest); err != nil {
		return "", &CopyError{Source: sourceURI, Err: err}
	}
	return dest, nil
}

func (s *fileBlobStore) copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(s.dir, tempBlobPrefix+"*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *fileBlobStore) Remove(ctx context.Context, ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove blob: %w", err)
	}
	return nil
}

func (s *fileBlobStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}

	refs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), tempBlobPrefix) {
			continue
		}
		refs = append(refs, filepath.Join(s.dir, entry.Name()))
	}
	return refs, nil
}

func (s *fileBlobStore) Stat(ctx context.Context, ref string) (BlobInfo, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return BlobInfo{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return BlobInfo{}, fmt.Errorf("failed to stat blob: %w", err)
	}
	return BlobInfo{Size: info.Size(), ModTime: info.ModTime()}, nil
}

// resolve maps a ref back to a path and checks it belongs to this store
func (s *fileBlobStore) resolve(ref string) (string, error) {
	path, err := sourcePath(ref)
	if err != nil {
		return "", err
	}

	path = filepath.Clean(path)
	if filepath.Dir(path) != s.dir {
		return "", fmt.Errorf("%w: %s", ErrForeignBlob, ref)
	}
	return path, nil
}

// sourcePath accepts plain paths and file:// URIs
func sourcePath(uri string) (string, error) {
	if uri == "" {
		return "", errors.New("empty image uri")
	}

	if !strings.HasPrefix(uri, "file://") {
		return uri, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid image uri: %w", err)
	}
	if u.Path == "" {
		return "", fmt.Errorf("invalid image uri: %s", uri)
	}
	return u.Path, nil
}
