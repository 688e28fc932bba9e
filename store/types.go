package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Account is a local user profile. The PIN is kept as entered.
type Account struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
}

type Note struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	ImageURIs []string `json:"imageUris"`
	// UpdatedAt is epoch milliseconds, written by the note store on every save
	UpdatedAt int64 `json:"updatedAt"`
}

// UnmarshalJSON accepts records written before multiple images were
// supported, which carry a single "imageUri" string.
func (n *Note) UnmarshalJSON(data []byte) error {
	type plainNote Note
	aux := struct {
		*plainNote
		ImageURI string `json:"imageUri"`
	}{plainNote: (*plainNote)(n)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(n.ImageURIs) == 0 && aux.ImageURI != "" {
		n.ImageURIs = []string{aux.ImageURI}
	}
	if len(n.ImageURIs) == 0 {
		n.ImageURIs = nil
	}
	return nil
}

// UpdatedTime converts UpdatedAt to a time.Time
func (n Note) UpdatedTime() time.Time {
	return time.UnixMilli(n.UpdatedAt)
}

type AccountStore interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	CreateAccount(ctx context.Context, username, pin string) (Account, error)
	Authenticate(ctx context.Context, username, pin string) (Account, error)
}

type NoteStore interface {
	ListNotes(ctx context.Context, username string) ([]Note, error)
	GetNote(ctx context.Context, username, noteID string) (*Note, error)
	UpsertNote(ctx context.Context, username string, note Note) (Note, error)
	DeleteNote(ctx context.Context, username, noteID string) error
	CountNotes(ctx context.Context, username string) (int, error)
}

type BlobStore interface {
	PersistImage(ctx context.Context, sourceURI, suggestedName string) (string, error)
	Remove(ctx context.Context, ref string) error
	List(ctx context.Context) ([]string, error)
	Stat(ctx context.Context, ref string) (BlobInfo, error)
}

// BlobInfo describes a stored blob
type BlobInfo struct {
	Size    int64
	ModTime time.Time
}

var (
	ErrDuplicateUsername  = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid username or PIN")
	ErrInvalidUsername    = errors.New("username is required")
	ErrInvalidPIN         = errors.New("PIN must be at least 4 digits")
	ErrNoteNotFound       = errors.New("note not found")
	ErrInvalidBlobName    = errors.New("invalid blob name")
	ErrForeignBlob        = errors.New("blob is outside the blob directory")
)

// CopyError is returned by PersistImage for any failure to copy a source image
type CopyError struct {
	Source string
	Err    error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("could not copy image %q: %v", e.Source, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
	EnableWAL       bool
}

func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		ConnMaxLifetime: 5 * time.Minute,
		BusyTimeout:     5 * time.Second,
	}
}

// StoreOptions configures where the key-value database lives
type StoreOptions struct {
	Name     string
	BasePath string
	Config   DatabaseConfig
}

func DefaultStoreOptions(name string) StoreOptions {
	return StoreOptions{
		Name:   name,
		Config: DefaultDatabaseConfig(),
	}
}
