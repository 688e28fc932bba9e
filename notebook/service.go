// Package notebook ties the account, note and blob stores together behind
// an explicit Session.
package notebook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/brunoscheufler/pocketnotes/constants"
	"github.com/brunoscheufler/pocketnotes/listing"
	"github.com/brunoscheufler/pocketnotes/store"
	"github.com/brunoscheufler/pocketnotes/telemetry"
)

const maxParallelCopies = 4

type Service struct {
	accounts store.AccountStore
	notes    store.NoteStore
	blobs    store.BlobStore

	logger  *slog.Logger
	stats   *telemetry.StatsCollector
	now     func() time.Time
	gcGrace time.Duration

	// held for reading while a save copies blobs, exclusively by garbage
	// collection; only covers saves in this process, see gcGrace for others
	gcMu sync.RWMutex
}

// Option defines a functional option for configuring the service
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithStats reports operations to stats; without it nothing is counted
func WithStats(stats *telemetry.StatsCollector) Option {
	return func(s *Service) {
		s.stats = stats
	}
}

// WithGCGrace sets the minimum age of an image before garbage collection may
// remove it. Zero or less disables the check.
func WithGCGrace(grace time.Duration) Option {
	return func(s *Service) {
		s.gcGrace = grace
	}
}

// WithClock sets the clock used for session start times and image ages
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(accounts store.AccountStore, notes store.NoteStore, blobs store.BlobStore, options ...Option) *Service {
	s := &Service{
		accounts: accounts,
		notes:    notes,
		blobs:    blobs,
		logger:   slog.Default(),
		now:      time.Now,
		gcGrace:  constants.DefaultGCGrace,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Service) SignUp(ctx context.Context, username, pin, confirmPIN string) (store.Account, error) {
	if strings.TrimSpace(pin) != strings.TrimSpace(confirmPIN) {
		return store.Account{}, ErrPINMismatch
	}

	account, err := s.accounts.CreateAccount(ctx, username, pin)
	if err != nil {
		s.stats.IncrementFailure()
		return store.Account{}, err
	}
	s.stats.IncrementAccountWrite()

	s.logger.Info("account created", "user", account.Username)
	return account, nil
}

func (s *Service) Login(ctx context.Context, username, pin string) (Session, error) {
	account, err := s.accounts.Authenticate(ctx, username, pin)
	s.stats.IncrementAccountRead()
	if err != nil {
		s.logger.Debug("login rejected", "user", strings.TrimSpace(username))
		return Session{}, err
	}

	s.logger.Info("signed in", "user", account.Username)
	return Session{Username: account.Username, StartedAt: s.now()}, nil
}

// SwitchAccount authenticates another account; the returned session replaces
// current. Switching to the current account is allowed.
func (s *Service) SwitchAccount(ctx context.Context, current Session, username, pin string) (Session, error) {
	if !current.Valid() {
		return Session{}, ErrNoSession
	}

	next, err := s.Login(ctx, username, pin)
	if err != nil {
		return Session{}, err
	}

	s.logger.Info("switched account", "from", current.Username, "to", next.Username)
	return next, nil
}

// OtherAccounts lists every account except the signed-in one, in signup order
func (s *Service) OtherAccounts(ctx context.Context, sess Session) ([]store.Account, error) {
	if !sess.Valid() {
		return nil, ErrNoSession
	}

	accounts, err := s.accounts.ListAccounts(ctx)
	s.stats.IncrementAccountRead()
	if err != nil {
		return nil, err
	}

	others := make([]store.Account, 0, len(accounts))
	for _, account := range accounts {
		if !strings.EqualFold(account.Username, sess.Username) {
			others = append(others, account)
		}
	}
	return others, nil
}

func (s *Service) ListNotes(ctx context.Context, sess Session, query string, order listing.Order) ([]store.Note, error) {
	if !sess.Valid() {
		return nil, ErrNoSession
	}

	notes, err := s.notes.ListNotes(ctx, sess.Username)
	s.stats.IncrementNoteRead()
	if err != nil {
		s.stats.IncrementFailure()
		return nil, err
	}

	return listing.Apply(notes, query, order), nil
}

func (s *Service) GetNote(ctx context.Context, sess Session, noteID string) (*store.Note, error) {
	if !sess.Valid() {
		return nil, ErrNoSession
	}

	s.stats.IncrementNoteRead()
	return s.notes.GetNote(ctx, sess.Username, noteID)
}

func (s *Service) DeleteNote(ctx context.Context, sess Session, noteID string) error {
	if !sess.Valid() {
		return ErrNoSession
	}

	if err := s.notes.DeleteNote(ctx, sess.Username, noteID); err != nil {
		s.stats.IncrementFailure()
		return err
	}
	s.stats.IncrementNoteWrite()

	s.logger.Info("note deleted", "user", sess.Username, "id", noteID)
	return nil
}

func (s *Service) fail(err error, msg string, args ...any) error {
	s.stats.IncrementFailure()
	s.logger.Error(msg, append(args, "error", err)...)
	return fmt.Errorf("%s: %w", msg, err)
}
