package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brunoscheufler/pocketnotes/listing"
	"github.com/brunoscheufler/pocketnotes/notebook"
)

const (
	simulatorPIN         = "0000"
	simulatorStopTimeout = 2 * time.Second
)

type SimulatorOptions struct {
	AccountCount    int
	NotesPerAccount int
	RequestsPerMin  int
}

// Simulator drives random note traffic against the service, one goroutine
// per generated account, and checks that reads return what was written.
type Simulator struct {
	service *notebook.Service
	logger  *slog.Logger
	options SimulatorOptions

	mismatches atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type accountLoop struct {
	sim     *Simulator
	session notebook.Session

	// note id -> hash of the last written body
	notes  map[string]string
	ticker *time.Ticker
}

func hashContents(content string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
}

func NewSimulator(service *notebook.Service, logger *slog.Logger, options SimulatorOptions) *Simulator {
	ctx, cancel := context.WithCancel(context.Background())

	return &Simulator{
		service: service,
		logger:  logger,
		options: options,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Simulator) Start() error {
	s.logger.Info("starting load generator",
		"accounts", s.options.AccountCount,
		"notes_per_account", s.options.NotesPerAccount,
		"requests_per_min", s.options.RequestsPerMin,
	)

	sessions, err := s.createAccounts()
	if err != nil {
		return fmt.Errorf("failed to create accounts: %w", err)
	}

	for _, sess := range sessions {
		s.wg.Add(1)
		go s.runAccountLoop(sess)
	}

	return nil
}

func (s *Simulator) Stop() {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("load generator stopped", "mismatches", s.mismatches.Load())
	case <-time.After(simulatorStopTimeout):
		s.logger.Warn("load generator stop timed out")
	}
}

// Mismatches counts reads that did not match the last write
func (s *Simulator) Mismatches() int64 {
	return s.mismatches.Load()
}

func (s *Simulator) createAccounts() ([]notebook.Session, error) {
	sessions := make([]notebook.Session, 0, s.options.AccountCount)

	stamp := time.Now().Format("150405")
	for i := range s.options.AccountCount {
		username := fmt.Sprintf("loadtest%d_%s", i+1, stamp)

		if _, err := s.service.SignUp(s.ctx, username, simulatorPIN, simulatorPIN); err != nil {
			return nil, fmt.Errorf("failed to create account %s: %w", username, err)
		}
		sess, err := s.service.Login(s.ctx, username, simulatorPIN)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	return sessions, nil
}

func (s *Simulator) runAccountLoop(sess notebook.Session) {
	defer s.wg.Done()

	interval := time.Minute
	if s.options.RequestsPerMin > 0 {
		interval = time.Minute / time.Duration(s.options.RequestsPerMin)
	}

	loop := &accountLoop{
		sim:     s,
		session: sess,
		notes:   make(map[string]string),
		ticker:  time.NewTicker(interval),
	}
	defer loop.ticker.Stop()

	for range s.options.NotesPerAccount {
		if err := loop.createNote(); err != nil {
			s.logger.Error("failed to create initial notes", "user", sess.Username, "error", err)
			return
		}
	}

	loop.run()
}

func (al *accountLoop) run() {
	operations := []func() error{
		al.createNote,
		al.updateNote,
		al.readNote,
		al.deleteNote,
		al.listNotes,
	}

	for {
		select {
		case <-al.sim.ctx.Done():
			return
		case <-al.ticker.C:
			operation := operations[rand.IntN(len(operations))]
			if err := operation(); err != nil && al.sim.ctx.Err() == nil {
				al.sim.logger.Error("load generator operation failed", "error", err)
			}
		}
	}
}

func (al *accountLoop) randomNoteID() (string, bool) {
	if len(al.notes) == 0 {
		return "", false
	}

	ids := make([]string, 0, len(al.notes))
	for id := range al.notes {
		ids = append(ids, id)
	}
	return ids[rand.IntN(len(ids))], true
}

func (al *accountLoop) mismatch(msg, noteID string) {
	al.sim.mismatches.Add(1)
	al.sim.logger.Warn(msg, "user", al.session.Username, "id", noteID)
}

func (al *accountLoop) createNote() error {
	body := fmt.Sprintf("Note created at %s", time.Now().Format(time.RFC3339Nano))
	note, err := al.sim.service.SaveNote(al.sim.ctx, al.session, notebook.Draft{
		Title: "Load test",
		Body:  body,
	})
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	al.notes[note.ID] = hashContents(note.Body)
	return nil
}

func (al *accountLoop) updateNote() error {
	id, ok := al.randomNoteID()
	if !ok {
		return nil
	}

	body := fmt.Sprintf("Updated at %s", time.Now().Format(time.RFC3339Nano))
	note, err := al.sim.service.SaveNote(al.sim.ctx, al.session, notebook.Draft{
		ID:    id,
		Title: "Load test",
		Body:  body,
	})
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	al.notes[note.ID] = hashContents(note.Body)
	return nil
}

func (al *accountLoop) readNote() error {
	id, ok := al.randomNoteID()
	if !ok {
		return nil
	}

	note, err := al.sim.service.GetNote(al.sim.ctx, al.session, id)
	if err != nil {
		return fmt.Errorf("failed to read note: %w", err)
	}

	if hashContents(note.Body) != al.notes[id] {
		al.mismatch("note content mismatch", id)
	}
	return nil
}

func (al *accountLoop) deleteNote() error {
	id, ok := al.randomNoteID()
	if !ok {
		return nil
	}

	if err := al.sim.service.DeleteNote(al.sim.ctx, al.session, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	delete(al.notes, id)
	return nil
}

func (al *accountLoop) listNotes() error {
	notes, err := al.sim.service.ListNotes(al.sim.ctx, al.session, "", listing.DefaultOrder)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	stored := make(map[string]string, len(notes))
	for _, note := range notes {
		stored[note.ID] = hashContents(note.Body)
	}

	for id, expected := range al.notes {
		actual, exists := stored[id]
		if !exists {
			al.mismatch("note missing from store", id)
		} else if actual != expected {
			al.mismatch("note list content mismatch", id)
		}
	}
	if len(stored) != len(al.notes) {
		al.mismatch("unexpected notes in store", "")
	}

	return nil
}
