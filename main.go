package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brunoscheufler/pocketnotes/cli"
	"github.com/brunoscheufler/pocketnotes/config"
	"github.com/brunoscheufler/pocketnotes/notebook"
	"github.com/brunoscheufler/pocketnotes/store"
	"github.com/brunoscheufler/pocketnotes/telemetry"
)

const HealthCheckTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	if err := Run(cfg); err != nil {
		log.Fatal(err)
	}
}

// ApplicationComponents holds the initialized components needed to run the application
type ApplicationComponents struct {
	KV           store.KV
	AccountStore store.AccountStore
	NoteStore    store.NoteStore
	BlobStore    store.BlobStore
	Telemetry    *telemetry.Telemetry
	Service      *notebook.Service
}

func (c *ApplicationComponents) Close() error {
	c.Telemetry.Stop()
	return c.KV.Close()
}

// initializeStores opens the database and creates the account, note and blob stores
func initializeStores(cfg *config.Config) (store.KV, store.AccountStore, store.NoteStore, store.BlobStore, error) {
	kv, err := store.NewSQLiteKV(cfg.StoreOptions())
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("could not open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), HealthCheckTimeout)
	defer cancel()
	if err := kv.HealthCheck(ctx); err != nil {
		kv.Close()
		return nil, nil, nil, nil, fmt.Errorf("database health check failed: %w", err)
	}

	blobStore, err := store.NewBlobStore(cfg.BlobDir)
	if err != nil {
		kv.Close()
		return nil, nil, nil, nil, fmt.Errorf("could not create blob store: %w", err)
	}

	return kv, store.NewAccountStore(kv), store.NewNoteStore(kv), blobStore, nil
}

// setupTelemetry creates the telemetry system. The terminal UI owns the
// screen, so logs only go to stderr in batch mode.
func setupTelemetry(cfg *config.Config, accountStore store.AccountStore, noteStore store.NoteStore) (*telemetry.Telemetry, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	opts := telemetry.Options{Level: level}
	if cfg.RunGC {
		opts.Console = os.Stderr
	}

	tel := telemetry.New(accountStore, noteStore, opts)
	tel.SetupLogging()
	return tel, nil
}

func initializeApplication(cfg *config.Config) (*ApplicationComponents, error) {
	kv, accountStore, noteStore, blobStore, err := initializeStores(cfg)
	if err != nil {
		return nil, err
	}

	tel, err := setupTelemetry(cfg, accountStore, noteStore)
	if err != nil {
		kv.Close()
		return nil, err
	}

	service := notebook.NewService(accountStore, noteStore, blobStore,
		notebook.WithLogger(tel.GetLogger()),
		notebook.WithStats(tel.GetStatsCollector()),
		notebook.WithGCGrace(time.Duration(cfg.GCGrace)),
	)

	return &ApplicationComponents{
		KV:           kv,
		AccountStore: accountStore,
		NoteStore:    noteStore,
		BlobStore:    blobStore,
		Telemetry:    tel,
		Service:      service,
	}, nil
}

func Run(cfg *config.Config) error {
	components, err := initializeApplication(cfg)
	if err != nil {
		return err
	}
	defer components.Close()

	if cfg.RunGC {
		return runGC(components)
	}

	return runWithCLI(cfg, components)
}

func runGC(components *ApplicationComponents) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := components.Service.CollectGarbage(ctx)
	if err != nil {
		return err
	}

	fmt.Println(report)
	return nil
}

func runWithCLI(cfg *config.Config, components *ApplicationComponents) error {
	if cfg.Generator.Enabled {
		simulator := NewSimulator(components.Service, components.Telemetry.GetLogger(), SimulatorOptions{
			AccountCount:    cfg.Generator.AccountCount,
			NotesPerAccount: cfg.Generator.NotesPerAccount,
			RequestsPerMin:  cfg.Generator.RequestsPerMin,
		})
		if err := simulator.Start(); err != nil {
			return fmt.Errorf("load generator failed to start: %w", err)
		}
		defer simulator.Stop()
	}

	return cli.RunCLI(components.Service, components.Telemetry, cli.CLIOptions{
		Theme: cfg.Theme,
	})
}
