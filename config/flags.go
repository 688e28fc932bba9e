package config

import (
	"flag"
	"time"
)

// parseFlags reads the command line into a fresh Config. Unset flags stay at
// their zero value so lower-priority sources can fill them in.
//
//	-data-dir    directory holding .data/<db>.db
//	-db          database name
//	-blob-dir    directory for copied images
//	-theme       dark or light
//	-wal         enable SQLite WAL mode
//	-busy-timeout SQLite busy timeout (e.g. 5s)
//	-log-level   debug, info, warn or error
//	-config      JSON config file path
//	-gc          remove unreferenced images and exit
//	-gc-grace    minimum image age before -gc removes it
//	-gen         run the load generator next to the UI
//	-concurrency number of generated accounts
//	-notes-per-account initial notes per generated account
//	-rpm         operations per minute per generated account
func parseFlags(args []string) (*Config, error) {
	cfg := &Config{}
	var busyTimeout, gcGrace time.Duration

	fs := flag.NewFlagSet("notes", flag.ContinueOnError)
	fs.StringVar(&cfg.DataDir, "data-dir", "", "Directory holding the database")
	fs.StringVar(&cfg.Database, "db", "", "Database name")
	fs.StringVar(&cfg.BlobDir, "blob-dir", "", "Directory for copied images")
	fs.StringVar(&cfg.Theme, "theme", "", "UI theme (dark, light)")
	fs.BoolVar(&cfg.EnableWAL, "wal", false, "Enable SQLite WAL mode")
	fs.DurationVar(&busyTimeout, "busy-timeout", 0, "SQLite busy timeout (e.g. 5s)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.ConfigFile, "config", "", "JSON config file path")
	fs.BoolVar(&cfg.RunGC, "gc", false, "Remove unreferenced images and exit")
	fs.DurationVar(&gcGrace, "gc-grace", 0, "Minimum image age before garbage collection (e.g. 10m)")
	fs.BoolVar(&cfg.Generator.Enabled, "gen", false, "Enable load generator")
	fs.IntVar(&cfg.Generator.AccountCount, "concurrency", 0, "Number of accounts for load generator")
	fs.IntVar(&cfg.Generator.NotesPerAccount, "notes-per-account", 0, "Number of notes per account for load generator")
	fs.IntVar(&cfg.Generator.RequestsPerMin, "rpm", 0, "Requests per minute for load generator")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.BusyTimeout = Duration(busyTimeout)
	cfg.GCGrace = Duration(gcGrace)
	return cfg, nil
}
