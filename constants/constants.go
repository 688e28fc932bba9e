package constants

import "time"

// Application-wide constants
const (
	// Persisted key layout
	UsersKey       = "USERS"
	NotesKeyPrefix = "NOTES_"

	// Blob naming
	DefaultImageExt = ".jpg"

	// Account rules
	MinPINLength = 4

	// Storage defaults
	DefaultDatabaseName = "notes"
	DefaultBlobDirName  = "documents"
	DataDirName         = ".data"

	// Images younger than this are never garbage collected; a save in another
	// process may not have written its note yet
	DefaultGCGrace = 10 * time.Minute

	// Telemetry configuration
	DefaultLogBufferSize = 1000
	DefaultStatsInterval = 2 * time.Second

	// CLI configuration
	DefaultTheme       = "dark"
	NotePreviewLength  = 60
	StatusClearTimeout = 3 * time.Second

	// Load generator defaults
	DefaultGenAccounts        = 5
	DefaultGenNotesPerAccount = 3
	DefaultGenRequestsPerMin  = 60
)
