package database

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// UpsertUserCaseStats returns the atomic single-statement upsert for
	// a user_case_stats row, keyed on the composite (user_id, case_id)
	UpsertUserCaseStats() string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders not inside quotes
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// upsertStatsOnConflict is the ON CONFLICT upsert form shared by SQLite
// and PostgreSQL
const upsertStatsOnConflict = `
	INSERT INTO user_case_stats (
		user_id, case_id, ease_factor, interval_days, correct_streak,
		next_due_at, last_attempt_at, last_result, last_latency_ms,
		last_seen_at, recently_wrong_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id, case_id) DO UPDATE SET
		ease_factor = excluded.ease_factor,
		interval_days = excluded.interval_days,
		correct_streak = excluded.correct_streak,
		next_due_at = excluded.next_due_at,
		last_attempt_at = excluded.last_attempt_at,
		last_result = excluded.last_result,
		last_latency_ms = excluded.last_latency_ms,
		last_seen_at = excluded.last_seen_at,
		recently_wrong_at = excluded.recently_wrong_at
`
