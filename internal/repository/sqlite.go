package repository

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var sqliteDialect = dialect{
	name:      "sqlite",
	driver:    "sqlite",
	returning: true,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			hash TEXT NOT NULL,
			erau_id INTEGER,
			signup_date INTEGER NOT NULL,
			is_officer BOOLEAN NOT NULL DEFAULT 0,
			chess_com_username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			white_id INTEGER NOT NULL REFERENCES users(id),
			black_id INTEGER NOT NULL REFERENCES users(id),
			white_points REAL NOT NULL,
			black_points REAL NOT NULL,
			pgn TEXT,
			scorecard_image BLOB,
			game_end INTEGER NOT NULL,
			game_entered INTEGER NOT NULL,
			added_by INTEGER NOT NULL REFERENCES users(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_game_end ON games(game_end)`,
	},
	classify: classifySQLite,
}

func classifySQLite(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return nil
	}

	code := se.Code()
	switch {
	case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return ErrDuplicateEmail
	case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ErrUnknownReference
	case code&0xff == sqlite3.SQLITE_CONSTRAINT:
		// Primary result code only; fall back to the message.
		msg := se.Error()
		if strings.Contains(msg, "UNIQUE") {
			return ErrDuplicateEmail
		}
		if strings.Contains(msg, "FOREIGN KEY") {
			return ErrUnknownReference
		}
	}
	return nil
}

// NewSQLiteStore opens (and creates if needed) a SQLite database at path.
// The pure Go driver needs no CGO.
func NewSQLiteStore(path string) (*SQLStore, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)

	s, err := open(sqliteDialect, dsn, poolSettings{
		maxOpen: 1, // SQLite only supports 1 writer
		maxIdle: 1,
	})
	if err != nil {
		return nil, err
	}

	// The single pooled connection is kept for the life of the store, so
	// the pragma sticks even if the DSN form is ignored.
	if _, err := s.db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return s, nil
}
