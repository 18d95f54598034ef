package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"erauchess-api/internal/model"

	"github.com/samber/oops"
)

type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxIdleTime time.Duration
	ping        bool
}

// SQLStore implements Store over database/sql for every supported dialect.
// Timestamps are stored as unix seconds so all backends agree.
type SQLStore struct {
	db *sql.DB
	d  dialect
}

func open(d dialect, dsn string, pool poolSettings) (*SQLStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", d.name, err)
	}

	db.SetMaxOpenConns(pool.maxOpen)
	db.SetMaxIdleConns(pool.maxIdle)
	db.SetConnMaxLifetime(pool.maxLifetime)
	db.SetConnMaxIdleTime(pool.maxIdleTime)

	if pool.ping {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping %s: %w", d.name, err)
		}
	}

	s := &SQLStore{db: db, d: d}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("store initialized", "component", "repository", "backend", d.name,
		"max_open", pool.maxOpen, "max_idle", pool.maxIdle)
	return s, nil
}

func (s *SQLStore) createTables() error {
	for _, stmt := range s.d.schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Backend names the SQL dialect in use.
func (s *SQLStore) Backend() string {
	return s.d.name
}

// wrap classifies a driver error into a sentinel, or attaches context to it.
func (s *SQLStore) wrap(err error, code, operation string, kv ...any) error {
	if sentinel := s.d.classify(err); sentinel != nil {
		return fmt.Errorf("%s: %w", operation, sentinel)
	}
	return oops.Code(code).
		With("operation", operation).
		With("backend", s.d.name).
		With(kv...).
		Wrap(err)
}

// insert runs an INSERT and returns the new row id.
func (s *SQLStore) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if s.d.returning {
		var id int64
		err := s.db.QueryRowContext(ctx, s.d.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	res, err := s.db.ExecContext(ctx, s.d.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertUser stores a member and returns its id.
func (s *SQLStore) InsertUser(ctx context.Context, u model.NewUser) (int64, error) {
	var erauID sql.NullInt64
	if u.ErauID != nil {
		erauID = sql.NullInt64{Int64: *u.ErauID, Valid: true}
	}

	id, err := s.insert(ctx, `
		INSERT INTO users (first_name, last_name, hash, erau_id, signup_date, is_officer, chess_com_username, email)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.FirstName, u.LastName, u.Hash, erauID, u.SignupDate.Unix(), u.IsOfficer, u.ChessComUsername, u.Email,
	)
	if err != nil {
		return 0, s.wrap(err, "STORE_INSERT_USER_FAILED", "insert user", "email", u.Email)
	}
	return id, nil
}

const userColumns = `id, first_name, last_name, hash, erau_id, signup_date, is_officer, chess_com_username, email`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u      model.User
		erauID sql.NullInt64
		signup int64
	)
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Hash, &erauID, &signup, &u.IsOfficer, &u.ChessComUsername, &u.Email); err != nil {
		return nil, err
	}
	if erauID.Valid {
		v := erauID.Int64
		u.ErauID = &v
	}
	u.SignupDate = time.Unix(signup, 0).UTC()
	return &u, nil
}

// FindUserByEmail returns the member registered with email.
func (s *SQLStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, s.d.rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, s.wrap(err, "STORE_FIND_USER_FAILED", "find user by email", "email", email)
	}
	return u, nil
}

// ListUsers returns every member ordered by id.
func (s *SQLStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, s.wrap(err, "STORE_LIST_USERS_FAILED", "list users")
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, s.wrap(err, "STORE_LIST_USERS_FAILED", "scan user row")
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(err, "STORE_LIST_USERS_FAILED", "iterate users")
	}
	return users, nil
}

// InsertGame stores a game result and returns its id.
func (s *SQLStore) InsertGame(ctx context.Context, g model.NewGame) (int64, error) {
	var pgn sql.NullString
	if g.PGN != nil {
		pgn = sql.NullString{String: *g.PGN, Valid: true}
	}

	var scorecard any
	if len(g.ScorecardImage) > 0 {
		scorecard = g.ScorecardImage
	}

	id, err := s.insert(ctx, `
		INSERT INTO games (white_id, black_id, white_points, black_points, pgn, scorecard_image, game_end, game_entered, added_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.WhiteID, g.BlackID, g.WhitePoints, g.BlackPoints, pgn, scorecard, g.GameEnd.Unix(), g.GameEntered.Unix(), g.AddedBy,
	)
	if err != nil {
		return 0, s.wrap(err, "STORE_INSERT_GAME_FAILED", "insert game",
			"white_id", g.WhiteID, "black_id", g.BlackID, "added_by", g.AddedBy)
	}
	return id, nil
}

// ListGames returns every game, most recently finished first.
func (s *SQLStore) ListGames(ctx context.Context) ([]model.Game, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, white_id, black_id, white_points, black_points, pgn, scorecard_image, game_end, game_entered, added_by
		FROM games
		ORDER BY game_end DESC, id DESC`)
	if err != nil {
		return nil, s.wrap(err, "STORE_LIST_GAMES_FAILED", "list games")
	}
	defer rows.Close()

	games := []model.Game{}
	for rows.Next() {
		var (
			g              model.Game
			pgn            sql.NullString
			scorecard      []byte
			end, enteredAt int64
		)
		if err := rows.Scan(&g.ID, &g.WhiteID, &g.BlackID, &g.WhitePoints, &g.BlackPoints, &pgn, &scorecard, &end, &enteredAt, &g.AddedBy); err != nil {
			return nil, s.wrap(err, "STORE_LIST_GAMES_FAILED", "scan game row")
		}
		if pgn.Valid {
			v := pgn.String
			g.PGN = &v
		}
		if len(scorecard) > 0 {
			g.ScorecardImage = scorecard
		}
		g.GameEnd = time.Unix(end, 0).UTC()
		g.GameEntered = time.Unix(enteredAt, 0).UTC()
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(err, "STORE_LIST_GAMES_FAILED", "iterate games")
	}
	return games, nil
}

// Ping checks connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Stats returns row counts.
func (s *SQLStore) Stats(ctx context.Context) (*model.StoreStats, error) {
	stats := &model.StoreStats{Backend: s.d.name}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.Users); err != nil {
		return nil, s.wrap(err, "STORE_STATS_FAILED", "count users")
	}
	if err := s.db.QueryRowContext(ctx, s.d.rebind(`SELECT COUNT(*) FROM users WHERE is_officer = ?`), true).Scan(&stats.Officers); err != nil {
		return nil, s.wrap(err, "STORE_STATS_FAILED", "count officers")
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&stats.Games); err != nil {
		return nil, s.wrap(err, "STORE_STATS_FAILED", "count games")
	}
	return stats, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ensure SQLStore implements Store
var _ Store = (*SQLStore)(nil)
