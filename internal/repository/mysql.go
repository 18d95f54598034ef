package repository

import (
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers.
const (
	mysqlErrDupEntry         = 1062
	mysqlErrNoReferencedRow2 = 1452
)

var mysqlDialect = dialect{
	name:   "mysql",
	driver: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			first_name VARCHAR(255) NOT NULL,
			last_name VARCHAR(255) NOT NULL,
			hash VARCHAR(255) NOT NULL,
			erau_id BIGINT NULL,
			signup_date BIGINT NOT NULL,
			is_officer BOOLEAN NOT NULL DEFAULT FALSE,
			chess_com_username VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS games (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			white_id BIGINT NOT NULL,
			black_id BIGINT NOT NULL,
			white_points DOUBLE NOT NULL,
			black_points DOUBLE NOT NULL,
			pgn TEXT NULL,
			scorecard_image LONGBLOB NULL,
			game_end BIGINT NOT NULL,
			game_entered BIGINT NOT NULL,
			added_by BIGINT NOT NULL,
			INDEX idx_games_game_end (game_end),
			FOREIGN KEY (white_id) REFERENCES users(id),
			FOREIGN KEY (black_id) REFERENCES users(id),
			FOREIGN KEY (added_by) REFERENCES users(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
	classify: classifyMySQL,
}

func classifyMySQL(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return nil
	}
	switch me.Number {
	case mysqlErrDupEntry:
		return ErrDuplicateEmail
	case mysqlErrNoReferencedRow2:
		return ErrUnknownReference
	}
	return nil
}

// NewMySQLStore connects to MySQL using the given DSN and creates the tables.
func NewMySQLStore(dsn string) (*SQLStore, error) {
	return open(mysqlDialect, dsn, poolSettings{
		maxOpen:     10,
		maxIdle:     5,
		maxLifetime: 5 * time.Minute,
		ping:        true,
	})
}
