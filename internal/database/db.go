package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the accounts table if it does not exist yet.  The
// service owns a single table, so schema setup lives here instead of a
// migration tool.  Token columns carry unique indexes: MySQL allows any
// number of NULLs in a unique index, and a duplicate live token surfaces as
// error 1062 which the repository maps to a retryable collision.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS accounts (
	id                      BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	email                   VARCHAR(255) NOT NULL,
	password_hash           VARCHAR(100) NOT NULL,
	display_name            VARCHAR(127) NOT NULL DEFAULT '',
	role                    ENUM('USER','ADMIN') NOT NULL DEFAULT 'USER',
	email_verified          TINYINT(1) NOT NULL DEFAULT 0,
	verification_token      VARCHAR(64) NULL,
	verification_expires_at DATETIME NULL,
	reset_token             VARCHAR(64) NULL,
	reset_expires_at        DATETIME NULL,
	created_at              TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at              TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uq_accounts_email (email),
	UNIQUE KEY uq_accounts_verification_token (verification_token),
	UNIQUE KEY uq_accounts_reset_token (reset_token)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	_, err := db.ExecContext(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensure accounts schema: %w", err)
	}
	return nil
}
