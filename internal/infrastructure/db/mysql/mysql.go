package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"

	"github.com/agromarket/marketplace-api/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// MySQL server error numbers translated into domain errors.
const (
	erDupEntry         = 1062
	erNoReferencedRow2 = 1452
)

// Config captures the settings for the MySQL connection pool.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Timeout         time.Duration
}

// Connect opens a pool for cfg.DSN and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	dsn, err := mysqldrv.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	dsn.ParseTime = true

	connector, err := mysqldrv.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)

	db.SetMaxOpenConns(orDefault(cfg.MaxOpenConns, 25))
	db.SetMaxIdleConns(orDefault(cfg.MaxIdleConns, 5))
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}
	db.SetConnMaxLifetime(lifetime)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	return db, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS usuarios (
		id          BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		nome        VARCHAR(255) NOT NULL,
		email       VARCHAR(255) NOT NULL,
		senha       VARCHAR(255) NOT NULL,
		tipo        ENUM('produtor','comprador','admin') NOT NULL,
		localizacao VARCHAR(100) NULL,
		UNIQUE KEY uq_usuarios_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS produtos (
		id          BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		nome        VARCHAR(100) NOT NULL,
		descricao   VARCHAR(500) NULL,
		preco       DECIMAL(10,2) NOT NULL,
		quantidade  INT NOT NULL,
		categoria   ENUM('frutas','graos','laticinios') NOT NULL,
		localizacao VARCHAR(255) NULL,
		produtor_id BIGINT NOT NULL,
		KEY ix_produtos_produtor (produtor_id),
		CONSTRAINT fk_produtos_produtor FOREIGN KEY (produtor_id)
			REFERENCES usuarios (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the tables when they do not exist yet. Existing tables
// are left as they are.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// translate maps constraint violations onto domain errors.
func translate(err error) error {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case erDupEntry:
			return domain.ErrEmailTaken
		case erNoReferencedRow2:
			return domain.ErrUserNotFound
		}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// rollback is deferred after BeginTx; it is a no-op once the tx committed.
func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}
