package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ключ advisory-лока, чтобы несколько экземпляров не накатывали миграции одновременно
const migrationLockKey = int64(20240615)

const migrationTableDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	Version string
	SQL     string
}

// loadMigrations читает встроенные миграции в лексикографическом порядке имён файлов
func loadMigrations() ([]migration, error) {
	const op = "repository.postgres.loadMigrations"

	// fs.Glob возвращает имена уже отсортированными
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	migrations := make([]migration, 0, len(names))
	for _, name := range names {
		body, err := migrationsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read %s: %w", op, name, err)
		}
		migrations = append(migrations, migration{
			Version: strings.TrimSuffix(path.Base(name), ".sql"),
			SQL:     string(body),
		})
	}
	return migrations, nil
}

// errMigrationUnlock означает, что advisory-лок мог остаться на соединении
var errMigrationUnlock = errors.New("failed to release migration lock")

// migrationConn — соединение, на котором держится сессионный advisory-лок
type migrationConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Migrate применяет ещё не применённые миграции и возвращает их количество
// весь прогон, включая создание schema_migrations, идёт под одним advisory-локом,
// поэтому несколько экземпляров сервиса могут стартовать одновременно
func Migrate(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	const op = "repository.postgres.Migrate"

	migrations, err := loadMigrations()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to acquire connection: %w", op, err)
	}
	defer conn.Release()

	applied, err := migrateLocked(ctx, conn, migrations)
	if err != nil {
		if errors.Is(err, errMigrationUnlock) {
			// закрытое соединение пул не вернёт другим, а вместе с ним уйдёт и лок
			_ = conn.Conn().Close(context.WithoutCancel(ctx))
		}
		return applied, fmt.Errorf("%s: %w", op, err)
	}
	return applied, nil
}

func migrateLocked(ctx context.Context, conn migrationConn, migrations []migration) (applied int, err error) {
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, migrationLockKey); err != nil {
		return 0, fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		if _, unlockErr := conn.Exec(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, migrationLockKey); unlockErr != nil {
			err = errors.Join(err, fmt.Errorf("%w: %w", errMigrationUnlock, unlockErr))
		}
	}()

	if _, err := conn.Exec(ctx, migrationTableDDL); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		ok, err := applyMigration(ctx, conn, m)
		if err != nil {
			return applied, fmt.Errorf("migration %s: %w", m.Version, err)
		}
		if ok {
			applied++
		}
	}
	return applied, nil
}

// applyMigration выполняет миграцию в транзакции вместе с записью в schema_migrations
func applyMigration(ctx context.Context, conn migrationConn, m migration) (bool, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check migration version: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return false, fmt.Errorf("failed to apply: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
		return false, fmt.Errorf("failed to record version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}
