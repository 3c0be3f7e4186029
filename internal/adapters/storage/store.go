package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// Drivers soportados.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// timeLayout tiene ancho fijo para que el orden lexicográfico sea el cronológico.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Config describe la conexión.
type Config struct {
	Driver string // sqlite | postgres
	DSN    string // ruta del fichero SQLite o URL de Postgres

	// SkipSchema no aplica el schema al abrir (tablas gestionadas fuera, p.ej. Supabase).
	SkipSchema bool
}

// SQLStore implementa ports.TradeStore y ports.SnapshotStore sobre database/sql.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open abre la base de datos y aplica el schema del dialecto.
func Open(ctx context.Context, cfg Config) (*SQLStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("storage.Open: %w: driver %q", domain.ErrInvalidInput, driver)
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage.Open: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1) // SQLite es single-writer
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	s := &SQLStore{db: db, driver: driver}
	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.Open: %w", err)
	}
	if !cfg.SkipSchema {
		if err := s.applySchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage.Open: %w", err)
		}
	}

	slog.Debug("storage ready", "driver", driver, "schema", !cfg.SkipSchema)
	return s, nil
}

// Driver devuelve el dialecto en uso.
func (s *SQLStore) Driver() string { return s.driver }

// Ping comprueba la conexión (lo usa /healthz).
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("storage.Ping: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) applySchema(ctx context.Context) error {
	schema, migrations := sqliteSchema, sqliteMigrations
	if s.driver == DriverPostgres {
		schema, migrations = postgresSchema, postgresMigrations
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	// Las migraciones fallan si la columna ya existe, lo cual está bien.
	for _, stmt := range migrations {
		s.db.ExecContext(ctx, stmt)
	}
	return nil
}

// rebind traduce los placeholders "?" a "$n" en Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// classify traduce los errores del driver a errores de dominio.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isTableMissing(err) {
		return fmt.Errorf("%w: %v", domain.ErrTableMissing, err)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", domain.ErrDuplicateBet, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isTableMissing(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "42P01"
	}
	return strings.Contains(err.Error(), "no such table")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.UTC()
}
