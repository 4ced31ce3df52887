package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"fjacquet/txn-categorizer/internal/logging"
	"fjacquet/txn-categorizer/internal/models"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteLedger keeps the master ledger in a SQLite database. A save replaces
// the whole table inside one transaction.
type SQLiteLedger struct {
	db     *sql.DB
	path   string
	logger logging.Logger
}

// OpenSQLiteLedger opens (creating if needed) the database at path and
// applies pending migrations.
func OpenSQLiteLedger(ctx context.Context, path string, logger logging.Logger) (*SQLiteLedger, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if err := RunMigrations(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open ledger database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping ledger database: %w", err)
	}

	return &SQLiteLedger{
		db:   db,
		path: path,
		logger: logger.WithFields(
			logging.Field{Key: logging.FieldFile, Value: path},
			logging.Field{Key: logging.FieldBackend, Value: "sqlite"}),
	}, nil
}

// RunMigrations brings the schema at dbPath up to date on a dedicated
// connection.
func RunMigrations(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// LoadLedger implements LedgerRepository.
func (s *SQLiteLedger) LoadLedger(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, description, amount, account, category FROM transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("store: query ledger: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var r ledgerRow
		if err := rows.Scan(&r.Date, &r.Description, &r.Amount, &r.Account, &r.Category); err != nil {
			return nil, fmt.Errorf("store: scan ledger row: %w", err)
		}
		tx, err := r.toTransaction()
		if err != nil {
			return nil, fmt.Errorf("store: ledger row %d: %w", len(txns)+1, err)
		}
		txns = append(txns, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate ledger: %w", err)
	}

	s.logger.Info("Loaded ledger", logging.Field{Key: logging.FieldCount, Value: len(txns)})
	return txns, nil
}

// SaveLedger implements LedgerRepository. Either every row is replaced or,
// on any error, the previous content stays.
func (s *SQLiteLedger) SaveLedger(ctx context.Context, txns []models.Transaction) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin ledger transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("store: clear ledger: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions
		(identity_key, position, date, description, amount, account, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txns {
		r := toLedgerRow(t)
		if _, err = stmt.ExecContext(ctx, t.IdentityKey(), i, r.Date, r.Description, r.Amount, r.Account, r.Category); err != nil {
			return fmt.Errorf("store: insert ledger row %d: %w", i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("store: commit ledger: %w", err)
	}
	s.logger.Info("Saved ledger", logging.Field{Key: logging.FieldCount, Value: len(txns)})
	return nil
}

// Close implements LedgerRepository.
func (s *SQLiteLedger) Close() error {
	return s.db.Close()
}
