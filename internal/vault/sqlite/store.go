// Package sqlite provides a SQLite-backed vault record store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/louisbranch/commercialpaper/internal/ledger"
	apperrors "github.com/louisbranch/commercialpaper/internal/platform/errors"
	sqlitemigrate "github.com/louisbranch/commercialpaper/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/commercialpaper/internal/vault"
	"github.com/louisbranch/commercialpaper/internal/vault/filter"
	"github.com/louisbranch/commercialpaper/internal/vault/sqlite/migrations"
)

// Store persists vault records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite vault store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ApplyRecords marks the consumed references as spent and files the
// produced records, all inside one transaction. A reference that does
// not exist, or that an earlier proposal already spent, rolls the whole
// application back.
func (s *Store) ApplyRecords(ctx context.Context, consumed []ledger.StateRef, produced []vault.Record, by ledger.TxHash) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin apply transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := toMillis(time.Now())
	for _, ref := range consumed {
		if err := consumeRecord(ctx, tx, ref, by, now); err != nil {
			return err
		}
	}
	for _, record := range produced {
		if err := insertRecord(ctx, tx, record, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit apply transaction: %w", err)
	}
	return nil
}

func consumeRecord(ctx context.Context, tx *sql.Tx, ref ledger.StateRef, by ledger.TxHash, nowMillis int64) error {
	result, err := tx.ExecContext(
		ctx,
		`UPDATE ledger_records
		    SET consumed_by = ?, consumed_at = ?
		  WHERE tx_hash = ? AND output_index = ? AND consumed_by IS NULL`,
		by.String(),
		nowMillis,
		ref.TxHash.String(),
		ref.Index,
	)
	if err != nil {
		return fmt.Errorf("consume record %s: %w", ref, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume record %s: %w", ref, err)
	}
	if affected == 1 {
		return nil
	}

	// Distinguish a missing record from one another proposal spent.
	var consumedBy sql.NullString
	row := tx.QueryRowContext(
		ctx,
		`SELECT consumed_by FROM ledger_records WHERE tx_hash = ? AND output_index = ?`,
		ref.TxHash.String(),
		ref.Index,
	)
	if err := row.Scan(&consumedBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.WithMetadata(
				apperrors.CodeNotFound,
				fmt.Sprintf("record %s is not on the books", ref),
				map[string]string{"Ref": ref.String()},
			)
		}
		return fmt.Errorf("consume record %s: %w", ref, err)
	}
	return apperrors.WithMetadata(
		apperrors.CodeRecordConsumed,
		fmt.Sprintf("record %s was already consumed by %s", ref, consumedBy.String),
		map[string]string{"Ref": ref.String()},
	)
}

func insertRecord(ctx context.Context, tx *sql.Tx, record vault.Record, nowMillis int64) error {
	recordedAt := toMillis(record.RecordedAt)
	if record.RecordedAt.IsZero() {
		recordedAt = nowMillis
	}
	var maturesAt sql.NullString
	if record.MaturesAt != nil {
		maturesAt = sql.NullString{
			String: record.MaturesAt.UTC().Format(time.RFC3339Nano),
			Valid:  true,
		}
	}

	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO ledger_records (
		   tx_hash,
		   output_index,
		   contract,
		   owner_name,
		   owner_key,
		   currency,
		   quantity,
		   matures_at,
		   state_json,
		   recorded_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Ref.TxHash.String(),
		record.Ref.Index,
		record.Contract,
		record.Owner,
		string(record.OwnerKey),
		record.Currency,
		record.Quantity,
		maturesAt,
		string(record.StateJSON),
		recordedAt,
	)
	if err != nil {
		if isRecordUniqueViolation(err) {
			return apperrors.WithMetadata(
				apperrors.CodeProposalApplied,
				fmt.Sprintf("record %s is already on the books", record.Ref),
				map[string]string{"Hash": record.Ref.TxHash.String()},
			)
		}
		return fmt.Errorf("insert record %s: %w", record.Ref, err)
	}
	return nil
}

// QueryRecords lists unconsumed records matching the query, oldest
// first. The query filter is translated to SQL; an expression that does
// not parse fails with a filter-invalid error.
func (s *Store) QueryRecords(ctx context.Context, q vault.Query) ([]vault.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	cond, err := filter.ParseRecordFilter(q.Filter)
	if err != nil {
		return nil, apperrors.Wrap(
			apperrors.CodeFilterInvalid,
			fmt.Sprintf("filter %q is invalid", q.Filter),
			err,
		)
	}

	query := `SELECT tx_hash, output_index, contract, owner_name, owner_key,
	                 currency, quantity, matures_at, state_json, recorded_at
	            FROM ledger_records
	           WHERE consumed_by IS NULL`
	params := []any{}
	if cond.Clause != "" {
		query += " AND (" + cond.Clause + ")"
		params = append(params, cond.Params...)
	}
	query += " ORDER BY recorded_at ASC, tx_hash ASC, output_index ASC"
	limit := q.Limit
	if limit <= 0 {
		// SQLite treats a negative limit as unlimited.
		limit = -1
	}
	query += " LIMIT ?"
	params = append(params, limit)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []vault.Record
	for rows.Next() {
		var (
			record     vault.Record
			txHash     string
			ownerKey   string
			maturesAt  sql.NullString
			stateJSON  string
			recordedAt int64
		)
		if err := rows.Scan(
			&txHash,
			&record.Ref.Index,
			&record.Contract,
			&record.Owner,
			&ownerKey,
			&record.Currency,
			&record.Quantity,
			&maturesAt,
			&stateJSON,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("query records: %w", err)
		}
		hash, err := ledger.ParseTxHash(txHash)
		if err != nil {
			return nil, fmt.Errorf("query records: %w", err)
		}
		record.Ref.TxHash = hash
		record.OwnerKey = ledger.PublicKey(ownerKey)
		if maturesAt.Valid {
			maturity, err := time.Parse(time.RFC3339Nano, maturesAt.String)
			if err != nil {
				return nil, fmt.Errorf("query records: %w", err)
			}
			maturity = maturity.UTC()
			record.MaturesAt = &maturity
		}
		record.StateJSON = []byte(stateJSON)
		record.RecordedAt = fromMillis(recordedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return records, nil
}

func isRecordUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "ledger_records")
}

var _ vault.Store = (*Store)(nil)
