// Package ledger persists income and expense records in per-user collections.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// ErrNotFound is returned when a record does not exist in a collection.
var ErrNotFound = errors.New("transaction not found")

// Store is a SQLite-backed document store for transactions.
type Store struct {
	db *sql.DB
}

// Open migrates and opens the database at path.
func Open(path string) (*Store, error) {
	if err := Migrate(path); err != nil {
		return nil, err
	}
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

const insertSQL = `INSERT INTO transactions
	(id, collection, name, amount, category, timestamp, type, description, payment_method, payment_id, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectColumns = `id, name, amount, category, timestamp, type, description, payment_method, payment_id, status`

// WriteBatch inserts txns into collection in one transaction: either every
// record is stored or none is. Records without an ID get a new UUID. The
// stored IDs are returned in input order.
func (s *Store) WriteBatch(ctx context.Context, collection string, txns []model.Transaction) ([]string, error) {
	ids := make([]string, len(txns))
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertSQL)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for i, t := range txns {
			if t.ID == "" {
				t.ID = uuid.NewString()
			}
			if _, err := stmt.ExecContext(ctx, insertArgs(collection, t)...); err != nil {
				return fmt.Errorf("inserting row %d (%s): %w", i+1, t.Name, err)
			}
			ids[i] = t.ID
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("writing batch to %s: %w", collection, err)
	}
	return ids, nil
}

// Add stores a single record and returns its ID.
func (s *Store) Add(ctx context.Context, collection string, t model.Transaction) (string, error) {
	ids, err := s.WriteBatch(ctx, collection, []model.Transaction{t})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// List returns every record in collection, newest timestamp first.
func (s *Store) List(ctx context.Context, collection string) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE collection = ? ORDER BY timestamp DESC, created_at DESC, id`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", collection, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get returns one record by ID.
func (s *Store) Get(ctx context.Context, collection, id string) (model.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE collection = ? AND id = ?`,
		collection, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}
	return t, nil
}

// Delete removes one record from collection.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func insertArgs(collection string, t model.Transaction) []any {
	return []any{
		t.ID,
		collection,
		t.Name,
		t.Amount.String(),
		t.Category,
		t.Timestamp,
		string(t.Type),
		nullString(t.Description),
		nullString(t.PaymentMethod),
		nullString(t.PaymentID),
		string(t.Status),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(sc scanner) (model.Transaction, error) {
	var (
		t                     model.Transaction
		amount, kind, status  string
		desc, method, payment sql.NullString
	)
	if err := sc.Scan(&t.ID, &t.Name, &amount, &t.Category, &t.Timestamp, &kind, &desc, &method, &payment, &status); err != nil {
		return model.Transaction{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	t.Amount = d
	t.Type = model.Kind(kind)
	t.Status = model.Status(status)
	t.Description = fromNull(desc)
	t.PaymentMethod = fromNull(method)
	t.PaymentID = fromNull(payment)
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
