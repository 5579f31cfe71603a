package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

const (
	expenses = "transactions/alice/user_transactions"
	income   = "transactions/alice/user_income"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func txn(name, amount, ts string) model.Transaction {
	d, _ := decimal.NewFromString(amount)
	return model.Transaction{
		Name:      name,
		Amount:    d,
		Category:  "Rent",
		Timestamp: ts,
		Type:      model.KindExpense,
		Status:    model.StatusCompleted,
	}
}

func TestWriteBatch_AndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	desc := "January, office"
	first := txn("Office rent", "2000.00", "2024-01-01 09:00:00")
	first.Description = &desc
	second := txn("Parking", "15.5", "2024-02-01 00:00:00")

	ids, err := s.WriteBatch(ctx, expenses, []model.Transaction{first, second})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])

	got, err := s.List(ctx, expenses)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Parking", got[0].Name, "newest first")
	assert.Equal(t, ids[1], got[0].ID)
	assert.Nil(t, got[0].Description)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("15.5")))

	assert.Equal(t, "Office rent", got[1].Name)
	assert.Equal(t, "2000", got[1].Amount.String())
	assert.Equal(t, "January, office", model.Deref(got[1].Description))
	assert.Equal(t, model.KindExpense, got[1].Type)
	assert.Equal(t, model.StatusCompleted, got[1].Status)
}

func TestWriteBatch_Atomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	good := txn("ok", "1", "2024-01-01 00:00:00")
	bad := txn("bad", "1", "2024-01-01 00:00:00")
	bad.Status = "archived" // violates the status check constraint

	_, err := s.WriteBatch(ctx, expenses, []model.Transaction{good, bad})
	require.Error(t, err)

	got, err := s.List(ctx, expenses)
	require.NoError(t, err)
	assert.Empty(t, got, "no partial writes")
}

func TestWriteBatch_DuplicateIDRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := txn("a", "1", "2024-01-01 00:00:00")
	a.ID = "fixed"
	b := txn("b", "2", "2024-01-01 00:00:00")
	b.ID = "fixed"

	_, err := s.WriteBatch(ctx, expenses, []model.Transaction{a, b})
	require.Error(t, err)

	got, err := s.List(ctx, expenses)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCollectionsAreIsolated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, expenses, txn("rent", "1", "2024-01-01 00:00:00"))
	require.NoError(t, err)
	in := txn("sale", "2", "2024-01-01 00:00:00")
	in.Type = model.KindIncome
	in.Category = "Sales"
	_, err = s.Add(ctx, income, in)
	require.NoError(t, err)

	got, err := s.List(ctx, income)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sale", got[0].Name)

	got, err = s.List(ctx, "transactions/bob/user_income")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Add(ctx, expenses, txn("rent", "1", "2024-01-01 00:00:00"))
	require.NoError(t, err)

	got, err := s.Get(ctx, expenses, id)
	require.NoError(t, err)
	assert.Equal(t, "rent", got.Name)

	_, err = s.Get(ctx, income, id)
	assert.ErrorIs(t, err, ErrNotFound, "lookups are scoped to the collection")

	require.NoError(t, s.Delete(ctx, expenses, id))
	assert.ErrorIs(t, s.Delete(ctx, expenses, id), ErrNotFound)

	_, err = s.Get(ctx, expenses, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.db")
	require.NoError(t, Migrate(path))
	require.NoError(t, Migrate(path))

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
