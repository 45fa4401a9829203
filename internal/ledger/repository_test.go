package ledger_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"pocketledger/internal/core"
	"pocketledger/internal/kv"
	"pocketledger/internal/kv/memory"
	"pocketledger/internal/ledger"
	"pocketledger/internal/storage"
)

const (
	ada = "ada@example.com"
	bob = "bob@example.com"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newRepo(t *testing.T, store kv.Store) *ledger.Repository {
	t.Helper()
	return ledger.NewRepository(store, kv.NewWriter(), ledger.Options{
		Now: func() time.Time { return fixedNow },
	})
}

func titles(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.Title
	}
	return out
}

func TestAddAssignsIDAndDefaults(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, memory.New())

	tx, err := repo.Add(ctx, ada, core.TransactionInput{Title: "  Coffee ", Amount: "-3,50"})
	require.NoError(t, err)

	id, err := uuid.Parse(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, ada, tx.UserID)
	assert.Equal(t, "Coffee", tx.Title)
	assert.Equal(t, "-3.5", tx.Amount.String())
	assert.Equal(t, core.Other, tx.Category)
	assert.True(t, tx.Date.Equal(fixedNow), "zero date defaults to now")
	assert.True(t, tx.IsExpense())
}

func TestAddKeepsGivenDateAndCategory(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, memory.New())
	when := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	tx, err := repo.Add(ctx, ada, core.TransactionInput{
		Title: "Train", Amount: "-12.40", Category: core.Transport, Date: when,
	})
	require.NoError(t, err)
	assert.Equal(t, core.Transport, tx.Category)
	assert.True(t, tx.Date.Equal(when))
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name   string
		input  core.TransactionInput
		fields []string
	}{
		{"empty title", core.TransactionInput{Title: "  ", Amount: "10"}, []string{"title"}},
		{"empty amount", core.TransactionInput{Title: "Lunch", Amount: ""}, []string{"amount"}},
		{"garbage amount", core.TransactionInput{Title: "Lunch", Amount: "12abc"}, []string{"amount"}},
		{"unknown category", core.TransactionInput{Title: "Lunch", Amount: "10", Category: "travel"}, []string{"category"}},
		{"everything wrong", core.TransactionInput{Amount: "x", Category: "nope"}, []string{"title", "amount", "category"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.New()
			repo := newRepo(t, store)

			_, err := repo.Add(ctx, ada, tt.input)

			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.True(t, verr.Has(f), "expected %s in %v", f, verr.Fields)
			}
			assert.Empty(t, store.Keys(), "nothing written on validation failure")
		})
	}
}

func TestAddRequiresUser(t *testing.T) {
	repo := newRepo(t, memory.New())
	_, err := repo.Add(context.Background(), "", core.TransactionInput{Title: "x", Amount: "1"})
	assert.ErrorIs(t, err, core.ErrNotSignedIn)
}

func TestListIsScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, memory.New())

	for _, in := range []struct{ user, title string }{
		{ada, "Salary"}, {bob, "Rent"}, {ada, "Groceries"}, {ada, "Bus"}, {bob, "Gym"},
	} {
		_, err := repo.Add(ctx, in.user, core.TransactionInput{Title: in.title, Amount: "1"})
		require.NoError(t, err)
	}

	adaTxs, err := repo.List(ctx, ada)
	require.NoError(t, err)
	assert.Equal(t, []string{"Salary", "Groceries", "Bus"}, titles(adaTxs))

	bobTxs, err := repo.List(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rent", "Gym"}, titles(bobTxs))

	none, err := repo.List(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAddThenRemove(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, memory.New())

	keep, err := repo.Add(ctx, ada, core.TransactionInput{Title: "Salary", Amount: "5000", Category: core.Other})
	require.NoError(t, err)
	drop, err := repo.Add(ctx, ada, core.TransactionInput{Title: "Groceries", Amount: "-120", Category: core.Food})
	require.NoError(t, err)

	removed, err := repo.Remove(ctx, ada, drop.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	txs, err := repo.List(ctx, ada)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, keep.ID, txs[0].ID)

	removed, err = repo.Remove(ctx, ada, drop.ID)
	require.NoError(t, err)
	assert.False(t, removed, "second remove is a no-op")
}

func TestRemoveIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := newRepo(t, store)

	tx, err := repo.Add(ctx, ada, core.TransactionInput{Title: "Salary", Amount: "5000"})
	require.NoError(t, err)
	before, err := store.Get(ctx, kv.KeyTransactions)
	require.NoError(t, err)

	removed, err := repo.Remove(ctx, bob, tx.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	after, err := store.Get(ctx, kv.KeyTransactions)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRemoveOnEmptyLedger(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := newRepo(t, store)

	removed, err := repo.Remove(ctx, ada, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Empty(t, store.Keys())
}

func TestListCorruptBlob(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, kv.KeyTransactions, []byte(`{"not":"an array"}`)))

	_, err := newRepo(t, store).List(ctx, ada)

	var serr *core.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, kv.KeyTransactions, serr.Key)
}

func TestConcurrentAddsKeepEveryID(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := newRepo(t, store)

	const n = 20
	ids := make([]string, n)
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			tx, err := repo.Add(ctx, ada, core.TransactionInput{
				Title:  fmt.Sprintf("tx-%d", i),
				Amount: "1",
			})
			ids[i] = tx.ID
			return err
		})
	}
	require.NoError(t, g.Wait())

	txs, err := repo.List(ctx, ada)
	require.NoError(t, err)
	got := make([]string, len(txs))
	for i, tx := range txs {
		got[i] = tx.ID
	}
	assert.ElementsMatch(t, ids, got)
}

func TestRepositoryOnSQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	store, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	repo := newRepo(t, store)

	_, err = repo.Add(ctx, ada, core.TransactionInput{Title: "Salary", Amount: "5000.00"})
	require.NoError(t, err)
	_, err = repo.Add(ctx, ada, core.TransactionInput{Title: "Groceries", Amount: "-120", Category: core.Food})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	txs, err := newRepo(t, reopened).List(ctx, ada)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, []string{"Salary", "Groceries"}, titles(txs))
	assert.Equal(t, "5000", txs[0].Amount.String())
	assert.Equal(t, core.Food, txs[1].Category)
}

// slowReads delays every plain Get, widening any read-then-write window
type slowReads struct {
	*storage.SQLiteStore
}

func (s slowReads) Get(ctx context.Context, key string) ([]byte, error) {
	time.Sleep(20 * time.Millisecond)
	return s.SQLiteStore.Get(ctx, key)
}

func TestAddFromTwoProcessesKeepsEveryTransaction(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	// Each handle gets its own Writer, like two CLI invocations on one file
	var repos []*ledger.Repository
	for range 2 {
		store, err := storage.NewSQLiteStore(dbPath)
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		repos = append(repos, newRepo(t, slowReads{store}))
	}

	const perRepo = 4
	g, gctx := errgroup.WithContext(ctx)
	ids := make([][]string, len(repos))
	for i, repo := range repos {
		g.Go(func() error {
			for n := range perRepo {
				tx, err := repo.Add(gctx, ada, core.TransactionInput{
					Title:  fmt.Sprintf("handle %d item %d", i, n),
					Amount: "-1",
				})
				if err != nil {
					return err
				}
				ids[i] = append(ids[i], tx.ID)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var want []string
	for _, batch := range ids {
		want = append(want, batch...)
	}
	txs, err := repos[0].List(ctx, ada)
	require.NoError(t, err)
	got := make([]string, len(txs))
	for i, tx := range txs {
		got[i] = tx.ID
	}
	assert.ElementsMatch(t, want, got, "no transaction may be lost")
}
