package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// one connection, so every statement sees the same in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func keys(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n))
	return n
}

func put(ctx context.Context, tx DBTX, k string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO kv(k, v) VALUES (?, 'x')`, k)
	return err
}

func TestWithTx_Commit(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	err := WithTx(ctx, db, func(tx DBTX) error {
		if err := put(ctx, tx, "a"); err != nil {
			return err
		}
		return put(ctx, tx, "b")
	})
	require.NoError(t, err)
	require.Equal(t, 2, keys(t, db))
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithTx(ctx, db, func(tx DBTX) error {
		require.NoError(t, put(ctx, tx, "a"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, keys(t, db))
}

func TestWithTx_RollbackOnStatementError(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	err := WithTx(ctx, db, func(tx DBTX) error {
		require.NoError(t, put(ctx, tx, "a"))
		return put(ctx, tx, "a")
	})
	require.Error(t, err)
	require.Equal(t, 0, keys(t, db))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	require.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(ctx, db, func(tx DBTX) error {
			require.NoError(t, put(ctx, tx, "a"))
			panic("kaput")
		})
	})
	require.Equal(t, 0, keys(t, db))
}

func TestWithTx_BeginError(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, func(DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
}
