package postgres

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/gatherly/server/internal/domain/accounts"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

// stubTx satisfies pgx.Tx for the methods the repositories touch; anything
// else panics through the embedded nil interface.
type stubTx struct {
	pgx.Tx
	statements   []string
	rowsAffected int64
	committed    bool
	rolledBack   bool
}

func newStubTx() *stubTx {
	return &stubTx{rowsAffected: 1}
}

func (t *stubTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.statements = append(t.statements, sql)
	return pgconn.NewCommandTag(fmt.Sprintf("DONE %d", t.rowsAffected)), nil
}

func (t *stubTx) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	t.statements = append(t.statements, sql)
	return nil, pgx.ErrNoRows
}

func (t *stubTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	t.statements = append(t.statements, sql)
	return emptyRow{}
}

func (t *stubTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *stubTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

// emptyRow scans nothing and succeeds, leaving zero values in place.
type emptyRow struct{}

func (emptyRow) Scan(...any) error { return nil }

func (t *stubTx) hasStatement(fragment string) bool {
	for _, statement := range t.statements {
		if strings.Contains(statement, fragment) {
			return true
		}
	}
	return false
}

func TestWithTxReusesActiveTransaction(t *testing.T) {
	tx := newStubTx()
	repo := &Repository{tx: tx}

	called := false
	err := repo.WithTx(context.Background(), func(_ context.Context, scoped storage.Repository) error {
		called = true
		require.Same(t, repo, scoped)
		return nil
	})

	require.NoError(t, err)
	require.True(t, called)
	require.False(t, tx.committed, "a nested scope must not commit the owner's transaction")
	require.False(t, tx.rolledBack)
}

func TestTxScopedEventCreateRunsInsertAndReadBackOnTransaction(t *testing.T) {
	tx := newStubTx()
	repo := &Repository{tx: tx}

	event := &events.Event{
		ID:      "01J00000000000000000000EVT",
		Name:    "Meetup",
		Status:  events.StatusDraft,
		Manager: &accounts.Account{ID: "01J000000000000000000MGRAA"},
	}

	_, err := repo.Events().Create(context.Background(), event)
	require.NoError(t, err)

	require.True(t, tx.hasStatement("INSERT INTO events"))
	require.True(t, tx.hasStatement("FROM events"), "read-back must run on the same transaction")
	require.False(t, tx.committed, "the transaction owner commits, not the repository")
}

func TestTxScopedEventUpdateMissingRowIsNotFound(t *testing.T) {
	tx := newStubTx()
	tx.rowsAffected = 0
	repo := &Repository{tx: tx}

	_, err := repo.Events().Update(context.Background(), &events.Event{ID: "01J00000000000000000000EVT"})
	require.ErrorIs(t, err, events.ErrNotFound)
	require.True(t, tx.hasStatement("UPDATE events"))
}

func TestTxScopedAccountCreateRunsOnTransaction(t *testing.T) {
	tx := newStubTx()
	repo := &Repository{tx: tx}

	account := &accounts.Account{
		ID:    "01J000000000000000000MGRAA",
		Email: "manager@example.com",
		Roles: []accounts.Role{accounts.RoleUser},
	}

	_, err := repo.Accounts().Create(context.Background(), account)
	require.NoError(t, err)

	require.True(t, tx.hasStatement("INSERT INTO accounts"))
	require.True(t, tx.hasStatement("FROM accounts"))
	require.False(t, tx.committed)
}
