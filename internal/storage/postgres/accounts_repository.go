package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherly/server/internal/domain/accounts"
	"github.com/gatherly/server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ accounts.Repository = (*AccountRepository)(nil)

type AccountRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *AccountRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

// withTx mirrors the event repository: inserts and their read-back run in one
// transaction.
func (r *AccountRepository) withTx(ctx context.Context, fn func(*AccountRepository) error) error {
	root := &Repository{pool: r.pool}
	return root.WithTx(ctx, func(ctx context.Context, scoped storage.Repository) error {
		return fn(scoped.Accounts().(*AccountRepository))
	})
}

func (r *AccountRepository) Create(ctx context.Context, account *accounts.Account) (*accounts.Account, error) {
	if r.tx == nil {
		var created *accounts.Account
		if err := r.withTx(ctx, func(txRepo *AccountRepository) error {
			var err error
			created, err = txRepo.Create(ctx, account)
			return err
		}); err != nil {
			return nil, err
		}
		return created, nil
	}

	roles := make([]string, 0, len(account.Roles))
	for _, role := range account.Roles {
		roles = append(roles, string(role))
	}

	_, err := r.queryer().Exec(ctx, `
INSERT INTO accounts (id, email, password_hash, roles)
VALUES ($1, $2, $3, $4)
`, account.ID, account.Email, account.PasswordHash, roles)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation; the only unique constraint besides
		// the key is the email index.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, accounts.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return r.GetByID(ctx, account.ID)
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*accounts.Account, error) {
	return r.getBy(ctx, "id", id)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	return r.getBy(ctx, "email", email)
}

func (r *AccountRepository) getBy(ctx context.Context, column, value string) (*accounts.Account, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT id, email, password_hash, roles, created_at
  FROM accounts
 WHERE `+column+` = $1
`, value)

	var (
		account   accounts.Account
		roles     []string
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&account.ID, &account.Email, &account.PasswordHash, &roles, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, accounts.ErrNotFound
		}
		return nil, fmt.Errorf("get account by %s: %w", column, err)
	}

	account.CreatedAt = createdAt.Time
	account.Roles = make([]accounts.Role, 0, len(roles))
	for _, role := range roles {
		account.Roles = append(account.Roles, accounts.Role(role))
	}
	return &account, nil
}
