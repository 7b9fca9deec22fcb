package accounts

import "context"

// Repository is the persistence boundary for accounts. Implementations must
// enforce email uniqueness.
type Repository interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
}
