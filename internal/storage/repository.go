// Package storage defines the aggregate persistence boundary. Handlers and
// services depend on the domain repository interfaces; this package groups
// them so the serve command wires one store.
package storage

import (
	"context"

	"github.com/gatherly/server/internal/domain/accounts"
	"github.com/gatherly/server/internal/domain/events"
)

// Repository groups data access by domain.
type Repository interface {
	Events() events.Repository
	Accounts() accounts.Repository

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// WithTx runs fn inside one transaction. The Repository passed to fn
	// routes all access through that transaction; returning an error rolls
	// it back.
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
