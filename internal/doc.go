// Package internal documents the gatherly server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, HAL rendering, and routing
// - domain: business logic and domain models (accounts, events, ids)
// - storage: database access and repositories (pgx + Postgres)
// - auth, config, metrics: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
