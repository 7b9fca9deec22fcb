package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gatherly/server/internal/domain/ids"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrEmailTaken         = errors.New("email is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// BcryptCost is the cost factor for bcrypt password hashing.
const BcryptCost = 12

// Service handles account registration and credential verification.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register hashes the password and stores a new account. The caller supplies
// the plaintext password exactly once; only the hash survives.
func (s *Service) Register(ctx context.Context, email, password string, roles []Role) (*Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("register account: email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("register account: password is required")
	}
	for _, role := range roles {
		if !role.Valid() {
			return nil, fmt.Errorf("register account: unknown role %q", role)
		}
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint account id: %w", err)
	}

	account := &Account{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        roles,
	}
	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return created, nil
}

// Authenticate verifies email/password credentials and returns the account.
// Lookup failure and hash mismatch collapse into ErrInvalidCredentials so the
// response does not reveal which part was wrong.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// GetByID fetches an account by identifier.
func (s *Service) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}
