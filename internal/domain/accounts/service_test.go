package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubAccountRepo struct {
	byEmail map[string]*Account
	byID    map[string]*Account
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{
		byEmail: map[string]*Account{},
		byID:    map[string]*Account{},
	}
}

func (s *stubAccountRepo) Create(_ context.Context, account *Account) (*Account, error) {
	s.byEmail[account.Email] = account
	s.byID[account.ID] = account
	return account, nil
}

func (s *stubAccountRepo) GetByID(_ context.Context, id string) (*Account, error) {
	if account, ok := s.byID[id]; ok {
		return account, nil
	}
	return nil, ErrNotFound
}

func (s *stubAccountRepo) GetByEmail(_ context.Context, email string) (*Account, error) {
	if account, ok := s.byEmail[email]; ok {
		return account, nil
	}
	return nil, ErrNotFound
}

func TestRegisterHashesPassword(t *testing.T) {
	service := NewService(newStubAccountRepo())

	account, err := service.Register(context.Background(), "user@example.com", "pass", []Role{RoleUser})

	require.NoError(t, err)
	require.NotEmpty(t, account.ID)
	require.Equal(t, "user@example.com", account.Email)
	require.NotEqual(t, "pass", account.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("pass")))
}

func TestRegisterNormalizesEmail(t *testing.T) {
	service := NewService(newStubAccountRepo())

	account, err := service.Register(context.Background(), "  User@Example.COM ", "pass", []Role{RoleUser})

	require.NoError(t, err)
	require.Equal(t, "user@example.com", account.Email)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service := NewService(newStubAccountRepo())

	_, err := service.Register(context.Background(), "user@example.com", "pass", []Role{RoleUser})
	require.NoError(t, err)

	_, err = service.Register(context.Background(), "user@example.com", "other", []Role{RoleAdmin})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	service := NewService(newStubAccountRepo())

	_, err := service.Register(context.Background(), "user@example.com", "pass", []Role{Role("MANAGER")})

	require.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	service := NewService(newStubAccountRepo())

	_, err := service.Register(context.Background(), "user@example.com", "pass", []Role{RoleUser})
	require.NoError(t, err)

	account, err := service.Authenticate(context.Background(), "user@example.com", "pass")
	require.NoError(t, err)
	require.Equal(t, "user@example.com", account.Email)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	service := NewService(newStubAccountRepo())

	_, err := service.Register(context.Background(), "user@example.com", "pass", []Role{RoleUser})
	require.NoError(t, err)

	_, err = service.Authenticate(context.Background(), "user@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	service := NewService(newStubAccountRepo())

	_, err := service.Authenticate(context.Background(), "missing@example.com", "pass")

	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHasRole(t *testing.T) {
	account := &Account{Roles: []Role{RoleUser}}

	require.True(t, account.HasRole(RoleUser))
	require.False(t, account.HasRole(RoleAdmin))

	var nilAccount *Account
	require.False(t, nilAccount.HasRole(RoleUser))
}
