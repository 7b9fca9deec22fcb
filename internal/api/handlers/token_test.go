package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/domain/accounts"
	"github.com/stretchr/testify/require"
)

type stubAccountRepo struct {
	byID    map[string]*accounts.Account
	byEmail map[string]*accounts.Account
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{
		byID:    map[string]*accounts.Account{},
		byEmail: map[string]*accounts.Account{},
	}
}

func (s *stubAccountRepo) Create(_ context.Context, account *accounts.Account) (*accounts.Account, error) {
	clone := *account
	s.byID[account.ID] = &clone
	s.byEmail[account.Email] = &clone
	return &clone, nil
}

func (s *stubAccountRepo) GetByID(_ context.Context, id string) (*accounts.Account, error) {
	if account, ok := s.byID[id]; ok {
		clone := *account
		return &clone, nil
	}
	return nil, accounts.ErrNotFound
}

func (s *stubAccountRepo) GetByEmail(_ context.Context, email string) (*accounts.Account, error) {
	if account, ok := s.byEmail[email]; ok {
		clone := *account
		return &clone, nil
	}
	return nil, accounts.ErrNotFound
}

const (
	testClientID     = "myApp"
	testClientSecret = "pass"
	testUserEmail    = "user@example.com"
	testUserPassword = "s3cret-pw"
)

func newTokenFixture(t *testing.T) (*TokenHandler, *accounts.Account) {
	t.Helper()

	repo := newStubAccountRepo()
	service := accounts.NewService(repo)

	account, err := service.Register(context.Background(), testUserEmail, testUserPassword,
		[]accounts.Role{accounts.RoleUser})
	require.NoError(t, err)

	handler := NewTokenHandler(
		service,
		auth.NewJWTManager("test-secret", 10*time.Minute, "gatherly"),
		auth.NewRefreshStore(time.Hour),
		testClientID,
		testClientSecret,
	)
	return handler, account
}

func postToken(t *testing.T, handler *TokenHandler, form url.Values, clientID, clientSecret string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if clientID != "" {
		req.SetBasicAuth(clientID, clientSecret)
	}

	rec := httptest.NewRecorder()
	handler.Token(rec, req)
	return rec
}

func decodeToken(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPasswordGrantIssuesTokens(t *testing.T) {
	handler, account := newTokenFixture(t)

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", testUserEmail)
	form.Set("password", testUserPassword)

	rec := postToken(t, handler, form, testClientID, testClientSecret)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeToken(t, rec)
	require.NotEmpty(t, body["access_token"])
	require.NotEmpty(t, body["refresh_token"])
	require.Equal(t, "bearer", body["token_type"])
	require.Equal(t, float64(600), body["expires_in"])
	require.Equal(t, "read write", body["scope"])

	claims, err := handler.JWT.Validate(body["access_token"].(string))
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.Subject)
	require.Equal(t, testUserEmail, claims.Email)
}

func TestPasswordGrantWidensScopeForAdmins(t *testing.T) {
	handler, _ := newTokenFixture(t)

	_, err := handler.Accounts.Register(context.Background(), "admin@example.com", "admin-pw",
		[]accounts.Role{accounts.RoleAdmin, accounts.RoleUser})
	require.NoError(t, err)

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", "admin@example.com")
	form.Set("password", "admin-pw")

	rec := postToken(t, handler, form, testClientID, testClientSecret)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeToken(t, rec)
	require.Equal(t, "read write admin", body["scope"])

	claims, err := handler.JWT.Validate(body["access_token"].(string))
	require.NoError(t, err)
	require.Equal(t, "read write admin", claims.Scope)
}

func TestPasswordGrantRejectsBadCredentials(t *testing.T) {
	handler, _ := newTokenFixture(t)

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", testUserEmail)
	form.Set("password", "wrong")

	rec := postToken(t, handler, form, testClientID, testClientSecret)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_grant", decodeToken(t, rec)["error"])
}

func TestTokenEndpointRequiresClientCredentials(t *testing.T) {
	handler, _ := newTokenFixture(t)

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", testUserEmail)
	form.Set("password", testUserPassword)

	noAuth := postToken(t, handler, form, "", "")
	require.Equal(t, http.StatusUnauthorized, noAuth.Code)
	require.Contains(t, noAuth.Header().Get("WWW-Authenticate"), "Basic")

	wrongSecret := postToken(t, handler, form, testClientID, "nope")
	require.Equal(t, http.StatusUnauthorized, wrongSecret.Code)
	require.Equal(t, "invalid_client", decodeToken(t, wrongSecret)["error"])
}

func TestRefreshGrantRotatesTokens(t *testing.T) {
	handler, account := newTokenFixture(t)

	passwordForm := url.Values{}
	passwordForm.Set("grant_type", "password")
	passwordForm.Set("username", testUserEmail)
	passwordForm.Set("password", testUserPassword)

	first := postToken(t, handler, passwordForm, testClientID, testClientSecret)
	require.Equal(t, http.StatusOK, first.Code)
	refreshToken := decodeToken(t, first)["refresh_token"].(string)

	refreshForm := url.Values{}
	refreshForm.Set("grant_type", "refresh_token")
	refreshForm.Set("refresh_token", refreshToken)

	second := postToken(t, handler, refreshForm, testClientID, testClientSecret)
	require.Equal(t, http.StatusOK, second.Code)

	body := decodeToken(t, second)
	require.NotEmpty(t, body["access_token"])
	require.NotEqual(t, refreshToken, body["refresh_token"], "refresh grant mints a new refresh token")

	claims, err := handler.JWT.Validate(body["access_token"].(string))
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.Subject)

	// The consumed token cannot be redeemed again.
	replay := postToken(t, handler, refreshForm, testClientID, testClientSecret)
	require.Equal(t, http.StatusBadRequest, replay.Code)
	require.Equal(t, "invalid_grant", decodeToken(t, replay)["error"])
}

func TestUnsupportedGrantType(t *testing.T) {
	handler, _ := newTokenFixture(t)

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	rec := postToken(t, handler, form, testClientID, testClientSecret)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "unsupported_grant_type", decodeToken(t, rec)["error"])
}
