package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/domain/accounts"
	"github.com/gatherly/server/internal/metrics"
	"github.com/rs/zerolog"
)

const (
	grantPassword = "password"
	grantRefresh  = "refresh_token"
)

// TokenHandler implements the password and refresh_token grants of the token
// endpoint. Clients authenticate with HTTP Basic; resource owners with
// username/password form fields.
type TokenHandler struct {
	Accounts     *accounts.Service
	JWT          *auth.JWTManager
	Refresh      *auth.RefreshStore
	ClientID     string
	ClientSecret string
}

func NewTokenHandler(accountsSvc *accounts.Service, jwt *auth.JWTManager, refresh *auth.RefreshStore, clientID, clientSecret string) *TokenHandler {
	return &TokenHandler{
		Accounts:     accountsSvc,
		JWT:          jwt,
		Refresh:      refresh,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

type tokenError struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (h *TokenHandler) Token(w http.ResponseWriter, r *http.Request) {
	if !h.authenticateClient(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="gatherly"`)
		writeTokenError(w, http.StatusUnauthorized, "invalid_client", "client authentication failed")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeTokenError(w, http.StatusBadRequest, "invalid_request", "request body is not a valid form")
		return
	}

	// Opportunistic cleanup keeps the in-memory store from accumulating
	// expired refresh tokens between restarts.
	h.Refresh.Purge()

	switch r.PostFormValue("grant_type") {
	case grantPassword:
		h.passwordGrant(w, r)
	case grantRefresh:
		h.refreshGrant(w, r)
	default:
		writeTokenError(w, http.StatusBadRequest, "unsupported_grant_type", "grant_type must be password or refresh_token")
	}
}

func (h *TokenHandler) passwordGrant(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeTokenError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	account, err := h.Accounts.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			writeTokenError(w, http.StatusBadRequest, "invalid_grant", "bad credentials")
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("password grant failed")
		writeTokenError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	h.issueTokens(w, r, account, grantPassword)
}

func (h *TokenHandler) refreshGrant(w http.ResponseWriter, r *http.Request) {
	refreshToken := r.PostFormValue("refresh_token")
	if refreshToken == "" {
		writeTokenError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	accountID, err := h.Refresh.Redeem(refreshToken)
	if err != nil {
		writeTokenError(w, http.StatusBadRequest, "invalid_grant", "refresh token is invalid or expired")
		return
	}

	account, err := h.Accounts.GetByID(r.Context(), accountID)
	if err != nil {
		writeTokenError(w, http.StatusBadRequest, "invalid_grant", "refresh token is invalid or expired")
		return
	}

	h.issueTokens(w, r, account, grantRefresh)
}

func (h *TokenHandler) issueTokens(w http.ResponseWriter, r *http.Request, account *accounts.Account, grant string) {
	scope := "read write"
	if account.HasRole(accounts.RoleAdmin) {
		scope = "read write admin"
	}

	accessToken, err := h.JWT.Generate(account.ID, account.Email, account.RoleStrings(), scope)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("sign access token")
		writeTokenError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	refreshToken, err := h.Refresh.Issue(account.ID)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("issue refresh token")
		writeTokenError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	metrics.TokensIssued.WithLabelValues(grant).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(tokenResponse{
		AccessToken:  accessToken,
		TokenType:    "bearer",
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.JWT.Expiry().Seconds()),
		Scope:        scope,
	})
}

// authenticateClient checks the HTTP Basic client credentials in constant
// time so response timing cannot distinguish a wrong id from a wrong secret.
func (h *TokenHandler) authenticateClient(r *http.Request) bool {
	clientID, clientSecret, ok := r.BasicAuth()
	if !ok {
		return false
	}
	idMatch := subtle.ConstantTimeCompare([]byte(clientID), []byte(h.ClientID))
	secretMatch := subtle.ConstantTimeCompare([]byte(clientSecret), []byte(h.ClientSecret))
	return idMatch&secretMatch == 1
}

func writeTokenError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(tokenError{Error: code, Description: description})
}
