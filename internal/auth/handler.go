package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/szabala94/KalamburyPro-master/internal"
)

// AccountStore is the slice of the persistence collaborator login needs.
type AccountStore interface {
	GetUser(ctx context.Context, username string) (internal.User, error)
	CreateUser(ctx context.Context, username, passwordHash string) error
}

// Handler exposes the login endpoint. A first-time login creates the
// account; a repeat login must present the same password.
type Handler struct {
	users  AccountStore
	tokens *JWTManager
}

func NewHandler(users AccountStore, tokens *JWTManager) *Handler {
	return &Handler{
		users:  users,
		tokens: tokens,
	}
}

// Login exchanges credentials for a signed token. The response body is the
// bare token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds internal.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "malformed credentials", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	user, err := h.users.GetUser(ctx, creds.Username)
	switch {
	case err == nil:
		ok, cerr := CheckPassword(creds.Password, user.PasswordHash)
		if cerr != nil || !ok {
			log.Info().Str("username", creds.Username).Msg("login rejected")
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
	case errors.Is(err, internal.ErrNotFound):
		log.Info().Str("username", creds.Username).Msg("creating new player account")
		hash, herr := HashPassword(creds.Password)
		if herr != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if cerr := h.users.CreateUser(ctx, creds.Username, hash); cerr != nil {
			log.Error().Err(cerr).Str("username", creds.Username).Msg("account creation failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	default:
		log.Error().Err(err).Str("username", creds.Username).Msg("login lookup failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.Issue(creds.Username)
	if err != nil {
		log.Error().Err(err).Msg("token signing failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte(token)); err != nil {
		log.Warn().Err(err).Msg("writing login response failed")
	}
}
