package handlers

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/securebank/secure-bank-be/internal/auth"
	"github.com/securebank/secure-bank-be/internal/config"
	"github.com/securebank/secure-bank-be/internal/http/respond"
	"github.com/securebank/secure-bank-be/internal/models"
	"github.com/securebank/secure-bank-be/internal/models/dto"
	"github.com/securebank/secure-bank-be/internal/storage"
)

const (
	accountNumberPrefix  = "FR"
	accountNumberSuffix  = 9
	accountNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Generated numbers can collide; signup regenerates and retries this
	// many times before giving up.
	signupAttempts = 3
)

// AuthHandler owns the signup and signin endpoints.
type AuthHandler struct {
	store  storage.Store
	tokens *auth.TokenManager
	cfg    *config.Config
	logger *slog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.Store, tokens *auth.TokenManager, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, cfg: cfg, logger: logger}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signup", h.handleSignup)
	mux.HandleFunc("POST /api/auth/signin", h.handleSignin)
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.FullName) == "" {
		respond.Error(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	user := models.User{
		Email:        req.Email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: passwordHash,
	}

	var created models.User
	for attempt := 0; ; attempt++ {
		account := models.Account{
			AccountNumber: generateAccountNumber(),
			Balance:       h.cfg.OpeningBalance,
			AccountType:   h.cfg.AccountType,
		}
		created, _, err = h.store.CreateUserWithAccount(r.Context(), user, account)
		if errors.Is(err, storage.ErrAccountNumberTaken) && attempt < signupAttempts-1 {
			continue
		}
		break
	}
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEmailTaken):
			respond.Error(w, http.StatusBadRequest, "Email already exists")
		default:
			h.logger.Error("create user", "error", err)
			respond.Error(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	token, err := h.tokens.Generate(created)
	if err != nil {
		h.logger.Error("generate token", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	respond.JSON(w, http.StatusOK, dto.AuthResponse{Token: token, User: summarize(created)})
}

func (h *AuthHandler) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req dto.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "Missing email or password")
		return
	}

	// Unknown email and wrong password produce the same response so callers
	// cannot enumerate accounts.
	user, err := h.store.FindUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("find user", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		h.logger.Error("generate token", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Login failed")
		return
	}

	respond.JSON(w, http.StatusOK, dto.AuthResponse{Token: token, User: summarize(user)})
}

func summarize(user models.User) dto.UserSummary {
	return dto.UserSummary{ID: user.ID, Email: user.Email, FullName: user.FullName}
}

// generateAccountNumber returns the fixed country prefix followed by a random
// uppercase alphanumeric suffix. Uniqueness is enforced by the store, not
// here.
func generateAccountNumber() string {
	buf := make([]byte, accountNumberSuffix)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	for i, b := range buf {
		buf[i] = accountNumberCharset[int(b)%len(accountNumberCharset)]
	}
	return accountNumberPrefix + string(buf)
}
