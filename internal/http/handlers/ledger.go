package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/securebank/secure-bank-be/internal/http/respond"
	"github.com/securebank/secure-bank-be/internal/middleware"
	"github.com/securebank/secure-bank-be/internal/storage"
)

// recentTransactionLimit caps how many transactions a single listing returns.
const recentTransactionLimit = 10

// LedgerHandler serves the authenticated read-only endpoints: profile,
// accounts, and recent transactions. Every operation is scoped to the
// authenticated caller; no endpoint accepts a foreign user id.
type LedgerHandler struct {
	store  storage.Store
	logger *slog.Logger
}

// NewLedgerHandler constructs the handler.
func NewLedgerHandler(store storage.Store, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{store: store, logger: logger}
}

// Register attaches the protected routes to the mux, wrapped in the given
// authentication gate.
func (h *LedgerHandler) Register(mux *http.ServeMux, gate func(http.Handler) http.Handler) {
	mux.Handle("GET /api/user/profile", gate(http.HandlerFunc(h.handleProfile)))
	mux.Handle("GET /api/accounts", gate(http.HandlerFunc(h.handleAccounts)))
	mux.Handle("GET /api/transactions/{accountId}", gate(http.HandlerFunc(h.handleTransactions)))
}

func (h *LedgerHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "No token provided")
		return
	}

	user, err := h.store.FindUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("fetch profile", "user_id", userID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}

	respond.JSON(w, http.StatusOK, summarize(user))
}

func (h *LedgerHandler) handleAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "No token provided")
		return
	}

	accounts, err := h.store.ListAccountsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list accounts", "user_id", userID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch accounts")
		return
	}

	respond.JSON(w, http.StatusOK, accounts)
}

func (h *LedgerHandler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "No token provided")
		return
	}

	accountID, err := strconv.ParseInt(r.PathValue("accountId"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid account id")
		return
	}

	// A missing account and a foreign-owned account get the same response so
	// callers cannot probe for account existence.
	ownerID, err := h.store.FindAccountOwner(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusForbidden, "Access denied")
			return
		}
		h.logger.Error("find account owner", "account_id", accountID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	if ownerID != userID {
		respond.Error(w, http.StatusForbidden, "Access denied")
		return
	}

	transactions, err := h.store.ListRecentTransactions(r.Context(), accountID, recentTransactionLimit)
	if err != nil {
		h.logger.Error("list transactions", "account_id", accountID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}

	respond.JSON(w, http.StatusOK, transactions)
}
