package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/securebank/secure-bank-be/internal/auth"
	"github.com/securebank/secure-bank-be/internal/config"
	"github.com/securebank/secure-bank-be/internal/middleware"
	"github.com/securebank/secure-bank-be/internal/models"
	"github.com/securebank/secure-bank-be/internal/storage"
)

// fakeStore is an in-memory storage.Store honoring the same contract as the
// Postgres implementation: unique emails and account numbers, transactional
// signup, newest-first bounded transaction listing.
type fakeStore struct {
	mu            sync.Mutex
	users         map[int64]models.User
	byEmail       map[string]int64
	accounts      map[int64]models.Account
	transactions  map[int64][]models.Transaction
	nextUserID    int64
	nextAccountID int64

	// collideNumbers makes the next n creates fail with
	// storage.ErrAccountNumberTaken regardless of the number supplied.
	collideNumbers int
	calls          int
}

var _ storage.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        map[int64]models.User{},
		byEmail:      map[string]int64{},
		accounts:     map[int64]models.Account{},
		transactions: map[int64][]models.Transaction{},
	}
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStore) CreateUserWithAccount(_ context.Context, user models.User, account models.Account) (models.User, models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.collideNumbers > 0 {
		f.collideNumbers--
		return models.User{}, models.Account{}, storage.ErrAccountNumberTaken
	}
	if _, exists := f.byEmail[user.Email]; exists {
		return models.User{}, models.Account{}, storage.ErrEmailTaken
	}
	for _, existing := range f.accounts {
		if existing.AccountNumber == account.AccountNumber {
			return models.User{}, models.Account{}, storage.ErrAccountNumberTaken
		}
	}

	f.nextUserID++
	user.ID = f.nextUserID
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	f.byEmail[user.Email] = user.ID

	f.nextAccountID++
	account.ID = f.nextAccountID
	account.UserID = user.ID
	account.CreatedAt = time.Now()
	f.accounts[account.ID] = account

	return user, account, nil
}

func (f *fakeStore) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	id, ok := f.byEmail[email]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return f.users[id], nil
}

func (f *fakeStore) FindUserByID(_ context.Context, id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	user, ok := f.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) ListAccountsByUser(_ context.Context, userID int64) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	accounts := []models.Account{}
	for _, account := range f.accounts {
		if account.UserID == userID {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

func (f *fakeStore) FindAccountOwner(_ context.Context, accountID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	account, ok := f.accounts[accountID]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return account.UserID, nil
}

func (f *fakeStore) ListRecentTransactions(_ context.Context, accountID int64, limit int) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	all := append([]models.Transaction{}, f.transactions[accountID]...)
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// seedAccount inserts an account directly, bypassing signup.
func (f *fakeStore) seedAccount(userID int64, number string, balance string) models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextAccountID++
	account := models.Account{
		ID:            f.nextAccountID,
		UserID:        userID,
		AccountNumber: number,
		Balance:       decimal.RequireFromString(balance),
		AccountType:   "Compte Courant",
		CreatedAt:     time.Now(),
	}
	f.accounts[account.ID] = account
	return account
}

// seedTransaction inserts a pre-existing ledger entry.
func (f *fakeStore) seedTransaction(accountID int64, description, amount, direction string, createdAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	txn := models.Transaction{
		ID:          int64(len(f.transactions[accountID]) + 1),
		AccountID:   accountID,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Type:        direction,
		CreatedAt:   createdAt,
	}
	f.transactions[accountID] = append(f.transactions[accountID], txn)
}

func newTestServer(t *testing.T, store storage.Store) (*http.ServeMux, *auth.TokenManager) {
	t.Helper()

	cfg := config.Config{
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
		OpeningBalance: decimal.RequireFromString("5000.00"),
		AccountType:    "Compte Courant",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	mux := http.NewServeMux()
	NewAuthHandler(store, tokens, &cfg, logger).Register(mux)
	gate := func(next http.Handler) http.Handler {
		return middleware.Auth(tokens, logger, next)
	}
	NewLedgerHandler(store, logger).Register(mux, gate)

	return mux, tokens
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}
