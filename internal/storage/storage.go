package storage

import (
	"context"
	"errors"

	"github.com/securebank/secure-bank-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrEmailTaken indicates a uniqueness conflict on the user email.
var ErrEmailTaken = errors.New("email already registered")

// ErrAccountNumberTaken indicates a generated account number collided with an
// existing one. Callers may regenerate and retry.
var ErrAccountNumberTaken = errors.New("account number already taken")

// Store captures persistence operations needed by handlers. Implementations
// must release any checked-out connection on every exit path.
type Store interface {
	// CreateUserWithAccount inserts the user and their first account in a
	// single transaction; neither row survives if the other insert fails.
	CreateUserWithAccount(ctx context.Context, user models.User, account models.Account) (models.User, models.Account, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, id int64) (models.User, error)
	ListAccountsByUser(ctx context.Context, userID int64) ([]models.Account, error)
	// FindAccountOwner returns the owning user id of an account, or
	// ErrNotFound if no such account exists.
	FindAccountOwner(ctx context.Context, accountID int64) (int64, error)
	// ListRecentTransactions returns at most limit transactions for the
	// account, newest first.
	ListRecentTransactions(ctx context.Context, accountID int64, limit int) ([]models.Transaction, error)
}
