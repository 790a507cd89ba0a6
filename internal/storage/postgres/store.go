package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/securebank/secure-bank-be/internal/models"
	"github.com/securebank/secure-bank-be/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence through a bounded connection
// pool. Each call checks a connection out of the pool and returns it before
// the call completes.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			account_number TEXT UNIQUE NOT NULL,
			balance NUMERIC(15,2) NOT NULL DEFAULT 5000.00,
			account_type TEXT NOT NULL DEFAULT 'Compte Courant',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			amount NUMERIC(15,2) NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('debit', 'credit')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS accounts_user_id_idx ON accounts (user_id);`,
		`CREATE INDEX IF NOT EXISTS transactions_account_id_created_at_idx ON transactions (account_id, created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateUserWithAccount inserts the user row and their opening account in one
// transaction. A failure on either insert rolls both back.
func (s *Store) CreateUserWithAccount(ctx context.Context, user models.User, account models.Account) (models.User, models.Account, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.User{}, models.Account{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertUser = `
		INSERT INTO users (email, password_hash, full_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at;
	`
	row := tx.QueryRow(ctx, insertUser, user.Email, user.PasswordHash, user.FullName)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		return models.User{}, models.Account{}, mapUniqueViolation(err)
	}

	const insertAccount = `
		INSERT INTO accounts (user_id, account_number, balance, account_type)
		VALUES ($1, $2, $3::numeric, $4)
		RETURNING id, balance::text, created_at;
	`
	var balance string
	row = tx.QueryRow(ctx, insertAccount, user.ID, account.AccountNumber, account.Balance.StringFixed(2), account.AccountType)
	if err := row.Scan(&account.ID, &balance, &account.CreatedAt); err != nil {
		return models.User{}, models.Account{}, mapUniqueViolation(err)
	}
	account.UserID = user.ID
	if account.Balance, err = decimal.NewFromString(balance); err != nil {
		return models.User{}, models.Account{}, fmt.Errorf("parse balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.User{}, models.Account{}, fmt.Errorf("commit transaction: %w", err)
	}
	return user, account, nil
}

// FindUserByEmail fetches a user by email. The lookup is case-sensitive.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `
		SELECT id, email, password_hash, full_name, created_at
		FROM users
		WHERE email = $1;
	`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

// FindUserByID fetches a user by primary key.
func (s *Store) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	const query = `
		SELECT id, email, password_hash, full_name, created_at
		FROM users
		WHERE id = $1;
	`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// ListAccountsByUser returns every account owned by the user.
func (s *Store) ListAccountsByUser(ctx context.Context, userID int64) ([]models.Account, error) {
	const query = `
		SELECT id, user_id, account_number, balance::text, account_type, created_at
		FROM accounts
		WHERE user_id = $1;
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var account models.Account
		var balance string
		if err := rows.Scan(&account.ID, &account.UserID, &account.AccountNumber, &balance, &account.AccountType, &account.CreatedAt); err != nil {
			return nil, err
		}
		if account.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("parse balance: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// FindAccountOwner returns the id of the user owning the account.
func (s *Store) FindAccountOwner(ctx context.Context, accountID int64) (int64, error) {
	const query = `SELECT user_id FROM accounts WHERE id = $1;`

	var ownerID int64
	if err := s.pool.QueryRow(ctx, query, accountID).Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

// ListRecentTransactions returns at most limit transactions for the account,
// newest first.
func (s *Store) ListRecentTransactions(ctx context.Context, accountID int64, limit int) ([]models.Transaction, error) {
	const query = `
		SELECT id, account_id, description, amount::text, type, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`
	rows, err := s.pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var txn models.Transaction
		var amount string
		if err := rows.Scan(&txn.ID, &txn.AccountID, &txn.Description, &amount, &txn.Type, &txn.CreatedAt); err != nil {
			return nil, err
		}
		if txn.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return storage.ErrEmailTaken
		case "accounts_account_number_key":
			return storage.ErrAccountNumberTaken
		}
	}
	return err
}
