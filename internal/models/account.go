package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a customer's balance. Balances are read-only after creation;
// no endpoint mutates them.
type Account struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"-"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	AccountType   string          `json:"account_type"`
	CreatedAt     time.Time       `json:"created_at"`
}
