package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction direction tags. Amounts are stored as unsigned magnitudes with
// the direction carried separately.
const (
	Debit  = "debit"
	Credit = "credit"
)

// Transaction is a single ledger entry on an account. This service only ever
// reads transactions; they are seeded by an external process.
type Transaction struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"-"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	CreatedAt   time.Time       `json:"created_at"`
}
