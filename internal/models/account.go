package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType defines the kind of operating account.
type AccountType string

const (
	Bank       AccountType = "BANK"
	Cash       AccountType = "CASH"
	Card       AccountType = "CARD"
	Investment AccountType = "INVESTMENT"
	PettyCash  AccountType = "PETTY_CASH"
)

// Account represents a firm operating account row.
// AuthorizedUserIDs and ApproverIDs persist as text[] columns.
type Account struct {
	AccountID     string      `db:"account_id"`
	FirmID        string      `db:"firm_id"`
	AccountNumber string      `db:"account_number"`
	Sequence      int64       `db:"sequence"` // Numeric part of AccountNumber, scoped per firm+type
	Name          string      `db:"name"`
	AccountType   AccountType `db:"account_type"`
	CurrencyCode  string      `db:"currency_code"`
	Description   string      `db:"description"`

	CurrentBalance   decimal.Decimal `db:"current_balance"`
	AvailableBalance decimal.Decimal `db:"available_balance"`

	AllowNegativeBalance bool             `db:"allow_negative_balance"`
	RequireApproval      bool             `db:"require_approval"`
	MinBalance           *decimal.Decimal `db:"min_balance"`
	MaxBalance           *decimal.Decimal `db:"max_balance"`
	IsDefault            bool             `db:"is_default"`

	AuthorizedUserIDs []string `db:"authorized_user_ids"`
	ApproverIDs       []string `db:"approver_ids"`

	IsActive bool `db:"is_active"`

	LastReconciledBalance *decimal.Decimal `db:"last_reconciled_balance"`
	LastReconciledAt      *time.Time       `db:"last_reconciled_at"`

	AuditFields
}
