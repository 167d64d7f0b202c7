package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies how a transaction moves money.
type TransactionType string

const (
	Income     TransactionType = "INCOME"
	Expense    TransactionType = "EXPENSE"
	Transfer   TransactionType = "TRANSFER"
	Adjustment TransactionType = "ADJUSTMENT"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	Pending    TransactionStatus = "PENDING"
	Completed  TransactionStatus = "COMPLETED"
	Cancelled  TransactionStatus = "CANCELLED"
	Failed     TransactionStatus = "FAILED"
	Reconciled TransactionStatus = "RECONCILED"
)

// Transaction represents a balance-mutating event row.
type Transaction struct {
	TransactionID     string `db:"transaction_id"`
	FirmID            string `db:"firm_id"`
	TransactionNumber string `db:"transaction_number"`
	Sequence          int64  `db:"sequence"` // Numeric suffix, scoped per firm+type+period
	Period            string `db:"period"`   // YYYYMM, derived from TransactionDate
	ExternalRef       string `db:"external_ref"`

	Type     TransactionType   `db:"type"`
	Category string            `db:"category"`
	Status   TransactionStatus `db:"status"`

	Amount                  decimal.Decimal  `db:"amount"`
	CurrencyCode            string           `db:"currency_code"`
	ExchangeRate            *decimal.Decimal `db:"exchange_rate"`
	AmountInAccountCurrency decimal.Decimal  `db:"amount_in_account_currency"`

	FromAccountID *string `db:"from_account_id"`
	ToAccountID   *string `db:"to_account_id"`

	RequiresApproval bool       `db:"requires_approval"`
	ApprovedBy       *string    `db:"approved_by"`
	ApprovedAt       *time.Time `db:"approved_at"`
	ApprovalNotes    string     `db:"approval_notes"`

	IsReconciled bool       `db:"is_reconciled"`
	ReconciledBy *string    `db:"reconciled_by"`
	ReconciledAt *time.Time `db:"reconciled_at"`

	// BalanceApplied tracks whether this transaction's balance effect has
	// reached the accounts. It is the exactly-once guard, distinct from Status.
	BalanceApplied bool `db:"balance_applied"`

	VATAmount    *decimal.Decimal `db:"vat_amount"`
	VATRate      *decimal.Decimal `db:"vat_rate"`
	VATInclusive bool             `db:"vat_inclusive"`

	ClientID  string `db:"client_id"`
	CaseID    string `db:"case_id"`
	InvoiceID string `db:"invoice_id"`

	TransactionDate time.Time `db:"transaction_date"`
	Notes           string    `db:"notes"`
	CancelReason    string    `db:"cancel_reason"`

	AuditFields
}
