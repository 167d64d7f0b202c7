package domain

import (
	"fmt"
	"time"

	"github.com/firmfin/treasury_ledger_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionType classifies the direction of a value movement.
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

// TransactionCategory is a closed enumeration scoped per transaction type.
type TransactionCategory string

// categoriesByType is the closed category set for each transaction type.
var categoriesByType = map[TransactionType][]TransactionCategory{
	Income: {
		"CLIENT_PAYMENT", "RETAINER_FEE", "CONSULTATION_FEE",
		"SETTLEMENT_RECEIVED", "INTEREST_INCOME", "OTHER_INCOME",
	},
	Expense: {
		"OFFICE_RENT", "SALARIES", "UTILITIES", "COURT_FEES", "TRAVEL",
		"OFFICE_SUPPLIES", "PROFESSIONAL_SERVICES", "BANK_CHARGES", "OTHER_EXPENSE",
	},
	Transfer: {
		"BANK_TRANSFER", "CASH_DEPOSIT", "CASH_WITHDRAWAL", "INTERNAL_TRANSFER",
	},
	Adjustment: {
		"CORRECTION", "OPENING_BALANCE", "RECONCILIATION_ADJUSTMENT",
	},
}

// ValidCategory reports whether category belongs to the closed set for txType.
func ValidCategory(txType TransactionType, category TransactionCategory) bool {
	for _, c := range categoriesByType[txType] {
		if c == category {
			return true
		}
	}
	return false
}

// TypeSpec describes the account references a transaction type requires.
// Centralising the requirements here keeps per-type conditionals out of the
// command handlers.
type TypeSpec struct {
	NeedsFrom bool
	NeedsTo   bool
}

var typeSpecs = map[TransactionType]TypeSpec{
	Income:   {NeedsFrom: false, NeedsTo: true},
	Expense:  {NeedsFrom: true, NeedsTo: false},
	Transfer: {NeedsFrom: true, NeedsTo: true},
	// Adjustment may name either side; validated separately.
	Adjustment: {},
}

// SpecFor returns the account-reference requirements for a transaction type.
func SpecFor(t TransactionType) (TypeSpec, bool) {
	s, ok := typeSpecs[t]
	return s, ok
}

// Transaction represents a recorded movement of value with a lifecycle status.
// Completed transactions are immutable audit history; corrections are made by
// new offsetting transactions, never in place.
type Transaction struct {
	TransactionID     string `json:"transactionID"` // Primary Key (UUID)
	FirmID            string `json:"firmID"`
	TransactionNumber string `json:"transactionNumber"` // e.g. EXP-202609-0007, unique per firm+type+period
	Sequence          int64  `json:"-"`                 // Numeric part of TransactionNumber
	Period            string `json:"period"`            // Accounting period YYYYMM derived from TransactionDate
	ExternalRef       string `json:"externalRef,omitempty"`

	Type     TransactionType     `json:"type"`
	Category TransactionCategory `json:"category"`
	Status   TransactionStatus   `json:"status"`

	Amount                  decimal.Decimal  `json:"amount"` // In transaction currency, always positive except adjustments
	CurrencyCode            string           `json:"currencyCode"`
	ExchangeRate            *decimal.Decimal `json:"exchangeRate,omitempty"` // Supplied scalar; nil means 1
	AmountInAccountCurrency decimal.Decimal  `json:"amountInAccountCurrency"`

	FromAccountID *string `json:"fromAccountID,omitempty"`
	ToAccountID   *string `json:"toAccountID,omitempty"`

	// Workflow.
	RequiresApproval bool       `json:"requiresApproval"`
	ApprovedBy       *string    `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	ApprovalNotes    string     `json:"approvalNotes,omitempty"`

	// Reconciliation.
	IsReconciled bool       `json:"isReconciled"`
	ReconciledBy *string    `json:"reconciledBy,omitempty"`
	ReconciledAt *time.Time `json:"reconciledAt,omitempty"`

	// BalanceApplied is distinct from Status: it is the exactly-once guard for
	// the balance effect, checked inside the atomic apply unit.
	BalanceApplied bool `json:"-"`

	// Tax details are informational; the balance math uses Amount as-is.
	VATAmount    *decimal.Decimal `json:"vatAmount,omitempty"`
	VATRate      *decimal.Decimal `json:"vatRate,omitempty"`
	VATInclusive bool             `json:"vatInclusive"`

	// Opaque references supplied by the case/client/invoice store.
	ClientID  string `json:"clientID,omitempty"`
	CaseID    string `json:"caseID,omitempty"`
	InvoiceID string `json:"invoiceID,omitempty"`

	TransactionDate time.Time `json:"transactionDate"`
	Notes           string    `json:"notes,omitempty"`
	CancelReason    string    `json:"cancelReason,omitempty"`

	AuditFields
}

// PeriodOf formats t's accounting period as YYYYMM.
func PeriodOf(t time.Time) string {
	return t.UTC().Format("200601")
}

// Validate checks the classification-specific structure of the transaction.
func (t *Transaction) Validate() error {
	spec, ok := SpecFor(t.Type)
	if !ok {
		return fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, t.Type)
	}
	if !ValidCategory(t.Type, t.Category) {
		return fmt.Errorf("%w: category %q is not valid for type %s", apperrors.ErrValidation, t.Category, t.Type)
	}
	if t.Type == Adjustment {
		if t.Amount.IsZero() {
			return fmt.Errorf("%w: adjustment amount must be non-zero", apperrors.ErrValidation)
		}
		if (t.FromAccountID == nil) == (t.ToAccountID == nil) {
			return fmt.Errorf("%w: adjustment must reference exactly one account", apperrors.ErrValidation)
		}
	} else {
		if t.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
		}
		if spec.NeedsFrom && t.FromAccountID == nil {
			return fmt.Errorf("%w: %s requires a source account", apperrors.ErrValidation, t.Type)
		}
		if spec.NeedsTo && t.ToAccountID == nil {
			return fmt.Errorf("%w: %s requires a destination account", apperrors.ErrValidation, t.Type)
		}
	}
	if t.Type == Transfer && t.FromAccountID != nil && t.ToAccountID != nil && *t.FromAccountID == *t.ToAccountID {
		return fmt.Errorf("%w: transfer source and destination must differ", apperrors.ErrValidation)
	}
	if t.ExchangeRate != nil && t.ExchangeRate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	return nil
}

// ComputeAccountAmount derives AmountInAccountCurrency from the supplied
// exchange rate scalar (amount unchanged when no rate is given).
func (t *Transaction) ComputeAccountAmount() decimal.Decimal {
	if t.ExchangeRate == nil {
		return t.Amount
	}
	return t.Amount.Mul(*t.ExchangeRate)
}

// AdjustedAccountID returns the single account an adjustment applies to.
func (t *Transaction) AdjustedAccountID() *string {
	if t.ToAccountID != nil {
		return t.ToAccountID
	}
	return t.FromAccountID
}

// AccountIDs lists the distinct accounts the transaction references.
func (t *Transaction) AccountIDs() []string {
	ids := make([]string, 0, 2)
	if t.FromAccountID != nil {
		ids = append(ids, *t.FromAccountID)
	}
	if t.ToAccountID != nil && (t.FromAccountID == nil || *t.ToAccountID != *t.FromAccountID) {
		ids = append(ids, *t.ToAccountID)
	}
	return ids
}
