package domain

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

// ValidAccountType reports whether t is one of the known account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case Bank, Cash, Card, Investment, PettyCash:
		return true
	}
	return false
}

// Account represents a firm operating account within the core domain.
// Balances mutate only through completed transactions, never by direct edit.
type Account struct {
	AccountID     string      `json:"accountID"`     // Primary Key (UUID)
	FirmID        string      `json:"firmID"`        // Scope supplied by the identity service (NON-NULL)
	AccountNumber string      `json:"accountNumber"` // Generated, unique per firm+type (e.g. BNK-000042)
	Sequence      int64       `json:"-"`             // Numeric part of AccountNumber, used for max+1 generation
	Name          string      `json:"name"`
	AccountType   AccountType `json:"accountType"`
	CurrencyCode  string      `json:"currencyCode"`
	Description   string      `json:"description"`

	// Balances. AvailableBalance = CurrentBalance minus holds from pending
	// outbound transactions this account is the source of.
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`

	// Policy.
	AllowNegativeBalance bool             `json:"allowNegativeBalance"`
	RequireApproval      bool             `json:"requireApproval"`
	MinBalance           *decimal.Decimal `json:"minBalance,omitempty"`
	MaxBalance           *decimal.Decimal `json:"maxBalance,omitempty"`
	IsDefault            bool             `json:"isDefault"` // At most one per currency per firm

	// Access. Empty authorized set means any actor in the firm may use the
	// account; the approver set gates pending-transaction release.
	AuthorizedUserIDs []string `json:"authorizedUserIDs"`
	ApproverIDs       []string `json:"approverIDs"`

	IsActive bool `json:"isActive"` // Accounts are deactivated, never deleted

	LastReconciledBalance *decimal.Decimal `json:"lastReconciledBalance,omitempty"`
	LastReconciledAt      *time.Time       `json:"lastReconciledAt,omitempty"`

	AuditFields
}

// AuthorizesUser reports whether actorID may operate on the account.
// An empty authorized set leaves the account open to the whole firm.
func (a *Account) AuthorizesUser(actorID string) bool {
	if len(a.AuthorizedUserIDs) == 0 {
		return true
	}
	for _, id := range a.AuthorizedUserIDs {
		if id == actorID {
			return true
		}
	}
	return false
}

// HasApprover reports whether actorID is in the account's approver set.
func (a *Account) HasApprover(actorID string) bool {
	for _, id := range a.ApproverIDs {
		if id == actorID {
			return true
		}
	}
	return false
}
