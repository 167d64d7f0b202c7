package dto

import (
	"time"

	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
// The account number is generated server-side; it cannot be supplied.
type CreateAccountRequest struct {
	Name                 string             `json:"name" binding:"required"`
	AccountType          domain.AccountType `json:"accountType" binding:"required,oneof=BANK CASH CARD INVESTMENT PETTY_CASH"`
	CurrencyCode         string             `json:"currencyCode" binding:"required,len=3"`
	Description          string             `json:"description"`
	OpeningBalance       *decimal.Decimal   `json:"openingBalance"` // Optional, recorded as an OPENING_BALANCE adjustment
	AllowNegativeBalance bool               `json:"allowNegativeBalance"`
	RequireApproval      bool               `json:"requireApproval"`
	MinBalance           *decimal.Decimal   `json:"minBalance"`
	MaxBalance           *decimal.Decimal   `json:"maxBalance"`
	IsDefault            bool               `json:"isDefault"`
	AuthorizedUserIDs    []string           `json:"authorizedUserIDs"`
	ApproverIDs          []string           `json:"approverIDs"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
// The balance fields are bound only so a patch carrying them can be refused:
// balances mutate through transactions alone.
type UpdateAccountRequest struct {
	Name                 *string          `json:"name"`
	Description          *string          `json:"description"`
	AllowNegativeBalance *bool            `json:"allowNegativeBalance"`
	RequireApproval      *bool            `json:"requireApproval"`
	MinBalance           *decimal.Decimal `json:"minBalance"`
	MaxBalance           *decimal.Decimal `json:"maxBalance"`
	IsDefault            *bool            `json:"isDefault"`
	AuthorizedUserIDs    *[]string        `json:"authorizedUserIDs"`
	ApproverIDs          *[]string        `json:"approverIDs"`
	CurrentBalance       *decimal.Decimal `json:"currentBalance"`
	AvailableBalance     *decimal.Decimal `json:"availableBalance"`
}

// ReconcileAccountRequest carries the externally verified statement balance
// and the completed transactions the statement covers.
type ReconcileAccountRequest struct {
	StatementBalance decimal.Decimal `json:"statementBalance" binding:"required"`
	StatementDate    time.Time       `json:"statementDate" binding:"required"`
	TransactionIDs   []string        `json:"transactionIDs"`
}

// ReconcileAccountResponse reports the outcome of a reconciliation run. A
// non-zero difference is left for the caller to resolve with an explicit
// adjustment transaction.
type ReconcileAccountResponse struct {
	AccountID        string          `json:"accountID"`
	StatementBalance decimal.Decimal `json:"statementBalance"`
	LedgerBalance    decimal.Decimal `json:"ledgerBalance"`
	Difference       decimal.Decimal `json:"difference"`
	Balanced         bool            `json:"balanced"`
	ReconciledCount  int             `json:"reconciledCount"`
	LastReconciledAt time.Time       `json:"lastReconciledAt"`
	LastReconciledBy string          `json:"lastReconciledBy"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID             string             `json:"accountID"`
	FirmID                string             `json:"firmID"`
	AccountNumber         string             `json:"accountNumber"`
	Name                  string             `json:"name"`
	AccountType           domain.AccountType `json:"accountType"`
	CurrencyCode          string             `json:"currencyCode"`
	Description           string             `json:"description"`
	CurrentBalance        decimal.Decimal    `json:"currentBalance"`
	AvailableBalance      decimal.Decimal    `json:"availableBalance"`
	AllowNegativeBalance  bool               `json:"allowNegativeBalance"`
	RequireApproval       bool               `json:"requireApproval"`
	MinBalance            *decimal.Decimal   `json:"minBalance,omitempty"`
	MaxBalance            *decimal.Decimal   `json:"maxBalance,omitempty"`
	IsDefault             bool               `json:"isDefault"`
	AuthorizedUserIDs     []string           `json:"authorizedUserIDs"`
	ApproverIDs           []string           `json:"approverIDs"`
	IsActive              bool               `json:"isActive"`
	LastReconciledBalance *decimal.Decimal   `json:"lastReconciledBalance,omitempty"`
	LastReconciledAt      *time.Time         `json:"lastReconciledAt,omitempty"`
	CreatedAt             time.Time          `json:"createdAt"`
	CreatedBy             string             `json:"createdBy"`
	LastUpdatedAt         time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy         string             `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:             acc.AccountID,
		FirmID:                acc.FirmID,
		AccountNumber:         acc.AccountNumber,
		Name:                  acc.Name,
		AccountType:           acc.AccountType,
		CurrencyCode:          acc.CurrencyCode,
		Description:           acc.Description,
		CurrentBalance:        acc.CurrentBalance,
		AvailableBalance:      acc.AvailableBalance,
		AllowNegativeBalance:  acc.AllowNegativeBalance,
		RequireApproval:       acc.RequireApproval,
		MinBalance:            acc.MinBalance,
		MaxBalance:            acc.MaxBalance,
		IsDefault:             acc.IsDefault,
		AuthorizedUserIDs:     acc.AuthorizedUserIDs,
		ApproverIDs:           acc.ApproverIDs,
		IsActive:              acc.IsActive,
		LastReconciledBalance: acc.LastReconciledBalance,
		LastReconciledAt:      acc.LastReconciledAt,
		CreatedAt:             acc.CreatedAt,
		CreatedBy:             acc.CreatedBy,
		LastUpdatedAt:         acc.LastUpdatedAt,
		LastUpdatedBy:         acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	AccountType     *domain.AccountType `form:"accountType"`
	CurrencyCode    *string             `form:"currencyCode"`
	IncludeInactive bool                `form:"includeInactive,default=false"`
	Limit           int                 `form:"limit,default=20"`
	Offset          int                 `form:"offset,default=0"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
