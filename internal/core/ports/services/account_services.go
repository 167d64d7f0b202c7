package services

import (
	"context"

	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	"github.com/firmfin/treasury_ledger_app/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, firmID string, accountID string, actorID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts by their IDs.
	GetAccountsByIDs(ctx context.Context, firmID string, accountIDs []string, actorID string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts for a given firm.
	ListAccounts(ctx context.Context, firmID string, params dto.ListAccountsParams) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account with a generated account number.
	CreateAccount(ctx context.Context, firmID string, req dto.CreateAccountRequest, actorID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's details. Balances cannot be
	// edited through this path.
	UpdateAccount(ctx context.Context, firmID string, accountID string, req dto.UpdateAccountRequest, actorID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. Deactivation is refused
	// while the account has pending transactions.
	DeactivateAccount(ctx context.Context, firmID string, accountID string, actorID string) error
}

// AccountReconcilerSvc defines the statement reconciliation operation
type AccountReconcilerSvc interface {
	// ReconcileAccount compares the ledger against an externally verified
	// statement balance, flags covered transactions as reconciled, and records
	// any difference as an adjustment transaction.
	ReconcileAccount(ctx context.Context, firmID string, accountID string, req dto.ReconcileAccountRequest, actorID string) (*domain.ReconciliationResult, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountReconcilerSvc
}
