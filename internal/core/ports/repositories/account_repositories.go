package repositories

import (
	"context"
	"time"

	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AccountListFilter narrows ListAccounts results.
type AccountListFilter struct {
	AccountType     *domain.AccountType
	CurrencyCode    *string
	IncludeInactive bool
}

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier within a firm.
	FindAccountByID(ctx context.Context, firmID string, accountID string) (*domain.Account, error)

	// FindAccountByNumber retrieves an account by its generated account number within a firm.
	FindAccountByNumber(ctx context.Context, firmID string, accountNumber string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts of a firm by their IDs.
	FindAccountsByIDs(ctx context.Context, firmID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts for a given firm.
	ListAccounts(ctx context.Context, firmID string, filter AccountListFilter, limit int, offset int) ([]domain.Account, error)

	// NextAccountSequence returns max+1 of the account sequence within the
	// firm+type scope. Races surface as a duplicate error from SaveAccount.
	NextAccountSequence(ctx context.Context, firmID string, accountType domain.AccountType) (int64, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's details. Balance columns are
	// not touched here; they move only inside transaction atomic units.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// ClearDefaultAccount unsets is_default on the firm's current default for a currency.
	ClearDefaultAccount(ctx context.Context, firmID string, currencyCode string, userID string, now time.Time) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, firmID string, accountID string, userID string, now time.Time) error
}

// AccountTransactionSupport defines operations used inside transaction atomic units
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts in a stable order and locks
	// them for update within a transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, firmID string, accountIDs []string) (map[string]domain.Account, error)

	// ApplyBalanceDeltasInTx applies current/available balance deltas to
	// multiple accounts within a given transaction.
	ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]domain.BalanceDelta, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
