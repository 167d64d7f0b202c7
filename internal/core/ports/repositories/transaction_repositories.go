package repositories

import (
	"context"
	"time"

	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceCheck validates computed deltas against account state captured under
// row locks, before any balance mutation. Returning an error aborts the unit.
type BalanceCheck func(accounts map[string]domain.Account) error

// TransactionListFilter narrows ListTransactions results.
type TransactionListFilter struct {
	AccountID *string
	Type      *domain.TransactionType
	Status    *domain.TransactionStatus
	Category  *string
	ClientID  *string
	CaseID    *string
	FromDate  *time.Time
	ToDate    *time.Time
}

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a specific transaction within a firm.
	FindTransactionByID(ctx context.Context, firmID string, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered, paginated list of a firm's
	// transactions using token-based pagination. It returns the transactions,
	// a token for the next page, and an error.
	ListTransactions(ctx context.Context, firmID string, filter TransactionListFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// NextTransactionSequence returns max+1 of the transaction sequence within
	// the firm+type+period scope.
	NextTransactionSequence(ctx context.Context, firmID string, txType domain.TransactionType, period string) (int64, error)
}

// TransactionWriter defines the atomic units that mutate transactions and
// account balances together. Each method is a single database transaction:
// lock accounts, re-validate, mutate balances and the transaction row, commit.
type TransactionWriter interface {
	// SaveTransaction persists a new transaction and applies its balance
	// deltas (full effect for an immediately completed transaction, hold
	// effect for a pending one).
	SaveTransaction(ctx context.Context, txn domain.Transaction, deltas map[string]domain.BalanceDelta, check BalanceCheck) error

	// CompleteTransaction transitions a pending transaction to COMPLETED and
	// applies the completion deltas. The status and balance_applied guards on
	// the transaction row make the balance effect exactly-once.
	CompleteTransaction(ctx context.Context, txn domain.Transaction, deltas map[string]domain.BalanceDelta, check BalanceCheck) error

	// CancelTransaction transitions a pending transaction to the abort status
	// carried on the row (CANCELLED or FAILED) and releases its holds.
	CancelTransaction(ctx context.Context, txn domain.Transaction, deltas map[string]domain.BalanceDelta) error

	// MarkReconciled flags the listed transactions as reconciled and stamps
	// the account's reconciliation fields. Every listed transaction must
	// belong to the account and be completed, otherwise nothing is applied.
	// It returns the number of transactions flagged.
	MarkReconciled(ctx context.Context, firmID string, accountID string, transactionIDs []string, statementBalance decimal.Decimal, asOf time.Time, userID string, now time.Time) (int, error)
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
// This is a facade for clients that need access to all operations
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
