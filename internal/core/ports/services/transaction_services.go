package services

import (
	"context"

	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	"github.com/firmfin/treasury_ledger_app/internal/dto"
)

// TransactionReaderSvc defines read operations for transaction data
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a specific transaction within a firm.
	GetTransactionByID(ctx context.Context, firmID string, transactionID string, actorID string) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered, paginated list of a firm's
	// transactions using token-based pagination.
	ListTransactions(ctx context.Context, firmID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error)
}

// TransactionWriterSvc defines lifecycle operations for transactions
type TransactionWriterSvc interface {
	// CreateTransaction records a new transaction. It completes immediately
	// unless approval gating applies, in which case it is created PENDING with
	// a hold on the source account's available balance.
	CreateTransaction(ctx context.Context, firmID string, req dto.CreateTransactionRequest, actorID string) (*domain.Transaction, error)

	// ApproveTransaction releases a pending transaction, applying its full
	// balance effect. The actor must be an approver on the gating account and
	// must not be the transaction's creator.
	ApproveTransaction(ctx context.Context, firmID string, transactionID string, req dto.ApproveTransactionRequest, actorID string) (*domain.Transaction, error)

	// CancelTransaction cancels a pending transaction and releases its holds.
	CancelTransaction(ctx context.Context, firmID string, transactionID string, req dto.CancelTransactionRequest, actorID string) (*domain.Transaction, error)

	// FailTransaction marks a pending transaction failed and releases its
	// holds. Like cancellation, it never touches an applied balance.
	FailTransaction(ctx context.Context, firmID string, transactionID string, req dto.FailTransactionRequest, actorID string) (*domain.Transaction, error)

	// ReverseTransaction records a new offsetting transaction for a completed
	// one. The original row is never edited.
	ReverseTransaction(ctx context.Context, firmID string, transactionID string, req dto.ReverseTransactionRequest, actorID string) (*domain.Transaction, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
