package services_test

import (
	"context"
	"time"

	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	portsrepo "github.com/firmfin/treasury_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, firmID string, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, firmID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByNumber(ctx context.Context, firmID string, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, firmID, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, firmID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, firmID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, firmID string, filter portsrepo.AccountListFilter, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, firmID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) NextAccountSequence(ctx context.Context, firmID string, accountType domain.AccountType) (int64, error) {
	args := m.Called(ctx, firmID, accountType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) ClearDefaultAccount(ctx context.Context, firmID string, currencyCode string, userID string, now time.Time) error {
	args := m.Called(ctx, firmID, currencyCode, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, firmID string, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, firmID, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, firmID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, firmID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]domain.BalanceDelta, userID string, now time.Time) error {
	args := m.Called(ctx, tx, deltas, userID, now)
	return args.Error(0)
}

// MockTransactionRepository is a mock type for the TransactionRepositoryFacade interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, firmID string, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, firmID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, firmID string, filter portsrepo.TransactionListFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, firmID, filter, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

func (m *MockTransactionRepository) NextTransactionSequence(ctx context.Context, firmID string, txType domain.TransactionType, period string) (int64, error) {
	args := m.Called(ctx, firmID, txType, period)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction, deltas map[string]domain.BalanceDelta, check portsrepo.BalanceCheck) error {
	args := m.Called(ctx, txn, deltas, check)
	return args.Error(0)
}

func (m *MockTransactionRepository) CompleteTransaction(ctx context.Context, txn domain.Transaction, deltas map[string]domain.BalanceDelta, check portsrepo.BalanceCheck) error {
	args := m.Called(ctx, txn, deltas, check)
	return args.Error(0)
}

func (m *MockTransactionRepository) CancelTransaction(ctx context.Context, txn domain.Transaction, deltas map[string]domain.BalanceDelta) error {
	args := m.Called(ctx, txn, deltas)
	return args.Error(0)
}

func (m *MockTransactionRepository) MarkReconciled(ctx context.Context, firmID string, accountID string, transactionIDs []string, statementBalance decimal.Decimal, asOf time.Time, userID string, now time.Time) (int, error) {
	args := m.Called(ctx, firmID, accountID, transactionIDs, statementBalance, asOf, userID, now)
	return args.Int(0), args.Error(1)
}

// MockCurrencyRepository is a mock type for the CurrencyRepositoryFacade interface
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}
