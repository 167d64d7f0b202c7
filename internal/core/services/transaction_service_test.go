package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/firmfin/treasury_ledger_app/internal/apperrors"
	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	portsrepo "github.com/firmfin/treasury_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/firmfin/treasury_ledger_app/internal/core/ports/services"
	"github.com/firmfin/treasury_ledger_app/internal/core/services"
	"github.com/firmfin/treasury_ledger_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockTxnRepo      *MockTransactionRepository
	mockAccountRepo  *MockAccountRepository
	mockCurrencyRepo *MockCurrencyRepository
	service          portssvc.TransactionSvcFacade

	firmID  string
	actorID string
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.service = services.NewTransactionService(
		suite.mockTxnRepo,
		suite.mockAccountRepo,
		services.WithCurrencyReader(suite.mockCurrencyRepo),
	)
	suite.firmID = uuid.NewString()
	suite.actorID = uuid.NewString()
}

func (suite *TransactionServiceTestSuite) usdCurrency() *domain.Currency {
	return &domain.Currency{CurrencyCode: "USD", Symbol: "$", Name: "US Dollar", Precision: 2}
}

func (suite *TransactionServiceTestSuite) activeAccount(id string, balance int64) domain.Account {
	bal := decimal.NewFromInt(balance)
	return domain.Account{
		AccountID:        id,
		FirmID:           suite.firmID,
		AccountNumber:    "BNK-000001",
		AccountType:      domain.Bank,
		CurrencyCode:     "USD",
		CurrentBalance:   bal,
		AvailableBalance: bal,
		IsActive:         true,
	}
}

// --- CreateTransaction ---

func (suite *TransactionServiceTestSuite) TestCreateTransaction_ImmediateComplete() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := suite.activeAccount(accountID, 1000)

	req := dto.CreateTransactionRequest{
		Type:            domain.Expense,
		Category:        "COURT_FEES",
		Amount:          decimal.NewFromInt(250),
		CurrencyCode:    "USD",
		FromAccountID:   &accountID,
		TransactionDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").Return(suite.usdCurrency(), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()
	suite.mockTxnRepo.On("NextTransactionSequence", ctx, suite.firmID, domain.Expense, "202609").
		Return(int64(7), nil).Once()

	var savedDeltas map[string]domain.BalanceDelta
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedDeltas = args.Get(2).(map[string]domain.BalanceDelta)
		}).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.firmID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal(domain.Completed, txn.Status)
	suite.True(txn.BalanceApplied)
	suite.False(txn.RequiresApproval)
	suite.Equal("EXP-202609-0007", txn.TransactionNumber)
	suite.Equal("202609", txn.Period)
	suite.Equal(suite.actorID, txn.CreatedBy)

	// The full effect debits current and available together.
	suite.Require().Contains(savedDeltas, accountID)
	suite.True(savedDeltas[accountID].Current.Equal(decimal.NewFromInt(-250)))
	suite.True(savedDeltas[accountID].Available.Equal(decimal.NewFromInt(-250)))

	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_GatedAccountGoesPending() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := suite.activeAccount(accountID, 1000)
	account.RequireApproval = true
	account.ApproverIDs = []string{uuid.NewString()}

	req := dto.CreateTransactionRequest{
		Type:            domain.Expense,
		Category:        "SALARIES",
		Amount:          decimal.NewFromInt(700),
		CurrencyCode:    "USD",
		FromAccountID:   &accountID,
		TransactionDate: time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").Return(suite.usdCurrency(), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()
	suite.mockTxnRepo.On("NextTransactionSequence", ctx, suite.firmID, domain.Expense, "202609").
		Return(int64(1), nil).Once()

	var savedDeltas map[string]domain.BalanceDelta
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedDeltas = args.Get(2).(map[string]domain.BalanceDelta)
		}).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.firmID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.Pending, txn.Status)
	suite.True(txn.RequiresApproval)
	suite.False(txn.BalanceApplied)

	// A hold reduces only the available balance; current waits for approval.
	suite.Require().Contains(savedDeltas, accountID)
	suite.True(savedDeltas[accountID].Current.IsZero())
	suite.True(savedDeltas[accountID].Available.Equal(decimal.NewFromInt(-700)))

	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_OpeningBalanceSkipsGating() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := suite.activeAccount(accountID, 0)
	account.RequireApproval = true

	req := dto.CreateTransactionRequest{
		Type:            domain.Adjustment,
		Category:        "OPENING_BALANCE",
		Amount:          decimal.NewFromInt(1000),
		CurrencyCode:    "USD",
		ToAccountID:     &accountID,
		TransactionDate: time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").Return(suite.usdCurrency(), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()
	suite.mockTxnRepo.On("NextTransactionSequence", ctx, suite.firmID, domain.Adjustment, "202609").
		Return(int64(3), nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.Anything, mock.Anything).
		Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.firmID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.Completed, txn.Status)
	suite.False(txn.RequiresApproval)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_ExplicitFlagForcesPending() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := suite.activeAccount(accountID, 1000)
	// No account policy gates this; the caller asks for approval explicitly.

	req := dto.CreateTransactionRequest{
		Type:             domain.Expense,
		Category:         "COURT_FEES",
		Amount:           decimal.NewFromInt(90),
		CurrencyCode:     "USD",
		FromAccountID:    &accountID,
		RequiresApproval: true,
		TransactionDate:  time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC),
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").Return(suite.usdCurrency(), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()
	suite.mockTxnRepo.On("NextTransactionSequence", ctx, suite.firmID, domain.Expense, "202609").
		Return(int64(2), nil).Once()

	var savedDeltas map[string]domain.BalanceDelta
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedDeltas = args.Get(2).(map[string]domain.BalanceDelta)
		}).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.firmID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.Pending, txn.Status)
	suite.True(txn.RequiresApproval)
	suite.False(txn.BalanceApplied)
	suite.Require().Contains(savedDeltas, accountID)
	suite.True(savedDeltas[accountID].Available.Equal(decimal.NewFromInt(-90)))
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_IncomeIntoGatedAccountGoesPending() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := suite.activeAccount(accountID, 1000)
	account.RequireApproval = true
	account.ApproverIDs = []string{uuid.NewString()}

	req := dto.CreateTransactionRequest{
		Type:            domain.Income,
		Category:        "CLIENT_PAYMENT",
		Amount:          decimal.NewFromInt(500),
		CurrencyCode:    "USD",
		ToAccountID:     &accountID,
		TransactionDate: time.Date(2026, 9, 22, 0, 0, 0, 0, time.UTC),
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").Return(suite.usdCurrency(), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()
	suite.mockTxnRepo.On("NextTransactionSequence", ctx, suite.firmID, domain.Income, "202609").
		Return(int64(4), nil).Once()

	var savedDeltas map[string]domain.BalanceDelta
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedDeltas = args.Get(2).(map[string]domain.BalanceDelta)
		}).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.firmID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.Pending, txn.Status)
	suite.True(txn.RequiresApproval)

	// Income has no outbound side, so a pending credit places no hold: the
	// receiving account's balances move only when an approver completes it.
	suite.Empty(savedDeltas)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_UnauthorizedActor() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := suite.activeAccount(accountID, 1000)
	account.AuthorizedUserIDs = []string{uuid.NewString()}

	req := dto.CreateTransactionRequest{
		Type:            domain.Expense,
		Category:        "TRAVEL",
		Amount:          decimal.NewFromInt(50),
		CurrencyCode:    "USD",
		FromAccountID:   &accountID,
		TransactionDate: time.Now(),
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").Return(suite.usdCurrency(), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.firmID, req, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_CurrencyMismatchWithoutRate() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := suite.activeAccount(accountID, 1000)
	account.CurrencyCode = "EUR"

	req := dto.CreateTransactionRequest{
		Type:            domain.Expense,
		Category:        "TRAVEL",
		Amount:          decimal.NewFromInt(50),
		CurrencyCode:    "USD",
		FromAccountID:   &accountID,
		TransactionDate: time.Now(),
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").Return(suite.usdCurrency(), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.firmID, req, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_NumberCollisionExhaustsRetries() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := suite.activeAccount(accountID, 1000)

	req := dto.CreateTransactionRequest{
		Type:            domain.Income,
		Category:        "CLIENT_PAYMENT",
		Amount:          decimal.NewFromInt(100),
		CurrencyCode:    "USD",
		ToAccountID:     &accountID,
		TransactionDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").Return(suite.usdCurrency(), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()

	// Every attempt collides with a concurrent writer in the same scope.
	suite.mockTxnRepo.On("NextTransactionSequence", ctx, suite.firmID, domain.Income, "202609").
		Return(int64(12), nil).Times(3)
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.Anything, mock.Anything).
		Return(apperrors.ErrDuplicate).Times(3)

	txn, err := suite.service.CreateTransaction(ctx, suite.firmID, req, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// --- ApproveTransaction ---

func (suite *TransactionServiceTestSuite) pendingExpense(accountID string) *domain.Transaction {
	return &domain.Transaction{
		TransactionID:           uuid.NewString(),
		FirmID:                  suite.firmID,
		TransactionNumber:       "EXP-202609-0004",
		Period:                  "202609",
		Type:                    domain.Expense,
		Category:                "SALARIES",
		Status:                  domain.Pending,
		Amount:                  decimal.NewFromInt(700),
		AmountInAccountCurrency: decimal.NewFromInt(700),
		CurrencyCode:            "USD",
		FromAccountID:           &accountID,
		RequiresApproval:        true,
		TransactionDate:         time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
		AuditFields: domain.AuditFields{
			CreatedBy: uuid.NewString(),
		},
	}
}

func (suite *TransactionServiceTestSuite) TestApproveTransaction_Success() {
	ctx := context.Background()
	accountID := uuid.NewString()
	txn := suite.pendingExpense(accountID)
	account := suite.activeAccount(accountID, 1000)
	account.AvailableBalance = decimal.NewFromInt(300) // 700 already held
	account.RequireApproval = true
	account.ApproverIDs = []string{suite.actorID}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()

	var completionDeltas map[string]domain.BalanceDelta
	suite.mockTxnRepo.On("CompleteTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			completionDeltas = args.Get(2).(map[string]domain.BalanceDelta)
			// The check passed to the repository runs against locked state and
			// must accept the completion given the hold already in place.
			check := args.Get(3).(portsrepo.BalanceCheck)
			suite.NoError(check(map[string]domain.Account{accountID: account}))
		}).Return(nil).Once()

	approved, err := suite.service.ApproveTransaction(ctx, suite.firmID, txn.TransactionID, dto.ApproveTransactionRequest{Notes: "ok"}, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.Completed, approved.Status)
	suite.True(approved.BalanceApplied)
	suite.Require().NotNil(approved.ApprovedBy)
	suite.Equal(suite.actorID, *approved.ApprovedBy)
	suite.Equal("ok", approved.ApprovalNotes)

	// Completion debits current only; the hold already took available.
	suite.Require().Contains(completionDeltas, accountID)
	suite.True(completionDeltas[accountID].Current.Equal(decimal.NewFromInt(-700)))
	suite.True(completionDeltas[accountID].Available.IsZero())

	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestApproveTransaction_CreatorCannotSelfApprove() {
	ctx := context.Background()
	accountID := uuid.NewString()
	txn := suite.pendingExpense(accountID)
	txn.CreatedBy = suite.actorID

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, txn.TransactionID).Return(txn, nil).Once()

	approved, err := suite.service.ApproveTransaction(ctx, suite.firmID, txn.TransactionID, dto.ApproveTransactionRequest{}, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(approved)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "CompleteTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestApproveTransaction_NonApproverGetsNotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()
	txn := suite.pendingExpense(accountID)
	account := suite.activeAccount(accountID, 1000)
	account.RequireApproval = true
	account.ApproverIDs = []string{uuid.NewString()}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()

	approved, err := suite.service.ApproveTransaction(ctx, suite.firmID, txn.TransactionID, dto.ApproveTransactionRequest{}, suite.actorID)

	// A non-approver learns nothing: the pending transaction does not exist
	// for them.
	suite.Require().Error(err)
	suite.Nil(approved)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *TransactionServiceTestSuite) TestApproveTransaction_NotPending() {
	ctx := context.Background()
	accountID := uuid.NewString()
	txn := suite.pendingExpense(accountID)
	txn.Status = domain.Completed

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, txn.TransactionID).Return(txn, nil).Once()

	approved, err := suite.service.ApproveTransaction(ctx, suite.firmID, txn.TransactionID, dto.ApproveTransactionRequest{}, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(approved)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *TransactionServiceTestSuite) TestApproveTransaction_InsufficientAtApproval() {
	ctx := context.Background()
	accountID := uuid.NewString()
	txn := suite.pendingExpense(accountID)
	account := suite.activeAccount(accountID, 100)
	account.RequireApproval = true
	account.ApproverIDs = []string{suite.actorID}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()

	// The repository runs the check under lock; a drained account fails it.
	suite.mockTxnRepo.On("CompleteTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.Anything, mock.Anything).
		Return(apperrors.ErrInsufficientFunds).Once()

	approved, err := suite.service.ApproveTransaction(ctx, suite.firmID, txn.TransactionID, dto.ApproveTransactionRequest{}, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(approved)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

// --- CancelTransaction ---

func (suite *TransactionServiceTestSuite) TestCancelTransaction_CreatorReleasesHold() {
	ctx := context.Background()
	accountID := uuid.NewString()
	txn := suite.pendingExpense(accountID)
	txn.CreatedBy = suite.actorID
	account := suite.activeAccount(accountID, 1000)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()

	var releaseDeltas map[string]domain.BalanceDelta
	suite.mockTxnRepo.On("CancelTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.Anything).
		Run(func(args mock.Arguments) {
			releaseDeltas = args.Get(2).(map[string]domain.BalanceDelta)
		}).Return(nil).Once()

	cancelled, err := suite.service.CancelTransaction(ctx, suite.firmID, txn.TransactionID, dto.CancelTransactionRequest{Reason: "duplicate entry"}, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.Cancelled, cancelled.Status)
	suite.Equal("duplicate entry", cancelled.CancelReason)

	// The release restores the held available balance exactly.
	suite.Require().Contains(releaseDeltas, accountID)
	suite.True(releaseDeltas[accountID].Current.IsZero())
	suite.True(releaseDeltas[accountID].Available.Equal(decimal.NewFromInt(700)))

	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCancelTransaction_StrangerGetsNotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()
	txn := suite.pendingExpense(accountID)
	account := suite.activeAccount(accountID, 1000)
	account.RequireApproval = true
	account.ApproverIDs = []string{uuid.NewString()}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()

	cancelled, err := suite.service.CancelTransaction(ctx, suite.firmID, txn.TransactionID, dto.CancelTransactionRequest{Reason: "nope"}, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(cancelled)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *TransactionServiceTestSuite) TestCancelTransaction_NotPending() {
	ctx := context.Background()
	accountID := uuid.NewString()
	txn := suite.pendingExpense(accountID)
	txn.Status = domain.Cancelled

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, txn.TransactionID).Return(txn, nil).Once()

	cancelled, err := suite.service.CancelTransaction(ctx, suite.firmID, txn.TransactionID, dto.CancelTransactionRequest{Reason: "late"}, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(cancelled)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

// --- FailTransaction ---

func (suite *TransactionServiceTestSuite) TestFailTransaction_ReleasesHold() {
	ctx := context.Background()
	accountID := uuid.NewString()
	txn := suite.pendingExpense(accountID)
	txn.CreatedBy = suite.actorID
	account := suite.activeAccount(accountID, 1000)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()

	var releaseDeltas map[string]domain.BalanceDelta
	suite.mockTxnRepo.On("CancelTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.Anything).
		Run(func(args mock.Arguments) {
			releaseDeltas = args.Get(2).(map[string]domain.BalanceDelta)
		}).Return(nil).Once()

	failed, err := suite.service.FailTransaction(ctx, suite.firmID, txn.TransactionID, dto.FailTransactionRequest{Reason: "settlement bounced"}, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.Failed, failed.Status)
	suite.Equal("settlement bounced", failed.CancelReason)
	suite.False(failed.BalanceApplied)

	// A failed transaction returns its hold just like a cancelled one.
	suite.Require().Contains(releaseDeltas, accountID)
	suite.True(releaseDeltas[accountID].Current.IsZero())
	suite.True(releaseDeltas[accountID].Available.Equal(decimal.NewFromInt(700)))

	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestFailTransaction_NotPending() {
	ctx := context.Background()
	accountID := uuid.NewString()
	txn := suite.pendingExpense(accountID)
	txn.Status = domain.Completed

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, txn.TransactionID).Return(txn, nil).Once()

	failed, err := suite.service.FailTransaction(ctx, suite.firmID, txn.TransactionID, dto.FailTransactionRequest{Reason: "too late"}, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(failed)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "CancelTransaction", mock.Anything, mock.Anything, mock.Anything)
}

// --- ReverseTransaction ---

func (suite *TransactionServiceTestSuite) TestReverseTransaction_TransferSwapsAccounts() {
	ctx := context.Background()
	fromID := uuid.NewString()
	toID := uuid.NewString()
	original := &domain.Transaction{
		TransactionID:           uuid.NewString(),
		FirmID:                  suite.firmID,
		TransactionNumber:       "TRF-202609-0002",
		Period:                  "202609",
		Type:                    domain.Transfer,
		Category:                "INTERNAL_TRANSFER",
		Status:                  domain.Completed,
		Amount:                  decimal.NewFromInt(400),
		AmountInAccountCurrency: decimal.NewFromInt(400),
		CurrencyCode:            "USD",
		FromAccountID:           &fromID,
		ToAccountID:             &toID,
		TransactionDate:         time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, original.TransactionID).Return(original, nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").Return(suite.usdCurrency(), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{toID, fromID}).
		Return(map[string]domain.Account{
			fromID: suite.activeAccount(fromID, 600),
			toID:   suite.activeAccount(toID, 400),
		}, nil).Once()
	suite.mockTxnRepo.On("NextTransactionSequence", ctx, suite.firmID, domain.Transfer, mock.AnythingOfType("string")).
		Return(int64(3), nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.Anything, mock.Anything).
		Return(nil).Once()

	reversal, err := suite.service.ReverseTransaction(ctx, suite.firmID, original.TransactionID, dto.ReverseTransactionRequest{Reason: "sent to wrong account"}, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.Transfer, reversal.Type)
	suite.Equal(toID, *reversal.FromAccountID)
	suite.Equal(fromID, *reversal.ToAccountID)
	suite.Equal(original.TransactionNumber, reversal.ExternalRef)
	suite.Contains(reversal.Notes, "Reversal of TRF-202609-0002")
	suite.NotEqual(original.TransactionID, reversal.TransactionID)

	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestReverseTransaction_IncomeBecomesCorrection() {
	ctx := context.Background()
	accountID := uuid.NewString()
	original := &domain.Transaction{
		TransactionID:           uuid.NewString(),
		FirmID:                  suite.firmID,
		TransactionNumber:       "INC-202609-0009",
		Period:                  "202609",
		Type:                    domain.Income,
		Category:                "CLIENT_PAYMENT",
		Status:                  domain.Completed,
		Amount:                  decimal.NewFromInt(150),
		AmountInAccountCurrency: decimal.NewFromInt(150),
		CurrencyCode:            "USD",
		ToAccountID:             &accountID,
		TransactionDate:         time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, original.TransactionID).Return(original, nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").Return(suite.usdCurrency(), nil).Once()
	account := suite.activeAccount(accountID, 150)
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.firmID, []string{accountID}).
		Return(map[string]domain.Account{accountID: account}, nil).Once()
	suite.mockTxnRepo.On("NextTransactionSequence", ctx, suite.firmID, domain.Adjustment, mock.AnythingOfType("string")).
		Return(int64(1), nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.Anything, mock.Anything).
		Return(nil).Once()

	reversal, err := suite.service.ReverseTransaction(ctx, suite.firmID, original.TransactionID, dto.ReverseTransactionRequest{Reason: "bounced payment"}, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.Adjustment, reversal.Type)
	suite.Equal(domain.TransactionCategory("CORRECTION"), reversal.Category)
	suite.True(reversal.Amount.Equal(decimal.NewFromInt(-150)))
	suite.Equal(accountID, *reversal.ToAccountID)
}

func (suite *TransactionServiceTestSuite) TestReverseTransaction_ReconciledRefused() {
	ctx := context.Background()
	accountID := uuid.NewString()
	original := &domain.Transaction{
		TransactionID:     uuid.NewString(),
		FirmID:            suite.firmID,
		TransactionNumber: "EXP-202608-0001",
		Type:              domain.Expense,
		Status:            domain.Completed,
		IsReconciled:      true,
		Amount:            decimal.NewFromInt(80),
		CurrencyCode:      "USD",
		FromAccountID:     &accountID,
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, original.TransactionID).Return(original, nil).Once()

	reversal, err := suite.service.ReverseTransaction(ctx, suite.firmID, original.TransactionID, dto.ReverseTransactionRequest{Reason: "too late"}, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(reversal)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *TransactionServiceTestSuite) TestReverseTransaction_PendingRefused() {
	ctx := context.Background()
	accountID := uuid.NewString()
	txn := suite.pendingExpense(accountID)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, suite.firmID, txn.TransactionID).Return(txn, nil).Once()

	reversal, err := suite.service.ReverseTransaction(ctx, suite.firmID, txn.TransactionID, dto.ReverseTransactionRequest{Reason: "not yet applied"}, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(reversal)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

// --- ListTransactions ---

func (suite *TransactionServiceTestSuite) TestListTransactions_PassesCursor() {
	ctx := context.Background()
	token := "b3BhcXVl"
	next := "bmV4dA"
	expected := []domain.Transaction{{TransactionID: uuid.NewString()}}

	suite.mockTxnRepo.On("ListTransactions", ctx, suite.firmID, mock.AnythingOfType("repositories.TransactionListFilter"), 20, &token).
		Return(expected, &next, nil).Once()

	txns, nextToken, err := suite.service.ListTransactions(ctx, suite.firmID, dto.ListTransactionsParams{NextToken: &token})

	suite.Require().NoError(err)
	suite.Equal(expected, txns)
	suite.Require().NotNil(nextToken)
	suite.Equal(next, *nextToken)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
