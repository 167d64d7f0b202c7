package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/firmfin/treasury_ledger_app/internal/apperrors"
	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	portssvc "github.com/firmfin/treasury_ledger_app/internal/core/ports/services"
	"github.com/firmfin/treasury_ledger_app/internal/dto"
	"github.com/firmfin/treasury_ledger_app/internal/handlers"
	"github.com/firmfin/treasury_ledger_app/internal/middleware"
	"github.com/firmfin/treasury_ledger_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, firmID string, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	args := m.Called(ctx, firmID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByID(ctx context.Context, firmID string, accountID string, actorID string) (*domain.Account, error) {
	args := m.Called(ctx, firmID, accountID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, firmID string, accountIDs []string, actorID string) (map[string]domain.Account, error) {
	args := m.Called(ctx, firmID, accountIDs, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, firmID string, params dto.ListAccountsParams) ([]domain.Account, error) {
	args := m.Called(ctx, firmID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, firmID string, accountID string, req dto.UpdateAccountRequest, actorID string) (*domain.Account, error) {
	args := m.Called(ctx, firmID, accountID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, firmID string, accountID string, actorID string) error {
	args := m.Called(ctx, firmID, accountID, actorID)
	return args.Error(0)
}
func (m *MockAccountService) ReconcileAccount(ctx context.Context, firmID string, accountID string, req dto.ReconcileAccountRequest, actorID string) (*domain.ReconciliationResult, error) {
	args := m.Called(ctx, firmID, accountID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationResult), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) CreateTransaction(ctx context.Context, firmID string, req dto.CreateTransactionRequest, actorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, firmID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) GetTransactionByID(ctx context.Context, firmID string, transactionID string, actorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, firmID, transactionID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) ListTransactions(ctx context.Context, firmID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, firmID, params)
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
func (m *MockTransactionService) ApproveTransaction(ctx context.Context, firmID string, transactionID string, req dto.ApproveTransactionRequest, actorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, firmID, transactionID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) CancelTransaction(ctx context.Context, firmID string, transactionID string, req dto.CancelTransactionRequest, actorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, firmID, transactionID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) FailTransaction(ctx context.Context, firmID string, transactionID string, req dto.FailTransactionRequest, actorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, firmID, transactionID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) ReverseTransaction(ctx context.Context, firmID string, transactionID string, req dto.ReverseTransactionRequest, actorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, firmID, transactionID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock CurrencyService ---
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

var _ portssvc.CurrencySvcFacade = (*MockCurrencyService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) GetCashFlow(ctx context.Context, firmID string, period string, currencyCode string) (*domain.CashFlowReport, error) {
	args := m.Called(ctx, firmID, period, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashFlowReport), args.Error(1)
}
func (m *MockReportingService) GetBalances(ctx context.Context, firmID string) ([]domain.BalancesReport, error) {
	args := m.Called(ctx, firmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BalancesReport), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router                 *gin.Engine
	mockAccountService     *MockAccountService
	mockTransactionService *MockTransactionService
	mockCurrencyService    *MockCurrencyService
	mockReportingService   *MockReportingService
	jwtSecret              string

	firmID  string
	actorID string
}

// generateTestToken creates a dummy JWT carrying the actor and firm claims.
func (suite *AccountHandlerTestSuite) generateTestToken(actorID string, firmID string) string {
	claims := middleware.LedgerClaims{
		FirmID: firmID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ledger-test",
			Subject:   actorID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedString, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signedString
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.firmID = uuid.NewString()
	suite.actorID = uuid.NewString()

	suite.mockAccountService = new(MockAccountService)
	suite.mockTransactionService = new(MockTransactionService)
	suite.mockCurrencyService = new(MockCurrencyService)
	suite.mockReportingService = new(MockReportingService)

	cfg := &config.Config{
		JWTSecret:    suite.jwtSecret,
		IsProduction: true, // no swagger routes in tests
	}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Account:     suite.mockAccountService,
		Transaction: suite.mockTransactionService,
		Currency:    suite.mockCurrencyService,
		Reporting:   suite.mockReportingService,
	})
}

// do performs an authenticated request against the test router.
func (suite *AccountHandlerTestSuite) do(method string, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.actorID, suite.firmID))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	req := dto.CreateAccountRequest{
		Name:         "Main Operating",
		AccountType:  domain.Bank,
		CurrencyCode: "USD",
	}
	created := &domain.Account{
		AccountID:     uuid.NewString(),
		FirmID:        suite.firmID,
		AccountNumber: "BNK-000001",
		Name:          req.Name,
		AccountType:   domain.Bank,
		CurrencyCode:  "USD",
		IsActive:      true,
	}

	suite.mockAccountService.On("CreateAccount",
		mock.AnythingOfType("*context.valueCtx"),
		suite.firmID,
		mock.MatchedBy(func(r dto.CreateAccountRequest) bool { return r.Name == req.Name }),
		suite.actorID,
	).Return(created, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", req)

	suite.Equal(http.StatusCreated, w.Code)
	var body dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(created.AccountID, body.AccountID)
	suite.Equal("BNK-000001", body.AccountNumber)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFoundMapsTo404() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("GetAccountByID",
		mock.AnythingOfType("*context.valueCtx"), suite.firmID, accountID, suite.actorID,
	).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/"+accountID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestCreateTransaction_InsufficientFundsMapsTo422() {
	accountID := uuid.NewString()
	req := dto.CreateTransactionRequest{
		Type:            domain.Expense,
		Category:        "TRAVEL",
		Amount:          decimal.NewFromInt(500),
		CurrencyCode:    "USD",
		FromAccountID:   &accountID,
		TransactionDate: time.Now().UTC(),
	}

	suite.mockTransactionService.On("CreateTransaction",
		mock.AnythingOfType("*context.valueCtx"), suite.firmID, mock.AnythingOfType("dto.CreateTransactionRequest"), suite.actorID,
	).Return(nil, fmt.Errorf("%w: account BNK-000001 available balance would be -100", apperrors.ErrInsufficientFunds)).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", req)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *AccountHandlerTestSuite) TestApproveTransaction_ForbiddenMapsTo403() {
	transactionID := uuid.NewString()

	suite.mockTransactionService.On("ApproveTransaction",
		mock.AnythingOfType("*context.valueCtx"), suite.firmID, transactionID, mock.AnythingOfType("dto.ApproveTransactionRequest"), suite.actorID,
	).Return(nil, fmt.Errorf("%w: the creator of a transaction cannot approve it", apperrors.ErrForbidden)).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions/"+transactionID+"/approve", dto.ApproveTransactionRequest{})

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *AccountHandlerTestSuite) TestCancelTransaction_MissingReasonRejected() {
	transactionID := uuid.NewString()

	w := suite.do(http.MethodPost, "/api/v1/transactions/"+transactionID+"/cancel", map[string]string{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTransactionService.AssertNotCalled(suite.T(), "CancelTransaction",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestReconcileAccount_Success() {
	accountID := uuid.NewString()
	statementDate := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	txnIDs := []string{uuid.NewString(), uuid.NewString()}
	result := &domain.ReconciliationResult{
		AccountID:        accountID,
		StatementBalance: decimal.NewFromInt(2460),
		LedgerBalance:    decimal.NewFromInt(2500),
		Difference:       decimal.NewFromInt(-40),
		Balanced:         false,
		ReconciledCount:  2,
		ReconciledAt:     time.Now(),
		ReconciledBy:     suite.actorID,
	}

	suite.mockAccountService.On("ReconcileAccount",
		mock.AnythingOfType("*context.valueCtx"), suite.firmID, accountID,
		mock.MatchedBy(func(r dto.ReconcileAccountRequest) bool {
			return r.StatementBalance.Equal(decimal.NewFromInt(2460)) && len(r.TransactionIDs) == 2
		}),
		suite.actorID,
	).Return(result, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/"+accountID+"/reconcile", dto.ReconcileAccountRequest{
		StatementBalance: decimal.NewFromInt(2460),
		StatementDate:    statementDate,
		TransactionIDs:   txnIDs,
	})

	suite.Equal(http.StatusOK, w.Code)
	var body dto.ReconcileAccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.False(body.Balanced)
	suite.True(body.Difference.Equal(decimal.NewFromInt(-40)))
	suite.Equal(2, body.ReconciledCount)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestListTransactions_ReturnsNextToken() {
	next := "b3BhcXVlLXRva2Vu"
	txns := []domain.Transaction{
		{TransactionID: uuid.NewString(), FirmID: suite.firmID, TransactionNumber: "INC-202609-0001", Type: domain.Income, Status: domain.Completed},
	}

	suite.mockTransactionService.On("ListTransactions",
		mock.AnythingOfType("*context.valueCtx"), suite.firmID,
		mock.MatchedBy(func(p dto.ListTransactionsParams) bool { return p.Limit == 10 }),
	).Return(txns, &next, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/transactions?limit=10", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body.Transactions, 1)
	suite.Require().NotNil(body.NextToken)
	suite.Equal(next, *body.NextToken)
}

func (suite *AccountHandlerTestSuite) TestMissingToken_Unauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything, mock.Anything, mock.Anything)
}

// --- Run Test Suite ---
func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
