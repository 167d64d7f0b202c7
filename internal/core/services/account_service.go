package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firmfin/treasury_ledger_app/internal/apperrors"
	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	portsrepo "github.com/firmfin/treasury_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/firmfin/treasury_ledger_app/internal/core/ports/services"
	"github.com/firmfin/treasury_ledger_app/internal/dto"
	"github.com/firmfin/treasury_ledger_app/internal/utils/numbering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo     portsrepo.AccountRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade
	currencyRepo    portsrepo.CurrencyReader
	transactionSvc  portssvc.TransactionWriterSvc
	numberRetries   int
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithCurrencyRepository adds currency validation to account creation
func WithCurrencyRepository(repo portsrepo.CurrencyReader) AccountServiceOption {
	return func(s *accountService) {
		s.currencyRepo = repo
	}
}

// WithTransactionRepository lets the service check for pending transactions
// before deactivation.
func WithTransactionRepository(repo portsrepo.TransactionRepositoryFacade) AccountServiceOption {
	return func(s *accountService) {
		s.transactionRepo = repo
	}
}

// WithTransactionService lets the service record opening balances as real
// transactions.
func WithTransactionService(svc portssvc.TransactionWriterSvc) AccountServiceOption {
	return func(s *accountService) {
		s.transactionSvc = svc
	}
}

// WithAccountNumberRetries overrides the number-collision retry budget.
func WithAccountNumberRetries(n int) AccountServiceOption {
	return func(s *accountService) {
		if n > 0 {
			s.numberRetries = n
		}
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo:   repo,
		numberRetries: defaultNumberRetries,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, firmID string, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	if !domain.ValidAccountType(req.AccountType) {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}
	if s.currencyRepo != nil {
		if _, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode); err != nil {
			s.LogError(ctx, err, "Invalid currency code", slog.String("currency_code", req.CurrencyCode))
			return nil, fmt.Errorf("invalid currency code: %w", err)
		}
	}
	if req.MinBalance != nil && req.MaxBalance != nil && req.MinBalance.GreaterThan(*req.MaxBalance) {
		return nil, fmt.Errorf("%w: minimum balance exceeds maximum balance", apperrors.ErrValidation)
	}

	now := time.Now()
	account := domain.Account{
		AccountID:            uuid.NewString(),
		FirmID:               firmID,
		Name:                 req.Name,
		AccountType:          req.AccountType,
		CurrencyCode:         req.CurrencyCode,
		Description:          req.Description,
		CurrentBalance:       decimal.Zero,
		AvailableBalance:     decimal.Zero,
		AllowNegativeBalance: req.AllowNegativeBalance,
		RequireApproval:      req.RequireApproval,
		MinBalance:           req.MinBalance,
		MaxBalance:           req.MaxBalance,
		IsDefault:            req.IsDefault,
		AuthorizedUserIDs:    req.AuthorizedUserIDs,
		ApproverIDs:          req.ApproverIDs,
		IsActive:             true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if req.IsDefault {
		if err := s.accountRepo.ClearDefaultAccount(ctx, firmID, req.CurrencyCode, actorID, now); err != nil {
			s.LogError(ctx, err, "Failed to clear previous default account")
			return nil, err
		}
	}

	if err := s.saveWithNumber(ctx, &account); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("account_number", account.AccountNumber))

	if req.OpeningBalance != nil && !req.OpeningBalance.IsZero() && s.transactionSvc != nil {
		openingReq := dto.CreateTransactionRequest{
			Type:            domain.Adjustment,
			Category:        "OPENING_BALANCE",
			Amount:          *req.OpeningBalance,
			CurrencyCode:    req.CurrencyCode,
			ToAccountID:     &account.AccountID,
			TransactionDate: now,
			Notes:           "Opening balance",
		}
		if _, err := s.transactionSvc.CreateTransaction(ctx, firmID, openingReq, actorID); err != nil {
			s.LogError(ctx, err, "Failed to record opening balance",
				slog.String("account_id", account.AccountID))
			return nil, err
		}
		return s.accountRepo.FindAccountByID(ctx, firmID, account.AccountID)
	}

	return &account, nil
}

// saveWithNumber assigns the next scoped account sequence and persists the
// account, retrying on a collision caused by a concurrent creation in the
// same firm+type scope.
func (s *accountService) saveWithNumber(ctx context.Context, account *domain.Account) error {
	var lastErr error
	for attempt := 0; attempt < s.numberRetries; attempt++ {
		seq, err := s.accountRepo.NextAccountSequence(ctx, account.FirmID, account.AccountType)
		if err != nil {
			return err
		}
		number, err := numbering.AccountNumber(account.AccountType, seq)
		if err != nil {
			return err
		}
		account.Sequence = seq
		account.AccountNumber = number

		err = s.accountRepo.SaveAccount(ctx, *account)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		lastErr = err
		s.LogDebug(ctx, "Account number collision, retrying",
			slog.String("account_number", number), slog.Int("attempt", attempt+1))
	}
	return fmt.Errorf("%w: could not allocate an account number after %d attempts: %v",
		apperrors.ErrConflict, s.numberRetries, lastErr)
}

func (s *accountService) GetAccountByID(ctx context.Context, firmID string, accountID string, actorID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, firmID, accountID)
}

func (s *accountService) GetAccountsByIDs(ctx context.Context, firmID string, accountIDs []string, actorID string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByIDs(ctx, firmID, accountIDs)
}

func (s *accountService) ListAccounts(ctx context.Context, firmID string, params dto.ListAccountsParams) ([]domain.Account, error) {
	filter := portsrepo.AccountListFilter{
		AccountType:     params.AccountType,
		CurrencyCode:    params.CurrencyCode,
		IncludeInactive: params.IncludeInactive,
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	return s.accountRepo.ListAccounts(ctx, firmID, filter, limit, params.Offset)
}

func (s *accountService) UpdateAccount(ctx context.Context, firmID string, accountID string, req dto.UpdateAccountRequest, actorID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, firmID, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find account for update", slog.String("account_id", accountID))
		return nil, err
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrInvalidOperation, account.AccountNumber)
	}
	// Balances are derived state and only ever move through the ledger.
	if req.CurrentBalance != nil || req.AvailableBalance != nil {
		return nil, fmt.Errorf("%w: balances cannot be set directly, record a transaction instead", apperrors.ErrInvalidOperation)
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.AllowNegativeBalance != nil {
		account.AllowNegativeBalance = *req.AllowNegativeBalance
	}
	if req.RequireApproval != nil {
		account.RequireApproval = *req.RequireApproval
	}
	if req.MinBalance != nil {
		account.MinBalance = req.MinBalance
	}
	if req.MaxBalance != nil {
		account.MaxBalance = req.MaxBalance
	}
	if req.AuthorizedUserIDs != nil {
		account.AuthorizedUserIDs = *req.AuthorizedUserIDs
	}
	if req.ApproverIDs != nil {
		account.ApproverIDs = *req.ApproverIDs
	}
	if account.MinBalance != nil && account.MaxBalance != nil && account.MinBalance.GreaterThan(*account.MaxBalance) {
		return nil, fmt.Errorf("%w: minimum balance exceeds maximum balance", apperrors.ErrValidation)
	}

	now := time.Now()
	if req.IsDefault != nil && *req.IsDefault && !account.IsDefault {
		if err := s.accountRepo.ClearDefaultAccount(ctx, firmID, account.CurrencyCode, actorID, now); err != nil {
			return nil, err
		}
		account.IsDefault = true
	} else if req.IsDefault != nil && !*req.IsDefault {
		account.IsDefault = false
	}

	account.LastUpdatedAt = now
	account.LastUpdatedBy = actorID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, firmID string, accountID string, actorID string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, firmID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrInvalidState, account.AccountNumber)
	}

	if s.transactionRepo != nil {
		pending := domain.Pending
		txns, _, err := s.transactionRepo.ListTransactions(ctx, firmID, portsrepo.TransactionListFilter{
			AccountID: &accountID,
			Status:    &pending,
		}, 1, nil)
		if err != nil {
			return err
		}
		if len(txns) > 0 {
			return fmt.Errorf("%w: account %s has pending transactions", apperrors.ErrPreconditionFailed, account.AccountNumber)
		}
	}

	if err := s.accountRepo.DeactivateAccount(ctx, firmID, accountID, actorID, time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_number", account.AccountNumber))
	return nil
}

func (s *accountService) ReconcileAccount(ctx context.Context, firmID string, accountID string, req dto.ReconcileAccountRequest, actorID string) (*domain.ReconciliationResult, error) {
	if s.transactionRepo == nil {
		return nil, fmt.Errorf("%w: reconciliation is not available without a transaction repository", apperrors.ErrInternal)
	}
	account, err := s.accountRepo.FindAccountByID(ctx, firmID, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, account.AccountNumber)
	}
	if !account.AuthorizesUser(actorID) {
		return nil, fmt.Errorf("%w: actor is not authorized on account %s", apperrors.ErrForbidden, account.AccountNumber)
	}

	ledger := account.CurrentBalance
	difference := req.StatementBalance.Sub(ledger)
	result := &domain.ReconciliationResult{
		AccountID:        accountID,
		StatementBalance: req.StatementBalance,
		LedgerBalance:    ledger,
		Difference:       difference,
		Balanced:         difference.IsZero(),
		ReconciledBy:     actorID,
	}

	now := time.Now()
	count, err := s.transactionRepo.MarkReconciled(ctx, firmID, accountID, req.TransactionIDs, req.StatementBalance, req.StatementDate, actorID, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to flag reconciled transactions",
			slog.String("account_id", accountID))
		return nil, err
	}
	result.ReconciledCount = count
	result.ReconciledAt = now

	// The difference is reported, not applied: resolving it takes an explicit
	// adjustment transaction from the caller.
	s.LogInfo(ctx, "Account reconciled",
		slog.String("account_number", account.AccountNumber),
		slog.String("difference", difference.String()),
		slog.Int("transactions_flagged", count))
	return result, nil
}
