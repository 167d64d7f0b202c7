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
)

const defaultNumberRetries = 3

// systemCategories complete immediately regardless of account approval policy.
// They are generated by the engine itself (account opening), not by an actor
// moving money out of a gated account.
var systemCategories = map[domain.TransactionCategory]bool{
	"OPENING_BALANCE": true,
}

// transactionService implements the TransactionSvcFacade interface
type transactionService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryFacade
	accountRepo     portsrepo.AccountRepositoryFacade
	currencyRepo    portsrepo.CurrencyReader
	numberRetries   int
}

// TransactionServiceOption is a functional option for configuring the transaction service
type TransactionServiceOption func(*transactionService)

// WithCurrencyReader adds currency validation to transaction creation
func WithCurrencyReader(repo portsrepo.CurrencyReader) TransactionServiceOption {
	return func(s *transactionService) {
		s.currencyRepo = repo
	}
}

// WithNumberRetries overrides how many times number generation is retried on
// a sequence collision before giving up with a conflict.
func WithNumberRetries(n int) TransactionServiceOption {
	return func(s *transactionService) {
		if n > 0 {
			s.numberRetries = n
		}
	}
}

// NewTransactionService creates a new transaction service with the provided options
func NewTransactionService(transactionRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, options ...TransactionServiceOption) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		numberRetries:   defaultNumberRetries,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) CreateTransaction(ctx context.Context, firmID string, req dto.CreateTransactionRequest, actorID string) (*domain.Transaction, error) {
	now := time.Now()
	txn := domain.Transaction{
		TransactionID:    uuid.NewString(),
		FirmID:           firmID,
		Type:             req.Type,
		Category:         req.Category,
		Amount:           req.Amount,
		CurrencyCode:     req.CurrencyCode,
		ExchangeRate:     req.ExchangeRate,
		FromAccountID:    req.FromAccountID,
		ToAccountID:      req.ToAccountID,
		ExternalRef:      req.ExternalRef,
		VATAmount:        req.VATAmount,
		VATRate:          req.VATRate,
		VATInclusive:     req.VATInclusive,
		ClientID:         req.ClientID,
		CaseID:           req.CaseID,
		InvoiceID:        req.InvoiceID,
		TransactionDate:  req.TransactionDate,
		Notes:            req.Notes,
		RequiresApproval: req.RequiresApproval,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	return s.create(ctx, txn, actorID)
}

// create runs the shared creation path for user-submitted and engine-generated
// transactions. The caller has filled everything except period, number,
// status and derived amounts.
func (s *transactionService) create(ctx context.Context, txn domain.Transaction, actorID string) (*domain.Transaction, error) {
	if err := txn.Validate(); err != nil {
		s.LogError(ctx, err, "Transaction failed validation", slog.String("firm_id", txn.FirmID))
		return nil, err
	}

	if s.currencyRepo != nil {
		if _, err := s.currencyRepo.FindCurrencyByCode(ctx, txn.CurrencyCode); err != nil {
			s.LogError(ctx, err, "Invalid currency code", slog.String("currency_code", txn.CurrencyCode))
			return nil, fmt.Errorf("invalid currency code: %w", err)
		}
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, txn.FirmID, txn.AccountIDs())
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for transaction")
		return nil, err
	}
	for _, id := range txn.AccountIDs() {
		acc, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, acc.AccountNumber)
		}
		if !acc.AuthorizesUser(actorID) {
			return nil, fmt.Errorf("%w: actor is not authorized on account %s", apperrors.ErrForbidden, acc.AccountNumber)
		}
		if acc.CurrencyCode != txn.CurrencyCode && txn.ExchangeRate == nil {
			return nil, fmt.Errorf("%w: transaction currency %s differs from account currency %s and no exchange rate was given",
				apperrors.ErrValidation, txn.CurrencyCode, acc.CurrencyCode)
		}
	}

	txn.AmountInAccountCurrency = txn.ComputeAccountAmount()
	txn.Period = domain.PeriodOf(txn.TransactionDate)

	full, err := txn.BalanceEffect()
	if err != nil {
		return nil, err
	}

	txn.RequiresApproval = s.needsApproval(txn, full, accounts)

	var deltas map[string]domain.BalanceDelta
	var check portsrepo.BalanceCheck
	if txn.RequiresApproval {
		txn.Status = domain.Pending
		txn.BalanceApplied = false
		deltas, err = txn.HoldEffect()
		if err != nil {
			return nil, err
		}
		check = func(locked map[string]domain.Account) error {
			return domain.ValidateHold(locked, deltas)
		}
	} else {
		txn.Status = domain.Completed
		txn.BalanceApplied = true
		deltas = full
		check = func(locked map[string]domain.Account) error {
			return domain.ValidateApply(locked, deltas)
		}
	}

	if err := s.saveWithNumber(ctx, &txn, deltas, check); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("transaction_number", txn.TransactionNumber),
		slog.String("status", string(txn.Status)))
	return &txn, nil
}

// governingAccounts returns the accounts whose approval policy governs the
// transaction: the receiving account for income, the adjusted account for an
// adjustment, otherwise every account the transaction takes available
// balance from.
func governingAccounts(txn domain.Transaction, full map[string]domain.BalanceDelta) []string {
	switch txn.Type {
	case domain.Income:
		if txn.ToAccountID != nil {
			return []string{*txn.ToAccountID}
		}
		return nil
	case domain.Adjustment:
		if id := txn.AdjustedAccountID(); id != nil {
			return []string{*id}
		}
		return nil
	default:
		ids := make([]string, 0, len(full))
		for id, delta := range full {
			if delta.Available.IsNegative() {
				ids = append(ids, id)
			}
		}
		return ids
	}
}

// needsApproval resolves the gating rule: the caller's explicit request OR
// the policy of any governing account, unless the category is
// engine-generated.
func (s *transactionService) needsApproval(txn domain.Transaction, full map[string]domain.BalanceDelta, accounts map[string]domain.Account) bool {
	if systemCategories[txn.Category] {
		return false
	}
	if txn.RequiresApproval {
		return true
	}
	for _, id := range governingAccounts(txn, full) {
		if accounts[id].RequireApproval {
			return true
		}
	}
	return false
}

// saveWithNumber assigns the next scoped sequence and persists the
// transaction, retrying on a sequence collision caused by a concurrent
// creation in the same firm+type+period scope.
func (s *transactionService) saveWithNumber(ctx context.Context, txn *domain.Transaction, deltas map[string]domain.BalanceDelta, check portsrepo.BalanceCheck) error {
	var lastErr error
	for attempt := 0; attempt < s.numberRetries; attempt++ {
		seq, err := s.transactionRepo.NextTransactionSequence(ctx, txn.FirmID, txn.Type, txn.Period)
		if err != nil {
			return err
		}
		number, err := numbering.TransactionNumber(txn.Type, txn.Period, seq)
		if err != nil {
			return err
		}
		txn.Sequence = seq
		txn.TransactionNumber = number

		err = s.transactionRepo.SaveTransaction(ctx, *txn, deltas, check)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		lastErr = err
		s.LogDebug(ctx, "Transaction number collision, retrying",
			slog.String("transaction_number", number), slog.Int("attempt", attempt+1))
	}
	return fmt.Errorf("%w: could not allocate a transaction number after %d attempts: %v",
		apperrors.ErrConflict, s.numberRetries, lastErr)
}

func (s *transactionService) GetTransactionByID(ctx context.Context, firmID string, transactionID string, actorID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, firmID, transactionID)
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, firmID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	filter := portsrepo.TransactionListFilter{
		AccountID: params.AccountID,
		Type:      params.Type,
		Status:    params.Status,
		Category:  params.Category,
		ClientID:  params.ClientID,
		CaseID:    params.CaseID,
		FromDate:  params.FromDate,
		ToDate:    params.ToDate,
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	return s.transactionRepo.ListTransactions(ctx, firmID, filter, limit, params.NextToken)
}

func (s *transactionService) ApproveTransaction(ctx context.Context, firmID string, transactionID string, req dto.ApproveTransactionRequest, actorID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, firmID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.Pending {
		return nil, fmt.Errorf("%w: transaction %s is %s, only pending transactions can be approved",
			apperrors.ErrInvalidState, txn.TransactionNumber, txn.Status)
	}
	if txn.CreatedBy == actorID {
		return nil, fmt.Errorf("%w: the creator of a transaction cannot approve it", apperrors.ErrForbidden)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, firmID, txn.AccountIDs())
	if err != nil {
		return nil, err
	}
	if !s.actorMayApprove(*txn, accounts, actorID) {
		return nil, fmt.Errorf("%w: no pending transaction %s awaiting this actor's approval",
			apperrors.ErrNotFound, txn.TransactionNumber)
	}

	deltas, err := txn.CompletionEffect()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updated := *txn
	updated.Status = domain.Completed
	updated.BalanceApplied = true
	updated.ApprovedBy = &actorID
	updated.ApprovedAt = &now
	updated.ApprovalNotes = req.Notes
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actorID

	check := func(locked map[string]domain.Account) error {
		return domain.ValidateApply(locked, deltas)
	}
	if err := s.transactionRepo.CompleteTransaction(ctx, updated, deltas, check); err != nil {
		s.LogError(ctx, err, "Failed to approve transaction",
			slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction approved",
		slog.String("transaction_number", updated.TransactionNumber),
		slog.String("approved_by", actorID))
	return &updated, nil
}

// actorMayApprove checks the approver set of every account whose policy
// governs the transaction.
func (s *transactionService) actorMayApprove(txn domain.Transaction, accounts map[string]domain.Account, actorID string) bool {
	full, err := txn.BalanceEffect()
	if err != nil {
		return false
	}
	governing := governingAccounts(txn, full)
	if len(governing) == 0 {
		return false
	}
	for _, id := range governing {
		acc, ok := accounts[id]
		if !ok || !acc.HasApprover(actorID) {
			return false
		}
	}
	return true
}

func (s *transactionService) CancelTransaction(ctx context.Context, firmID string, transactionID string, req dto.CancelTransactionRequest, actorID string) (*domain.Transaction, error) {
	return s.abort(ctx, firmID, transactionID, domain.Cancelled, req.Reason, actorID)
}

func (s *transactionService) FailTransaction(ctx context.Context, firmID string, transactionID string, req dto.FailTransactionRequest, actorID string) (*domain.Transaction, error) {
	return s.abort(ctx, firmID, transactionID, domain.Failed, req.Reason, actorID)
}

// abort takes a pending transaction to CANCELLED or FAILED and releases its
// holds. No balance was applied, so no balance is restored.
func (s *transactionService) abort(ctx context.Context, firmID string, transactionID string, status domain.TransactionStatus, reason string, actorID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, firmID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.Pending {
		return nil, fmt.Errorf("%w: transaction %s is %s, only pending transactions can be %s",
			apperrors.ErrInvalidState, txn.TransactionNumber, txn.Status, status)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, firmID, txn.AccountIDs())
	if err != nil {
		return nil, err
	}
	if txn.CreatedBy != actorID && !s.actorMayApprove(*txn, accounts, actorID) {
		return nil, fmt.Errorf("%w: no pending transaction %s open to this actor",
			apperrors.ErrNotFound, txn.TransactionNumber)
	}

	deltas, err := txn.ReleaseEffect()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updated := *txn
	updated.Status = status
	updated.CancelReason = reason
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actorID

	if err := s.transactionRepo.CancelTransaction(ctx, updated, deltas); err != nil {
		s.LogError(ctx, err, "Failed to abort transaction",
			slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction aborted",
		slog.String("transaction_number", updated.TransactionNumber),
		slog.String("status", string(status)),
		slog.String("aborted_by", actorID))
	return &updated, nil
}

func (s *transactionService) ReverseTransaction(ctx context.Context, firmID string, transactionID string, req dto.ReverseTransactionRequest, actorID string) (*domain.Transaction, error) {
	original, err := s.transactionRepo.FindTransactionByID(ctx, firmID, transactionID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.Completed {
		return nil, fmt.Errorf("%w: transaction %s is %s, only completed transactions can be reversed",
			apperrors.ErrInvalidState, original.TransactionNumber, original.Status)
	}
	if original.IsReconciled {
		return nil, fmt.Errorf("%w: transaction %s is reconciled and can no longer be reversed",
			apperrors.ErrInvalidState, original.TransactionNumber)
	}

	now := time.Now()
	reversal := domain.Transaction{
		TransactionID:   uuid.NewString(),
		FirmID:          firmID,
		CurrencyCode:    original.CurrencyCode,
		ExchangeRate:    original.ExchangeRate,
		ExternalRef:     original.TransactionNumber,
		ClientID:        original.ClientID,
		CaseID:          original.CaseID,
		InvoiceID:       original.InvoiceID,
		TransactionDate: now,
		Notes:           fmt.Sprintf("Reversal of %s: %s", original.TransactionNumber, req.Reason),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	// A transfer reverses as the opposite transfer; everything else reverses
	// as a correcting adjustment that negates the original's account effect.
	switch original.Type {
	case domain.Transfer:
		reversal.Type = domain.Transfer
		reversal.Category = original.Category
		reversal.Amount = original.Amount
		reversal.FromAccountID = original.ToAccountID
		reversal.ToAccountID = original.FromAccountID
	case domain.Income:
		reversal.Type = domain.Adjustment
		reversal.Category = "CORRECTION"
		reversal.Amount = original.Amount.Neg()
		reversal.ToAccountID = original.ToAccountID
	case domain.Expense:
		reversal.Type = domain.Adjustment
		reversal.Category = "CORRECTION"
		reversal.Amount = original.Amount
		reversal.ToAccountID = original.FromAccountID
	case domain.Adjustment:
		reversal.Type = domain.Adjustment
		reversal.Category = "CORRECTION"
		reversal.Amount = original.Amount.Neg()
		reversal.ToAccountID = original.AdjustedAccountID()
	default:
		return nil, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, original.Type)
	}

	created, err := s.create(ctx, reversal, actorID)
	if err != nil {
		s.LogError(ctx, err, "Failed to reverse transaction",
			slog.String("original_transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction reversed",
		slog.String("original_number", original.TransactionNumber),
		slog.String("reversal_number", created.TransactionNumber))
	return created, nil
}
