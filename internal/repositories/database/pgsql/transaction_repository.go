package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/firmfin/treasury_ledger_app/internal/apperrors"
	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	portsrepo "github.com/firmfin/treasury_ledger_app/internal/core/ports/repositories"
	"github.com/firmfin/treasury_ledger_app/internal/models"
	"github.com/firmfin/treasury_ledger_app/internal/utils/mapping"
	"github.com/firmfin/treasury_ledger_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, firm_id, transaction_number, sequence, period, external_ref,
	type, category, status, amount, currency_code, exchange_rate, amount_in_account_currency,
	from_account_id, to_account_id, requires_approval, approved_by, approved_at, approval_notes,
	is_reconciled, reconciled_by, reconciled_at, balance_applied,
	vat_amount, vat_rate, vat_inclusive, client_id, case_id, invoice_id,
	transaction_date, notes, cancel_reason, created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxTransactionRepository creates a new repository for transaction data.
// The account repository is injected for the lock-and-apply steps of the
// atomic units.
func newPgxTransactionRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxTransactionRepository implements the facade with tx support
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

// scanTransaction reads one transaction row in transactionColumns order.
func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.FirmID,
		&m.TransactionNumber,
		&m.Sequence,
		&m.Period,
		&m.ExternalRef,
		&m.Type,
		&m.Category,
		&m.Status,
		&m.Amount,
		&m.CurrencyCode,
		&m.ExchangeRate,
		&m.AmountInAccountCurrency,
		&m.FromAccountID,
		&m.ToAccountID,
		&m.RequiresApproval,
		&m.ApprovedBy,
		&m.ApprovedAt,
		&m.ApprovalNotes,
		&m.IsReconciled,
		&m.ReconciledBy,
		&m.ReconciledAt,
		&m.BalanceApplied,
		&m.VATAmount,
		&m.VATRate,
		&m.VATInclusive,
		&m.ClientID,
		&m.CaseID,
		&m.InvoiceID,
		&m.TransactionDate,
		&m.Notes,
		&m.CancelReason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// lockAccounts locks every account the transaction touches, including
// delta-free ones, so validation sees a consistent snapshot.
func (r *PgxTransactionRepository) lockAccounts(ctx context.Context, tx pgx.Tx, txn domain.Transaction) (map[string]domain.Account, error) {
	return r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, txn.FirmID, txn.AccountIDs())
}

// SaveTransaction persists a new transaction and applies its balance deltas
// within one database transaction.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction, deltas map[string]domain.BalanceDelta, check portsrepo.BalanceCheck) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	locked, err := r.lockAccounts(ctx, tx, txn)
	if err != nil {
		return err
	}
	if check != nil {
		if err := check(locked); err != nil {
			return err
		}
	}

	if err := r.insertTransactionInTx(ctx, tx, txn); err != nil {
		return err
	}

	if err := r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, txn.CreatedBy, txn.CreatedAt); err != nil {
		return fmt.Errorf("failed to apply balance deltas for transaction %s: %w", txn.TransactionID, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxTransactionRepository) insertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.FirmID,
		m.TransactionNumber,
		m.Sequence,
		m.Period,
		m.ExternalRef,
		m.Type,
		m.Category,
		m.Status,
		m.Amount,
		m.CurrencyCode,
		m.ExchangeRate,
		m.AmountInAccountCurrency,
		m.FromAccountID,
		m.ToAccountID,
		m.RequiresApproval,
		m.ApprovedBy,
		m.ApprovedAt,
		m.ApprovalNotes,
		m.IsReconciled,
		m.ReconciledBy,
		m.ReconciledAt,
		m.BalanceApplied,
		m.VATAmount,
		m.VATRate,
		m.VATInclusive,
		m.ClientID,
		m.CaseID,
		m.InvoiceID,
		m.TransactionDate,
		m.Notes,
		m.CancelReason,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: transaction number %s already exists", apperrors.ErrDuplicate, m.TransactionNumber)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// CompleteTransaction transitions a pending transaction to COMPLETED and
// applies the completion deltas. The guarded UPDATE makes the transition and
// the balance effect exactly-once: a concurrent approval loses the race, sees
// zero rows affected, and aborts without touching balances.
func (r *PgxTransactionRepository) CompleteTransaction(ctx context.Context, txn domain.Transaction, deltas map[string]domain.BalanceDelta, check portsrepo.BalanceCheck) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	locked, err := r.lockAccounts(ctx, tx, txn)
	if err != nil {
		return err
	}
	if check != nil {
		if err := check(locked); err != nil {
			return err
		}
	}

	m := mapping.ToModelTransaction(txn)
	query := `
		UPDATE transactions
		SET status = $3, balance_applied = TRUE, approved_by = $4, approved_at = $5, approval_notes = $6,
			last_updated_at = $7, last_updated_by = $8
		WHERE firm_id = $1 AND transaction_id = $2 AND status = 'PENDING' AND balance_applied = FALSE;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.FirmID,
		m.TransactionID,
		m.Status,
		m.ApprovedBy,
		m.ApprovedAt,
		m.ApprovalNotes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to complete transaction %s: %w", m.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s is no longer pending", apperrors.ErrInvalidState, m.TransactionNumber)
	}

	if err := r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, txn.LastUpdatedBy, txn.LastUpdatedAt); err != nil {
		return fmt.Errorf("failed to apply completion deltas for transaction %s: %w", m.TransactionID, err)
	}

	return r.Commit(ctx, tx)
}

// CancelTransaction transitions a pending transaction to CANCELLED and
// releases its holds, guarded the same way as completion.
func (r *PgxTransactionRepository) CancelTransaction(ctx context.Context, txn domain.Transaction, deltas map[string]domain.BalanceDelta) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := r.lockAccounts(ctx, tx, txn); err != nil {
		return err
	}

	m := mapping.ToModelTransaction(txn)
	query := `
		UPDATE transactions
		SET status = $3, cancel_reason = $4, last_updated_at = $5, last_updated_by = $6
		WHERE firm_id = $1 AND transaction_id = $2 AND status = 'PENDING' AND balance_applied = FALSE;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.FirmID,
		m.TransactionID,
		m.Status,
		m.CancelReason,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel transaction %s: %w", m.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s is no longer pending", apperrors.ErrInvalidState, m.TransactionNumber)
	}

	if err := r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, txn.LastUpdatedBy, txn.LastUpdatedAt); err != nil {
		return fmt.Errorf("failed to release holds for transaction %s: %w", m.TransactionID, err)
	}

	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves a specific transaction within a firm.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, firmID string, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE firm_id = $1 AND transaction_id = $2;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, firmID, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("transaction %s not found", transactionID))
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}

	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// ListTransactions retrieves a filtered, paginated list of a firm's
// transactions using token-based pagination ordered by transaction date then
// creation time, newest first.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, firmID string, filter portsrepo.TransactionListFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether a next page exists.
	fetchLimit := limit + 1

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE firm_id = $1`
	args := []any{firmID}

	addArg := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}

	if filter.AccountID != nil {
		addArg(` AND (from_account_id = $%[1]d OR to_account_id = $%[1]d)`, *filter.AccountID)
	}
	if filter.Type != nil {
		addArg(` AND type = $%d`, *filter.Type)
	}
	if filter.Status != nil {
		addArg(` AND status = $%d`, *filter.Status)
	}
	if filter.Category != nil {
		addArg(` AND category = $%d`, *filter.Category)
	}
	if filter.ClientID != nil {
		addArg(` AND client_id = $%d`, *filter.ClientID)
	}
	if filter.CaseID != nil {
		addArg(` AND case_id = $%d`, *filter.CaseID)
	}
	if filter.FromDate != nil {
		addArg(` AND transaction_date >= $%d`, *filter.FromDate)
	}
	if filter.ToDate != nil {
		addArg(` AND transaction_date <= $%d`, *filter.ToDate)
	}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		query += fmt.Sprintf(` AND (transaction_date, created_at) < ($%d, $%d)`, len(args)-1, len(args))
	}

	query += ` ORDER BY transaction_date DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for firm %s: %w", firmID, err)
	}
	defer rows.Close()

	modelTxns := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		modelTxns = append(modelTxns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	var newNextToken *string
	if len(modelTxns) == fetchLimit {
		last := modelTxns[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt)
		newNextToken = &token
		modelTxns = modelTxns[:limit]
	}

	return mapping.ToDomainTransactionSlice(modelTxns), newNextToken, nil
}

// NextTransactionSequence returns max+1 of the transaction sequence within the
// firm+type+period scope. Collisions between concurrent creators surface as a
// duplicate error from SaveTransaction and are retried by the service.
func (r *PgxTransactionRepository) NextTransactionSequence(ctx context.Context, firmID string, txType domain.TransactionType, period string) (int64, error) {
	query := `SELECT COALESCE(MAX(sequence), 0) + 1 FROM transactions WHERE firm_id = $1 AND type = $2 AND period = $3;`

	var next int64
	if err := r.Pool.QueryRow(ctx, query, firmID, txType, period).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next transaction sequence: %w", err)
	}
	return next, nil
}

// MarkReconciled flags the listed transactions as reconciled and stamps the
// account's reconciliation fields, all in one database transaction. Every
// listed transaction must belong to the account and be completed; otherwise
// the whole unit rolls back and nothing is flagged.
func (r *PgxTransactionRepository) MarkReconciled(ctx context.Context, firmID string, accountID string, transactionIDs []string, statementBalance decimal.Decimal, asOf time.Time, userID string, now time.Time) (int, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	count := 0
	if len(transactionIDs) > 0 {
		txnQuery := `
			UPDATE transactions
			SET status = 'RECONCILED', is_reconciled = TRUE, reconciled_by = $3, reconciled_at = $4,
				last_updated_at = $4, last_updated_by = $3
			WHERE firm_id = $1
				AND transaction_id = ANY($5)
				AND (from_account_id = $2 OR to_account_id = $2)
				AND status = 'COMPLETED'
				AND is_reconciled = FALSE;
		`
		cmdTag, err := tx.Exec(ctx, txnQuery, firmID, accountID, userID, now, transactionIDs)
		if err != nil {
			return 0, fmt.Errorf("failed to flag reconciled transactions for account %s: %w", accountID, err)
		}
		count = int(cmdTag.RowsAffected())
		// Fewer rows than IDs means at least one listed transaction does not
		// belong to the account or is not completed. Nothing is applied.
		if count != len(transactionIDs) {
			return 0, fmt.Errorf("%w: a listed transaction does not belong to account %s or is not completed",
				apperrors.ErrValidation, accountID)
		}
	}

	accQuery := `
		UPDATE accounts
		SET last_reconciled_balance = $3, last_reconciled_at = $4, last_updated_at = $5, last_updated_by = $6
		WHERE firm_id = $1 AND account_id = $2;
	`
	accTag, err := tx.Exec(ctx, accQuery, firmID, accountID, statementBalance, asOf, now, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to stamp reconciliation on account %s: %w", accountID, err)
	}
	if accTag.RowsAffected() == 0 {
		return 0, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountID))
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return count, nil
}
