package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firmfin/treasury_ledger_app/internal/apperrors"
	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	portsrepo "github.com/firmfin/treasury_ledger_app/internal/core/ports/repositories"
	"github.com/firmfin/treasury_ledger_app/internal/models"
	"github.com/firmfin/treasury_ledger_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, firm_id, account_number, sequence, name, account_type, currency_code, description,
	current_balance, available_balance, allow_negative_balance, require_approval, min_balance, max_balance, is_default,
	authorized_user_ids, approver_ids, is_active, last_reconciled_balance, last_reconciled_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements the facade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// scanAccount reads one account row in accountColumns order.
func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.FirmID,
		&m.AccountNumber,
		&m.Sequence,
		&m.Name,
		&m.AccountType,
		&m.CurrencyCode,
		&m.Description,
		&m.CurrentBalance,
		&m.AvailableBalance,
		&m.AllowNegativeBalance,
		&m.RequireApproval,
		&m.MinBalance,
		&m.MaxBalance,
		&m.IsDefault,
		&m.AuthorizedUserIDs,
		&m.ApproverIDs,
		&m.IsActive,
		&m.LastReconciledBalance,
		&m.LastReconciledAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.FirmID,
		m.AccountNumber,
		m.Sequence,
		m.Name,
		m.AccountType,
		m.CurrencyCode,
		m.Description,
		m.CurrentBalance,
		m.AvailableBalance,
		m.AllowNegativeBalance,
		m.RequireApproval,
		m.MinBalance,
		m.MaxBalance,
		m.IsDefault,
		m.AuthorizedUserIDs,
		m.ApproverIDs,
		m.IsActive,
		m.LastReconciledBalance,
		m.LastReconciledAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: account number %s already exists", apperrors.ErrDuplicate, m.AccountNumber)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID within a firm.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, firmID string, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE firm_id = $1 AND account_id = $2;`

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, firmID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountID))
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountByNumber retrieves an account by its generated number within a firm.
func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, firmID string, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE firm_id = $1 AND account_number = $2;`

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, firmID, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountNumber))
		}
		return nil, fmt.Errorf("failed to find account by number %s: %w", accountNumber, err)
	}

	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts of a firm by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, firmID string, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE firm_id = $1 AND account_id = ANY($2);`

	rows, err := r.Pool.Query(ctx, query, firmID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row during batch fetch: %w", err)
		}
		accountsMap[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows during batch fetch: %w", err)
	}

	// Missing IDs simply do not appear in the map; the caller decides whether
	// that is an error.
	return accountsMap, nil
}

// ListAccounts retrieves a paginated list of accounts for a specific firm.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, firmID string, filter portsrepo.AccountListFilter, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE firm_id = $1`
	args := []any{firmID}
	argPos := 2

	if !filter.IncludeInactive {
		query += ` AND is_active = TRUE`
	}
	if filter.AccountType != nil {
		query += fmt.Sprintf(` AND account_type = $%d`, argPos)
		args = append(args, *filter.AccountType)
		argPos++
	}
	if filter.CurrencyCode != nil {
		query += fmt.Sprintf(` AND currency_code = $%d`, argPos)
		args = append(args, *filter.CurrencyCode)
		argPos++
	}

	query += fmt.Sprintf(` ORDER BY account_number LIMIT $%d OFFSET $%d;`, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for firm %s: %w", firmID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row for firm %s: %w", firmID, err)
		}
		accounts = append(accounts, mapping.ToDomainAccount(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating account rows for firm %s: %w", firmID, rows.Err())
	}

	return accounts, nil
}

// NextAccountSequence returns max+1 of the account sequence within the
// firm+type scope. Two concurrent callers can read the same value; the unique
// index on (firm_id, account_type, sequence) turns the loser's insert into a
// duplicate error the service retries on.
func (r *PgxAccountRepository) NextAccountSequence(ctx context.Context, firmID string, accountType domain.AccountType) (int64, error) {
	query := `SELECT COALESCE(MAX(sequence), 0) + 1 FROM accounts WHERE firm_id = $1 AND account_type = $2;`

	var next int64
	if err := r.Pool.QueryRow(ctx, query, firmID, accountType).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next account sequence: %w", err)
	}
	return next, nil
}

// UpdateAccount updates an existing account's editable fields. Balance and
// numbering columns are deliberately absent from the SET list.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		UPDATE accounts
		SET name = $3, description = $4, allow_negative_balance = $5, require_approval = $6,
			min_balance = $7, max_balance = $8, is_default = $9, authorized_user_ids = $10,
			approver_ids = $11, last_updated_at = $12, last_updated_by = $13
		WHERE firm_id = $1 AND account_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.FirmID,
		m.AccountID,
		m.Name,
		m.Description,
		m.AllowNegativeBalance,
		m.RequireApproval,
		m.MinBalance,
		m.MaxBalance,
		m.IsDefault,
		m.AuthorizedUserIDs,
		m.ApproverIDs,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update account %s: %w", m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", m.AccountID))
	}
	return nil
}

// ClearDefaultAccount unsets is_default on the firm's current default for a currency.
func (r *PgxAccountRepository) ClearDefaultAccount(ctx context.Context, firmID string, currencyCode string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_default = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE firm_id = $1 AND currency_code = $2 AND is_default = TRUE;
	`
	if _, err := r.Pool.Exec(ctx, query, firmID, currencyCode, now, userID); err != nil {
		return fmt.Errorf("failed to clear default account for firm %s currency %s: %w", firmID, currencyCode, err)
	}
	return nil
}

// DeactivateAccount marks an account as inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, firmID string, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE firm_id = $1 AND account_id = $2 AND is_active = TRUE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, firmID, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to execute deactivate account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the account does not exist or it was already inactive.
		if _, findErr := r.FindAccountByID(ctx, firmID, accountID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrInvalidState, accountID)
	}
	return nil
}

// FindAccountsByIDsForUpdate retrieves a firm's accounts by IDs and locks the
// rows for update. The stable ORDER BY keeps concurrent atomic units acquiring
// locks in the same order, which prevents deadlocks between them.
// Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, firmID string, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE firm_id = $1 AND account_id = ANY($2)
		ORDER BY account_id
		FOR UPDATE;`

	rows, err := tx.Query(ctx, query, firmID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	if len(accountsMap) != len(accountIDs) {
		missing := []string{}
		for _, id := range accountIDs {
			if _, found := accountsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// ApplyBalanceDeltasInTx applies current/available balance deltas to multiple
// accounts within a transaction. Callers have already locked the rows and
// validated the resulting balances.
func (r *PgxAccountRepository) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]domain.BalanceDelta, userID string, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET current_balance = current_balance + $2,
			available_balance = available_balance + $3,
			last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1;
	`

	batch := &pgx.Batch{}
	accountIDs := make([]string, 0, len(deltas))
	for accountID, delta := range deltas {
		if delta.IsZero() {
			continue
		}
		batch.Queue(query, accountID, delta.Current, delta.Available, now, userID)
		accountIDs = append(accountIDs, accountID)
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balances for account %s: %w", accountIDs[i], err)
			}
		} else if ct.RowsAffected() == 0 {
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, accountIDs[i])
			}
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}
	return batchErr
}
