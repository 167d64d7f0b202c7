package pgsql

import (
	"context"
	"fmt"

	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	portsrepo "github.com/firmfin/treasury_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a repository for read-only report queries.
func newReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// GetCashFlowData aggregates a firm's applied transactions by type and
// category for one accounting period and currency. Reconciled transactions
// remain part of history, so both terminal applied states count.
func (r *reportingRepository) GetCashFlowData(ctx context.Context, firmID string, period string, currencyCode string) ([]domain.CategoryTotal, error) {
	query := `
		SELECT type, category, SUM(amount), COUNT(*)
		FROM transactions
		WHERE firm_id = $1
			AND period = $2
			AND currency_code = $3
			AND status IN ('COMPLETED', 'RECONCILED')
		GROUP BY type, category
		ORDER BY type, category;
	`
	rows, err := r.Pool.Query(ctx, query, firmID, period, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate cash flow for firm %s period %s: %w", firmID, period, err)
	}
	defer rows.Close()

	totals := []domain.CategoryTotal{}
	for rows.Next() {
		var t domain.CategoryTotal
		if err := rows.Scan(&t.Type, &t.Category, &t.Total, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan cash flow row: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash flow rows: %w", err)
	}
	return totals, nil
}

// GetAccountBalances retrieves the balance rollup rows for a firm's active accounts.
func (r *reportingRepository) GetAccountBalances(ctx context.Context, firmID string) ([]domain.AccountBalanceRow, error) {
	query := `
		SELECT account_id, account_number, name, account_type, currency_code, current_balance, available_balance
		FROM accounts
		WHERE firm_id = $1 AND is_active = TRUE
		ORDER BY currency_code, account_number;
	`
	rows, err := r.Pool.Query(ctx, query, firmID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account balances for firm %s: %w", firmID, err)
	}
	defer rows.Close()

	balances := []domain.AccountBalanceRow{}
	for rows.Next() {
		var b domain.AccountBalanceRow
		if err := rows.Scan(&b.AccountID, &b.AccountNumber, &b.Name, &b.AccountType, &b.CurrencyCode, &b.CurrentBalance, &b.AvailableBalance); err != nil {
			return nil, fmt.Errorf("failed to scan account balance row: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account balance rows: %w", err)
	}
	return balances, nil
}
