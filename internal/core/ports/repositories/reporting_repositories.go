package repositories

import (
	"context"

	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// GetCashFlowData aggregates completed transactions of a firm by type and
	// category for one accounting period and currency.
	GetCashFlowData(ctx context.Context, firmID string, period string, currencyCode string) ([]domain.CategoryTotal, error)

	// GetAccountBalances retrieves the balance rollup rows for a firm's active accounts.
	GetAccountBalances(ctx context.Context, firmID string) ([]domain.AccountBalanceRow, error)
}
