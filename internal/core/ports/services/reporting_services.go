package services

import (
	"context"

	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
)

// ReportingService defines read-only financial report generation.
type ReportingService interface {
	// GetCashFlow builds the cash-flow report for one accounting period and currency.
	GetCashFlow(ctx context.Context, firmID string, period string, currencyCode string) (*domain.CashFlowReport, error)

	// GetBalances builds the per-currency balance rollup for a firm's active accounts.
	GetBalances(ctx context.Context, firmID string) ([]domain.BalancesReport, error)
}
