package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/firmfin/treasury_ledger_app/internal/apperrors"
	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	portsrepo "github.com/firmfin/treasury_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/firmfin/treasury_ledger_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new reporting service
func NewReportingService(repo portsrepo.ReportingRepository) portssvc.ReportingService {
	return &reportingService{reportingRepo: repo}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

func (s *reportingService) GetCashFlow(ctx context.Context, firmID string, period string, currencyCode string) (*domain.CashFlowReport, error) {
	if _, err := time.Parse("200601", period); err != nil {
		return nil, fmt.Errorf("%w: period must be YYYYMM", apperrors.ErrValidation)
	}

	rows, err := s.reportingRepo.GetCashFlowData(ctx, firmID, period, currencyCode)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate cash flow data", "firm_id", firmID, "period", period)
		return nil, err
	}

	report := &domain.CashFlowReport{
		Period:       period,
		CurrencyCode: currencyCode,
		Inflows:      decimal.Zero,
		Outflows:     decimal.Zero,
		ByCategory:   rows,
	}

	// Transfers move money between the firm's own accounts, so they show in
	// the category breakdown but stay out of the inflow/outflow totals.
	for _, row := range rows {
		switch row.Type {
		case domain.Income:
			report.Inflows = report.Inflows.Add(row.Total)
		case domain.Expense:
			report.Outflows = report.Outflows.Add(row.Total)
		case domain.Adjustment:
			if row.Total.IsNegative() {
				report.Outflows = report.Outflows.Add(row.Total.Abs())
			} else {
				report.Inflows = report.Inflows.Add(row.Total)
			}
		}
	}
	report.Net = report.Inflows.Sub(report.Outflows)
	return report, nil
}

func (s *reportingService) GetBalances(ctx context.Context, firmID string) ([]domain.BalancesReport, error) {
	rows, err := s.reportingRepo.GetAccountBalances(ctx, firmID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch account balances", "firm_id", firmID)
		return nil, err
	}

	byCurrency := make(map[string]*domain.BalancesReport)
	for _, row := range rows {
		report, ok := byCurrency[row.CurrencyCode]
		if !ok {
			report = &domain.BalancesReport{
				CurrencyCode: row.CurrencyCode,
				TotalCurrent: decimal.Zero,
			}
			byCurrency[row.CurrencyCode] = report
		}
		report.Accounts = append(report.Accounts, row)
		report.TotalCurrent = report.TotalCurrent.Add(row.CurrentBalance)
	}

	codes := make([]string, 0, len(byCurrency))
	for code := range byCurrency {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	reports := make([]domain.BalancesReport, 0, len(codes))
	for _, code := range codes {
		reports = append(reports, *byCurrency[code])
	}
	return reports, nil
}
