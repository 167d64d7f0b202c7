package services

import (
	portsrepo "github.com/firmfin/treasury_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/firmfin/treasury_ledger_app/internal/core/ports/services"
	"github.com/firmfin/treasury_ledger_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Currency = NewCurrencyService(repos.CurrencyRepo)

	// Transaction service first: account creation and reconciliation record
	// their adjustments through it.
	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		repos.AccountRepo,
		WithCurrencyReader(repos.CurrencyRepo),
		WithNumberRetries(cfg.NumberMaxRetries),
	)

	container.Account = NewAccountService(
		repos.AccountRepo,
		WithCurrencyRepository(repos.CurrencyRepo),
		WithTransactionRepository(repos.TransactionRepo),
		WithTransactionService(container.Transaction),
		WithAccountNumberRetries(cfg.NumberMaxRetries),
	)

	container.Reporting = NewReportingService(repos.ReportingRepo)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade     = (*accountService)(nil)
	_ portssvc.TransactionSvcFacade = (*transactionService)(nil)
	_ portssvc.CurrencySvcFacade    = (*currencyService)(nil)
	_ portssvc.ReportingService     = (*reportingService)(nil)
)
