package services

import (
	"context"

	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
)

// CurrencySvcFacade defines operations for currency master data.
type CurrencySvcFacade interface {
	// GetCurrencyByCode retrieves a currency by its ISO 4217 code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all supported currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}
