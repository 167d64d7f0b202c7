package domain

import "github.com/shopspring/decimal"

// CategoryTotal is one aggregated line of a cash-flow report.
type CategoryTotal struct {
	Type     TransactionType     `json:"type"`
	Category TransactionCategory `json:"category"`
	Total    decimal.Decimal     `json:"total"`
	Count    int64               `json:"count"`
}

// CashFlowReport sums completed transactions by type and category for one
// accounting period and currency. Purely derived; no side effects.
type CashFlowReport struct {
	Period       string          `json:"period"`
	CurrencyCode string          `json:"currencyCode"`
	Inflows      decimal.Decimal `json:"inflows"`
	Outflows     decimal.Decimal `json:"outflows"`
	Net          decimal.Decimal `json:"net"`
	ByCategory   []CategoryTotal `json:"byCategory"`
}

// AccountBalanceRow is one line of the balance-by-currency rollup.
type AccountBalanceRow struct {
	AccountID        string          `json:"accountID"`
	AccountNumber    string          `json:"accountNumber"`
	Name             string          `json:"name"`
	AccountType      AccountType     `json:"accountType"`
	CurrencyCode     string          `json:"currencyCode"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
}

// BalancesReport groups account balances by currency with per-currency totals.
type BalancesReport struct {
	CurrencyCode string              `json:"currencyCode"`
	Accounts     []AccountBalanceRow `json:"accounts"`
	TotalCurrent decimal.Decimal     `json:"totalCurrent"`
}
