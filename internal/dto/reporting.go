package dto

import (
	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CashFlowParams defines query parameters for the cash-flow report.
type CashFlowParams struct {
	Period       string `form:"period" binding:"required,len=6,numeric"` // YYYYMM
	CurrencyCode string `form:"currencyCode" binding:"required,len=3"`
}

// CategoryTotalResponse is one aggregated line of the cash-flow report.
type CategoryTotalResponse struct {
	Type     domain.TransactionType     `json:"type"`
	Category domain.TransactionCategory `json:"category"`
	Total    decimal.Decimal            `json:"total"`
	Count    int64                      `json:"count"`
}

// CashFlowResponse represents the cash-flow report for one period and currency.
type CashFlowResponse struct {
	Period       string                  `json:"period"`
	CurrencyCode string                  `json:"currencyCode"`
	Inflows      decimal.Decimal         `json:"inflows"`
	Outflows     decimal.Decimal         `json:"outflows"`
	Net          decimal.Decimal         `json:"net"`
	ByCategory   []CategoryTotalResponse `json:"byCategory"`
}

// ToCashFlowResponse converts a domain.CashFlowReport to CashFlowResponse DTO.
func ToCashFlowResponse(r *domain.CashFlowReport) CashFlowResponse {
	rows := make([]CategoryTotalResponse, len(r.ByCategory))
	for i, c := range r.ByCategory {
		rows[i] = CategoryTotalResponse{
			Type:     c.Type,
			Category: c.Category,
			Total:    c.Total,
			Count:    c.Count,
		}
	}
	return CashFlowResponse{
		Period:       r.Period,
		CurrencyCode: r.CurrencyCode,
		Inflows:      r.Inflows,
		Outflows:     r.Outflows,
		Net:          r.Net,
		ByCategory:   rows,
	}
}

// AccountBalanceRowResponse is one line of the balances report.
type AccountBalanceRowResponse struct {
	AccountID        string             `json:"accountID"`
	AccountNumber    string             `json:"accountNumber"`
	Name             string             `json:"name"`
	AccountType      domain.AccountType `json:"accountType"`
	CurrencyCode     string             `json:"currencyCode"`
	CurrentBalance   decimal.Decimal    `json:"currentBalance"`
	AvailableBalance decimal.Decimal    `json:"availableBalance"`
}

// BalancesGroupResponse groups account balances for one currency.
type BalancesGroupResponse struct {
	CurrencyCode string                      `json:"currencyCode"`
	Accounts     []AccountBalanceRowResponse `json:"accounts"`
	TotalCurrent decimal.Decimal             `json:"totalCurrent"`
}

// BalancesResponse represents the balances report grouped by currency.
type BalancesResponse struct {
	Currencies []BalancesGroupResponse `json:"currencies"`
}

// ToBalancesResponse converts the per-currency domain reports to the response DTO.
func ToBalancesResponse(reports []domain.BalancesReport) BalancesResponse {
	groups := make([]BalancesGroupResponse, len(reports))
	for i, r := range reports {
		rows := make([]AccountBalanceRowResponse, len(r.Accounts))
		for j, a := range r.Accounts {
			rows[j] = AccountBalanceRowResponse{
				AccountID:        a.AccountID,
				AccountNumber:    a.AccountNumber,
				Name:             a.Name,
				AccountType:      a.AccountType,
				CurrencyCode:     a.CurrencyCode,
				CurrentBalance:   a.CurrentBalance,
				AvailableBalance: a.AvailableBalance,
			}
		}
		groups[i] = BalancesGroupResponse{
			CurrencyCode: r.CurrencyCode,
			Accounts:     rows,
			TotalCurrent: r.TotalCurrent,
		}
	}
	return BalancesResponse{Currencies: groups}
}
