package mapping

import (
	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	"github.com/firmfin/treasury_ledger_app/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:             d.AccountID,
		FirmID:                d.FirmID,
		AccountNumber:         d.AccountNumber,
		Sequence:              d.Sequence,
		Name:                  d.Name,
		AccountType:           models.AccountType(d.AccountType),
		CurrencyCode:          d.CurrencyCode,
		Description:           d.Description,
		CurrentBalance:        d.CurrentBalance,
		AvailableBalance:      d.AvailableBalance,
		AllowNegativeBalance:  d.AllowNegativeBalance,
		RequireApproval:       d.RequireApproval,
		MinBalance:            d.MinBalance,
		MaxBalance:            d.MaxBalance,
		IsDefault:             d.IsDefault,
		AuthorizedUserIDs:     d.AuthorizedUserIDs,
		ApproverIDs:           d.ApproverIDs,
		IsActive:              d.IsActive,
		LastReconciledBalance: d.LastReconciledBalance,
		LastReconciledAt:      d.LastReconciledAt,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:             m.AccountID,
		FirmID:                m.FirmID,
		AccountNumber:         m.AccountNumber,
		Sequence:              m.Sequence,
		Name:                  m.Name,
		AccountType:           domain.AccountType(m.AccountType),
		CurrencyCode:          m.CurrencyCode,
		Description:           m.Description,
		CurrentBalance:        m.CurrentBalance,
		AvailableBalance:      m.AvailableBalance,
		AllowNegativeBalance:  m.AllowNegativeBalance,
		RequireApproval:       m.RequireApproval,
		MinBalance:            m.MinBalance,
		MaxBalance:            m.MaxBalance,
		IsDefault:             m.IsDefault,
		AuthorizedUserIDs:     m.AuthorizedUserIDs,
		ApproverIDs:           m.ApproverIDs,
		IsActive:              m.IsActive,
		LastReconciledBalance: m.LastReconciledBalance,
		LastReconciledAt:      m.LastReconciledAt,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
