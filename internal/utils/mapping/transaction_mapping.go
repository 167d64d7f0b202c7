package mapping

import (
	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	"github.com/firmfin/treasury_ledger_app/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:           d.TransactionID,
		FirmID:                  d.FirmID,
		TransactionNumber:       d.TransactionNumber,
		Sequence:                d.Sequence,
		Period:                  d.Period,
		ExternalRef:             d.ExternalRef,
		Type:                    models.TransactionType(d.Type),
		Category:                string(d.Category),
		Status:                  models.TransactionStatus(d.Status),
		Amount:                  d.Amount,
		CurrencyCode:            d.CurrencyCode,
		ExchangeRate:            d.ExchangeRate,
		AmountInAccountCurrency: d.AmountInAccountCurrency,
		FromAccountID:           d.FromAccountID,
		ToAccountID:             d.ToAccountID,
		RequiresApproval:        d.RequiresApproval,
		ApprovedBy:              d.ApprovedBy,
		ApprovedAt:              d.ApprovedAt,
		ApprovalNotes:           d.ApprovalNotes,
		IsReconciled:            d.IsReconciled,
		ReconciledBy:            d.ReconciledBy,
		ReconciledAt:            d.ReconciledAt,
		BalanceApplied:          d.BalanceApplied,
		VATAmount:               d.VATAmount,
		VATRate:                 d.VATRate,
		VATInclusive:            d.VATInclusive,
		ClientID:                d.ClientID,
		CaseID:                  d.CaseID,
		InvoiceID:               d.InvoiceID,
		TransactionDate:         d.TransactionDate,
		Notes:                   d.Notes,
		CancelReason:            d.CancelReason,
		AuditFields:             ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:           m.TransactionID,
		FirmID:                  m.FirmID,
		TransactionNumber:       m.TransactionNumber,
		Sequence:                m.Sequence,
		Period:                  m.Period,
		ExternalRef:             m.ExternalRef,
		Type:                    domain.TransactionType(m.Type),
		Category:                domain.TransactionCategory(m.Category),
		Status:                  domain.TransactionStatus(m.Status),
		Amount:                  m.Amount,
		CurrencyCode:            m.CurrencyCode,
		ExchangeRate:            m.ExchangeRate,
		AmountInAccountCurrency: m.AmountInAccountCurrency,
		FromAccountID:           m.FromAccountID,
		ToAccountID:             m.ToAccountID,
		RequiresApproval:        m.RequiresApproval,
		ApprovedBy:              m.ApprovedBy,
		ApprovedAt:              m.ApprovedAt,
		ApprovalNotes:           m.ApprovalNotes,
		IsReconciled:            m.IsReconciled,
		ReconciledBy:            m.ReconciledBy,
		ReconciledAt:            m.ReconciledAt,
		BalanceApplied:          m.BalanceApplied,
		VATAmount:               m.VATAmount,
		VATRate:                 m.VATRate,
		VATInclusive:            m.VATInclusive,
		ClientID:                m.ClientID,
		CaseID:                  m.CaseID,
		InvoiceID:               m.InvoiceID,
		TransactionDate:         m.TransactionDate,
		Notes:                   m.Notes,
		CancelReason:            m.CancelReason,
		AuditFields:             ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
