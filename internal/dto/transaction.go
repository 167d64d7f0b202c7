package dto

import (
	"time"

	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to record a transaction.
// The transaction number, status and balance effects are derived server-side.
type CreateTransactionRequest struct {
	Type            domain.TransactionType     `json:"type" binding:"required,oneof=INCOME EXPENSE TRANSFER ADJUSTMENT"`
	Category        domain.TransactionCategory `json:"category" binding:"required"`
	Amount          decimal.Decimal            `json:"amount" binding:"required"`
	CurrencyCode    string                     `json:"currencyCode" binding:"required,len=3"`
	ExchangeRate    *decimal.Decimal           `json:"exchangeRate"` // Required when currency differs from account currency
	FromAccountID   *string                    `json:"fromAccountID"`
	ToAccountID     *string                    `json:"toAccountID"`
	TransactionDate time.Time                  `json:"transactionDate" binding:"required"`
	ExternalRef     string                     `json:"externalRef"`
	VATAmount       *decimal.Decimal           `json:"vatAmount"`
	VATRate         *decimal.Decimal           `json:"vatRate"`
	VATInclusive    bool                       `json:"vatInclusive"`
	ClientID        string                     `json:"clientID"`
	CaseID          string                     `json:"caseID"`
	InvoiceID       string                     `json:"invoiceID"`
	Notes           string                     `json:"notes"`
	// RequiresApproval forces the transaction to go pending even when no
	// involved account's policy would gate it.
	RequiresApproval bool `json:"requiresApproval"`
}

// ApproveTransactionRequest carries the approver's optional notes.
type ApproveTransactionRequest struct {
	Notes string `json:"notes"`
}

// CancelTransactionRequest carries the mandatory cancellation reason.
type CancelTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// FailTransactionRequest carries the reason a pending transaction is being
// marked failed (e.g. the underlying payment bounced).
type FailTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ReverseTransactionRequest defines the data needed to reverse a completed
// transaction. The reversal is a new offsetting transaction; the original is
// never edited.
type ReverseTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID           string                     `json:"transactionID"`
	FirmID                  string                     `json:"firmID"`
	TransactionNumber       string                     `json:"transactionNumber"`
	Period                  string                     `json:"period"`
	ExternalRef             string                     `json:"externalRef,omitempty"`
	Type                    domain.TransactionType     `json:"type"`
	Category                domain.TransactionCategory `json:"category"`
	Status                  domain.TransactionStatus   `json:"status"`
	Amount                  decimal.Decimal            `json:"amount"`
	CurrencyCode            string                     `json:"currencyCode"`
	ExchangeRate            *decimal.Decimal           `json:"exchangeRate,omitempty"`
	AmountInAccountCurrency decimal.Decimal            `json:"amountInAccountCurrency"`
	FromAccountID           *string                    `json:"fromAccountID,omitempty"`
	ToAccountID             *string                    `json:"toAccountID,omitempty"`
	RequiresApproval        bool                       `json:"requiresApproval"`
	ApprovedBy              *string                    `json:"approvedBy,omitempty"`
	ApprovedAt              *time.Time                 `json:"approvedAt,omitempty"`
	ApprovalNotes           string                     `json:"approvalNotes,omitempty"`
	IsReconciled            bool                       `json:"isReconciled"`
	ReconciledBy            *string                    `json:"reconciledBy,omitempty"`
	ReconciledAt            *time.Time                 `json:"reconciledAt,omitempty"`
	VATAmount               *decimal.Decimal           `json:"vatAmount,omitempty"`
	VATRate                 *decimal.Decimal           `json:"vatRate,omitempty"`
	VATInclusive            bool                       `json:"vatInclusive"`
	ClientID                string                     `json:"clientID,omitempty"`
	CaseID                  string                     `json:"caseID,omitempty"`
	InvoiceID               string                     `json:"invoiceID,omitempty"`
	TransactionDate         time.Time                  `json:"transactionDate"`
	Notes                   string                     `json:"notes,omitempty"`
	CancelReason            string                     `json:"cancelReason,omitempty"`
	CreatedAt               time.Time                  `json:"createdAt"`
	CreatedBy               string                     `json:"createdBy"`
	LastUpdatedAt           time.Time                  `json:"lastUpdatedAt"`
	LastUpdatedBy           string                     `json:"lastUpdatedBy"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:           txn.TransactionID,
		FirmID:                  txn.FirmID,
		TransactionNumber:       txn.TransactionNumber,
		Period:                  txn.Period,
		ExternalRef:             txn.ExternalRef,
		Type:                    txn.Type,
		Category:                txn.Category,
		Status:                  txn.Status,
		Amount:                  txn.Amount,
		CurrencyCode:            txn.CurrencyCode,
		ExchangeRate:            txn.ExchangeRate,
		AmountInAccountCurrency: txn.AmountInAccountCurrency,
		FromAccountID:           txn.FromAccountID,
		ToAccountID:             txn.ToAccountID,
		RequiresApproval:        txn.RequiresApproval,
		ApprovedBy:              txn.ApprovedBy,
		ApprovedAt:              txn.ApprovedAt,
		ApprovalNotes:           txn.ApprovalNotes,
		IsReconciled:            txn.IsReconciled,
		ReconciledBy:            txn.ReconciledBy,
		ReconciledAt:            txn.ReconciledAt,
		VATAmount:               txn.VATAmount,
		VATRate:                 txn.VATRate,
		VATInclusive:            txn.VATInclusive,
		ClientID:                txn.ClientID,
		CaseID:                  txn.CaseID,
		InvoiceID:               txn.InvoiceID,
		TransactionDate:         txn.TransactionDate,
		Notes:                   txn.Notes,
		CancelReason:            txn.CancelReason,
		CreatedAt:               txn.CreatedAt,
		CreatedBy:               txn.CreatedBy,
		LastUpdatedAt:           txn.LastUpdatedAt,
		LastUpdatedBy:           txn.LastUpdatedBy,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToTransactionResponse(&txn)
	}
	return responses
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	AccountID *string                   `form:"accountID"`
	Type      *domain.TransactionType   `form:"type"`
	Status    *domain.TransactionStatus `form:"status"`
	Category  *string                   `form:"category"`
	ClientID  *string                   `form:"clientID"`
	CaseID    *string                   `form:"caseID"`
	FromDate  *time.Time                `form:"fromDate" time_format:"2006-01-02"`
	ToDate    *time.Time                `form:"toDate" time_format:"2006-01-02"`
	Limit     int                       `form:"limit,default=20"`
	NextToken *string                   `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of transactions with the cursor for
// the next page.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
