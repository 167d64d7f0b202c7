package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationResult is the outcome of reconciling an account against an
// external statement. The difference is reported for caller review; resolving
// it takes an explicit adjustment transaction, never a balance edit.
type ReconciliationResult struct {
	AccountID        string
	StatementBalance decimal.Decimal
	LedgerBalance    decimal.Decimal
	Difference       decimal.Decimal
	Balanced         bool
	ReconciledCount  int
	ReconciledAt     time.Time
	ReconciledBy     string
}
