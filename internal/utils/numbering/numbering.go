package numbering

import (
	"fmt"

	"github.com/firmfin/treasury_ledger_app/internal/core/domain"
)

// Account number prefixes by account type.
var accountPrefixes = map[domain.AccountType]string{
	domain.Bank:       "BNK",
	domain.Cash:       "CSH",
	domain.Card:       "CRD",
	domain.Investment: "INV",
	domain.PettyCash:  "PTY",
}

// Transaction number prefixes by transaction type.
var transactionPrefixes = map[domain.TransactionType]string{
	domain.Income:     "INC",
	domain.Expense:    "EXP",
	domain.Transfer:   "TRF",
	domain.Adjustment: "ADJ",
}

// AccountNumber formats a scoped account number, e.g. BNK-000042.
func AccountNumber(accountType domain.AccountType, sequence int64) (string, error) {
	prefix, ok := accountPrefixes[accountType]
	if !ok {
		return "", fmt.Errorf("no account number prefix for type %q", accountType)
	}
	return fmt.Sprintf("%s-%06d", prefix, sequence), nil
}

// TransactionNumber formats a scoped transaction number, e.g. EXP-202609-0007.
// The scope is (type, period); sequences are monotonic within it.
func TransactionNumber(txType domain.TransactionType, period string, sequence int64) (string, error) {
	prefix, ok := transactionPrefixes[txType]
	if !ok {
		return "", fmt.Errorf("no transaction number prefix for type %q", txType)
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, period, sequence), nil
}
