package domain

import (
	"fmt"

	"github.com/firmfin/treasury_ledger_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// BalanceDelta is the change a balance effect applies to one account.
type BalanceDelta struct {
	Current   decimal.Decimal
	Available decimal.Decimal
}

// Add combines two deltas.
func (d BalanceDelta) Add(o BalanceDelta) BalanceDelta {
	return BalanceDelta{
		Current:   d.Current.Add(o.Current),
		Available: d.Available.Add(o.Available),
	}
}

// Neg returns the inverse delta.
func (d BalanceDelta) Neg() BalanceDelta {
	return BalanceDelta{Current: d.Current.Neg(), Available: d.Available.Neg()}
}

// IsZero reports whether the delta has no effect.
func (d BalanceDelta) IsZero() bool {
	return d.Current.IsZero() && d.Available.IsZero()
}

// BalanceEffect computes the full per-account deltas of applying the
// transaction where no hold has been placed (immediate-apply path). For a
// transfer the deltas over the two accounts sum to zero.
func (t *Transaction) BalanceEffect() (map[string]BalanceDelta, error) {
	amt := t.AmountInAccountCurrency
	effect := make(map[string]BalanceDelta, 2)
	switch t.Type {
	case Income:
		effect[*t.ToAccountID] = BalanceDelta{Current: amt, Available: amt}
	case Expense:
		effect[*t.FromAccountID] = BalanceDelta{Current: amt.Neg(), Available: amt.Neg()}
	case Transfer:
		effect[*t.FromAccountID] = BalanceDelta{Current: amt.Neg(), Available: amt.Neg()}
		effect[*t.ToAccountID] = BalanceDelta{Current: amt, Available: amt}
	case Adjustment:
		id := t.AdjustedAccountID()
		if id == nil {
			return nil, fmt.Errorf("%w: adjustment has no account reference", apperrors.ErrValidation)
		}
		effect[*id] = BalanceDelta{Current: amt, Available: amt}
	default:
		return nil, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, t.Type)
	}
	return effect, nil
}

// HoldEffect computes the deltas placing a pending hold: the available-balance
// portion of every outbound side of the full effect. Current balances are
// untouched until completion.
func (t *Transaction) HoldEffect() (map[string]BalanceDelta, error) {
	full, err := t.BalanceEffect()
	if err != nil {
		return nil, err
	}
	hold := make(map[string]BalanceDelta, len(full))
	for id, d := range full {
		if d.Available.IsNegative() {
			hold[id] = BalanceDelta{Available: d.Available}
		}
	}
	return hold, nil
}

// ReleaseEffect computes the deltas returning a pending hold on cancellation.
func (t *Transaction) ReleaseEffect() (map[string]BalanceDelta, error) {
	hold, err := t.HoldEffect()
	if err != nil {
		return nil, err
	}
	release := make(map[string]BalanceDelta, len(hold))
	for id, d := range hold {
		release[id] = d.Neg()
	}
	return release, nil
}

// CompletionEffect computes the deltas that finish a held transaction on
// approval: the full effect minus the hold already in place, so the source
// account's available balance is not debited a second time.
func (t *Transaction) CompletionEffect() (map[string]BalanceDelta, error) {
	full, err := t.BalanceEffect()
	if err != nil {
		return nil, err
	}
	hold, err := t.HoldEffect()
	if err != nil {
		return nil, err
	}
	out := make(map[string]BalanceDelta, len(full))
	for id, d := range full {
		out[id] = d.Add(hold[id].Neg())
	}
	return out, nil
}

// ValidateApply checks a balance effect against locked account state before
// any mutation. Invariant 4 is enforced here: the resulting available balance
// may not go negative unless the account allows it. Min/max balance bounds are
// checked against the resulting current balance.
func ValidateApply(accounts map[string]Account, deltas map[string]BalanceDelta) error {
	for id, delta := range deltas {
		acc, ok := accounts[id]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
		newAvailable := acc.AvailableBalance.Add(delta.Available)
		if !acc.AllowNegativeBalance && newAvailable.IsNegative() {
			return fmt.Errorf("%w: account %s available balance would be %s",
				apperrors.ErrInsufficientFunds, acc.AccountNumber, newAvailable.String())
		}
		newCurrent := acc.CurrentBalance.Add(delta.Current)
		if acc.MinBalance != nil && newCurrent.LessThan(*acc.MinBalance) {
			return fmt.Errorf("%w: account %s would fall below its minimum balance %s",
				apperrors.ErrValidation, acc.AccountNumber, acc.MinBalance.String())
		}
		if acc.MaxBalance != nil && newCurrent.GreaterThan(*acc.MaxBalance) {
			return fmt.Errorf("%w: account %s would exceed its maximum balance %s",
				apperrors.ErrValidation, acc.AccountNumber, acc.MaxBalance.String())
		}
	}
	return nil
}

// ValidateHold checks that hold placement is structurally possible. Holds are
// placed at pending creation without a sufficiency check; overdraft is caught
// at approval time against the then-current balances.
func ValidateHold(accounts map[string]Account, deltas map[string]BalanceDelta) error {
	for id := range deltas {
		acc, ok := accounts[id]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
	}
	return nil
}
