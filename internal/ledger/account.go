package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Rejection reasons. A rejected transaction leaves every balance untouched.
var (
	ErrAccountLocked     = errors.New("account is locked")
	ErrClientMismatch    = errors.New("client does not own transaction")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrDuplicateTx       = errors.New("duplicate transaction id")
	ErrUnknownTx         = errors.New("unknown transaction")
	ErrAlreadyDisputed   = errors.New("transaction already disputed")
	ErrNotDisputed       = errors.New("transaction is not under dispute")
	ErrChargedBack       = errors.New("transaction was charged back")
)

// Account is the running state of one client.
type Account struct {
	Client    int
	Available decimal.Decimal
	Held      decimal.Decimal

	// Locked is set by a chargeback; every later operation fails.
	Locked bool
}

// Total is available plus held funds.
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

func (a *Account) ready() error {
	if a.Locked {
		return fmt.Errorf("client %d: %w", a.Client, ErrAccountLocked)
	}
	return nil
}

func (a *Account) deposit(amount decimal.Decimal) error {
	if err := a.ready(); err != nil {
		return err
	}
	a.Available = a.Available.Add(amount)
	return nil
}

func (a *Account) withdraw(amount decimal.Decimal) error {
	if err := a.ready(); err != nil {
		return err
	}
	if a.Available.LessThan(amount) {
		return fmt.Errorf("client %d: %w: available %s, requested %s",
			a.Client, ErrInsufficientFunds, a.Available.String(), amount.String())
	}
	a.Available = a.Available.Sub(amount)
	return nil
}

// hold moves amount from available to held.
func (a *Account) hold(amount decimal.Decimal) error {
	if err := a.ready(); err != nil {
		return err
	}
	a.Available = a.Available.Sub(amount)
	a.Held = a.Held.Add(amount)
	return nil
}

// release moves amount from held back to available.
func (a *Account) release(amount decimal.Decimal) error {
	if err := a.ready(); err != nil {
		return err
	}
	a.Held = a.Held.Sub(amount)
	a.Available = a.Available.Add(amount)
	return nil
}

// chargeback removes amount from held and locks the account.
func (a *Account) chargeback(amount decimal.Decimal) error {
	if err := a.ready(); err != nil {
		return err
	}
	a.Held = a.Held.Sub(amount)
	a.Locked = true
	return nil
}
