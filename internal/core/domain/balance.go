package domain

import "math"

// Balance is the amount of some asset owned by an account.
type Balance struct {
	Account Address
	Asset   Address
	Amount  uint64
}

// Credit adds the given amount to the balance.
func (b *Balance) Credit(amount uint64) error {
	if amount > math.MaxUint64-b.Amount {
		return ErrAmountOverflow
	}
	b.Amount += amount
	return nil
}

// Debit subtracts the given amount from the balance.
func (b *Balance) Debit(amount uint64) error {
	if amount > b.Amount {
		return ErrInsufficientFunds
	}
	b.Amount -= amount
	return nil
}
