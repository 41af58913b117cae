package domain

import "errors"

var (
	// ErrInvalidAmount is returned when an amount is zero or malformed.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrAmountOverflow is returned when crediting an account would overflow
	// its balance.
	ErrAmountOverflow = errors.New("amount overflows account balance")
	// ErrInvalidAddress is returned when an address is not a valid 32-byte
	// base58 string or it is the zero address.
	ErrInvalidAddress = errors.New("address is not valid")
	// ErrInsufficientFunds is returned when an account does not hold enough
	// balance of some asset for a debit.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Offer errors
var (
	// ErrOfferAlreadyExists is returned when the same maker reuses an offer id
	// of an offer that is still open.
	ErrOfferAlreadyExists = errors.New("offer already exists")
	// ErrOfferNotFound is returned when an address does not correspond to any
	// open offer, either because it never existed or because it's settled.
	ErrOfferNotFound = errors.New("offer not found")
)

// Vault errors
var (
	// ErrVaultAlreadyExists ...
	ErrVaultAlreadyExists = errors.New("vault already exists")
	// ErrVaultNotFound ...
	ErrVaultNotFound = errors.New("vault not found")
	// ErrVaultNotEmpty is returned when attempting to close a vault that still
	// holds some funds.
	ErrVaultNotEmpty = errors.New("vault must be drained before being closed")
	// ErrVaultEmpty is returned when settling an offer whose vault holds none
	// of the offered asset.
	ErrVaultEmpty = errors.New("vault holds no funds to release")
	// ErrVaultCustody is returned when anything but the settlement protocol
	// attempts to move funds in or out of a vault.
	ErrVaultCustody = errors.New("vault funds can be moved only by offer settlement")
)
