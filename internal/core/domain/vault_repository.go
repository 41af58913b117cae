package domain

import "context"

// VaultRepository is the abstraction for any kind of database intended to
// persist the custody accounts of the offers.
type VaultRepository interface {
	// AddVault stores a new vault. It returns ErrVaultAlreadyExists if the
	// vault exists or its address already holds some funds.
	AddVault(ctx context.Context, vault Vault) error
	// GetVault returns the vault with the given address or ErrVaultNotFound.
	GetVault(ctx context.Context, address Address) (*Vault, error)
	// IsVault returns whether the given address belongs to a vault.
	IsVault(ctx context.Context, address Address) (bool, error)
	// DeleteVault removes the vault along with its ledger entry. It returns
	// ErrVaultNotEmpty if the vault still holds some of its asset.
	DeleteVault(ctx context.Context, address Address) error
}
