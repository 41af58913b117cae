package inmemory

import (
	"bytes"
	"sort"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

var _ ports.Transaction = (*transaction)(nil)

// transaction stages the changes made to the store. A nil entry in the offers
// or vaults maps marks a deletion, while a balance entry overrides the
// committed one.
type transaction struct {
	rm       *RepoManager
	readOnly bool
	done     bool

	offers   map[domain.Address]*domain.Offer
	vaults   map[domain.Address]*domain.Vault
	balances map[balanceKey]uint64
}

func (tx *transaction) Commit() error {
	if tx.done {
		return nil
	}
	defer tx.release()

	if tx.readOnly {
		return nil
	}

	s := tx.rm.store
	for addr, offer := range tx.offers {
		if offer == nil {
			delete(s.offers, addr)
			continue
		}
		s.offers[addr] = *offer
	}
	for addr, vault := range tx.vaults {
		if vault == nil {
			delete(s.vaults, addr)
			continue
		}
		s.vaults[addr] = *vault
	}
	for key, amount := range tx.balances {
		if amount == 0 {
			delete(s.balances, key)
			continue
		}
		s.balances[key] = amount
	}
	return nil
}

func (tx *transaction) Discard() {
	if tx.done {
		return
	}
	tx.release()
}

func (tx *transaction) release() {
	tx.done = true
	if tx.readOnly {
		tx.rm.lock.RUnlock()
	} else {
		tx.rm.lock.Unlock()
	}
}

func (tx *transaction) getOffer(addr domain.Address) (domain.Offer, bool) {
	if offer, ok := tx.offers[addr]; ok {
		if offer == nil {
			return domain.Offer{}, false
		}
		return *offer, true
	}
	offer, ok := tx.rm.store.offers[addr]
	return offer, ok
}

func (tx *transaction) putOffer(offer domain.Offer) {
	tx.offers[offer.Address] = &offer
}

func (tx *transaction) deleteOffer(addr domain.Address) {
	tx.offers[addr] = nil
}

func (tx *transaction) listOffers() []domain.Offer {
	offers := make([]domain.Offer, 0, len(tx.rm.store.offers)+len(tx.offers))
	for addr, offer := range tx.rm.store.offers {
		if _, ok := tx.offers[addr]; ok {
			continue
		}
		offers = append(offers, offer)
	}
	for _, offer := range tx.offers {
		if offer != nil {
			offers = append(offers, *offer)
		}
	}
	sort.SliceStable(offers, func(i, j int) bool {
		if offers[i].CreatedAt != offers[j].CreatedAt {
			return offers[i].CreatedAt < offers[j].CreatedAt
		}
		return bytes.Compare(offers[i].Address[:], offers[j].Address[:]) < 0
	})
	return offers
}

func (tx *transaction) getVault(addr domain.Address) (domain.Vault, bool) {
	if vault, ok := tx.vaults[addr]; ok {
		if vault == nil {
			return domain.Vault{}, false
		}
		return *vault, true
	}
	vault, ok := tx.rm.store.vaults[addr]
	return vault, ok
}

func (tx *transaction) putVault(vault domain.Vault) {
	tx.vaults[vault.Address] = &vault
}

func (tx *transaction) deleteVault(addr domain.Address) {
	tx.vaults[addr] = nil
}

func (tx *transaction) getBalance(account, asset domain.Address) uint64 {
	key := balanceKey{account, asset}
	if amount, ok := tx.balances[key]; ok {
		return amount
	}
	return tx.rm.store.balances[key]
}

func (tx *transaction) setBalance(account, asset domain.Address, amount uint64) {
	tx.balances[balanceKey{account, asset}] = amount
}

func (tx *transaction) listBalances(account domain.Address) []domain.Balance {
	amounts := make(map[domain.Address]uint64)
	for key, amount := range tx.rm.store.balances {
		if key.account == account {
			amounts[key.asset] = amount
		}
	}
	for key, amount := range tx.balances {
		if key.account == account {
			amounts[key.asset] = amount
		}
	}

	balances := make([]domain.Balance, 0, len(amounts))
	for asset, amount := range amounts {
		if amount == 0 {
			continue
		}
		balances = append(balances, domain.Balance{
			Account: account,
			Asset:   asset,
			Amount:  amount,
		})
	}
	sort.SliceStable(balances, func(i, j int) bool {
		return bytes.Compare(balances[i].Asset[:], balances[j].Asset[:]) < 0
	})
	return balances
}
