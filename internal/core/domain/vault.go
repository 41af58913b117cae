package domain

// Vault is the custody account of an offer. It holds the deposited amount of
// Asset from the moment the offer is made until it is taken, and only the
// settlement protocol can move its funds.
type Vault struct {
	Address Address
	Asset   Address
	Offer   Address
}
