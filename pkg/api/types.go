// Package api defines the JSON messages exchanged with the HTTP interface of
// the escrow daemon. Addresses are base58 strings and amounts are base-10
// strings of base units.
package api

type MakeOfferRequest struct {
	Maker string `json:"maker"`
	// OfferID is optional, a random one is used if empty.
	OfferID       string `json:"offer_id,omitempty"`
	OfferedAmount string `json:"offered_amount"`
	WantedAmount  string `json:"wanted_amount"`
	AssetA        string `json:"asset_a"`
	AssetB        string `json:"asset_b"`
}

type TakeOfferRequest struct {
	Taker string `json:"taker"`
}

type Offer struct {
	Address         string `json:"address"`
	OfferID         string `json:"offer_id"`
	Maker           string `json:"maker"`
	AssetA          string `json:"asset_a"`
	AssetB          string `json:"asset_b"`
	WantedAmount    string `json:"wanted_amount"`
	DepositedAmount string `json:"deposited_amount"`
	Vault           string `json:"vault"`
	CreatedAt       int64  `json:"created_at"`
}

type ListOffersResponse struct {
	Offers []Offer `json:"offers"`
}

type Settlement struct {
	Offer          Offer  `json:"offer"`
	Taker          string `json:"taker"`
	ReleasedAmount string `json:"released_amount"`
	PaidAmount     string `json:"paid_amount"`
	SettledAt      int64  `json:"settled_at"`
}

type OfferAddressResponse struct {
	Address string `json:"address"`
	Vault   string `json:"vault,omitempty"`
}

type Balance struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Amount  string `json:"amount"`
}

type ListBalancesResponse struct {
	Balances []Balance `json:"balances"`
}

type DepositRequest struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Amount  string `json:"amount"`
}

type TransferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

type AddWebhookRequest struct {
	Topic    string `json:"topic"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret,omitempty"`
}

type AddWebhookResponse struct {
	Id string `json:"id"`
}

type Webhook struct {
	Id        string `json:"id"`
	Topic     string `json:"topic"`
	Endpoint  string `json:"endpoint"`
	IsSecured bool   `json:"is_secured"`
}

type ListWebhooksResponse struct {
	Webhooks []Webhook `json:"webhooks"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
