package httpinterface

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/application/escrow"
	"github.com/tdex-network/tdex-escrow/internal/core/application/ledger"
	"github.com/tdex-network/tdex-escrow/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/pkg/api"
)

const maxBodySize = 1 << 20

var errInvalidEndpoint = errors.New("endpoint must be a valid URL")

type handler struct {
	escrowSvc *escrow.Service
	ledgerSvc *ledger.Service
	pubsubSvc *pubsub.Service
}

func (h *handler) makeOffer(w http.ResponseWriter, r *http.Request) {
	var req api.MakeOfferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	args, err := parseMakeOfferRequest(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	offer, err := h.escrowSvc.MakeOffer(r.Context(), *args)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOffer(escrow.OfferInfo{
		Offer: *offer, DepositedAmount: args.OfferedAmount,
	}))
}

func (h *handler) listOffers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.OfferFilter{}
	for _, f := range []struct {
		key  string
		addr *domain.Address
	}{
		{"maker", &filter.Maker},
		{"asset_a", &filter.AssetA},
		{"asset_b", &filter.AssetB},
	} {
		str := query.Get(f.key)
		if str == "" {
			continue
		}
		addr, err := domain.ParseAddress(str)
		if err != nil {
			writeError(w, r, err)
			return
		}
		*f.addr = addr
	}

	offers, err := h.escrowSvc.ListOffers(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := api.ListOffersResponse{Offers: make([]api.Offer, 0, len(offers))}
	for _, offer := range offers {
		res.Offers = append(res.Offers, toOffer(offer))
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) getOffer(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	offer, err := h.escrowSvc.GetOffer(r.Context(), addr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOffer(*offer))
}

func (h *handler) takeOffer(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req api.TakeOfferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	taker, err := domain.ParseAddress(req.Taker)
	if err != nil {
		writeError(w, r, err)
		return
	}

	settlement, err := h.escrowSvc.TakeOffer(r.Context(), taker, addr)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.Settlement{
		Offer: toOffer(escrow.OfferInfo{
			Offer: settlement.Offer, DepositedAmount: settlement.ReleasedAmount,
		}),
		Taker:          settlement.Taker.String(),
		ReleasedAmount: formatAmount(settlement.ReleasedAmount),
		PaidAmount:     formatAmount(settlement.PaidAmount),
		SettledAt:      settlement.SettledAt,
	})
}

func (h *handler) offerAddress(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	maker, err := domain.ParseAddress(query.Get("maker"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	offerID, err := domain.ParseOfferID(query.Get("offer_id"))
	if err != nil {
		writeError(w, r, withStatus(err, http.StatusBadRequest))
		return
	}

	res := api.OfferAddressResponse{
		Address: h.escrowSvc.OfferAddress(maker, offerID).String(),
	}
	if asset := query.Get("asset_a"); asset != "" {
		assetA, err := domain.ParseAddress(asset)
		if err != nil {
			writeError(w, r, err)
			return
		}
		offerAddr := domain.OfferAddress(maker, offerID)
		res.Vault = domain.VaultAddress(assetA, offerAddr).String()
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) listBalances(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAddress(chi.URLParam(r, "account"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	balances, err := h.ledgerSvc.GetBalances(r.Context(), account)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := api.ListBalancesResponse{
		Balances: make([]api.Balance, 0, len(balances)),
	}
	for _, b := range balances {
		res.Balances = append(res.Balances, toBalance(b))
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) getBalance(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAddress(chi.URLParam(r, "account"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	asset, err := domain.ParseAddress(chi.URLParam(r, "asset"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := h.ledgerSvc.GetBalance(r.Context(), account, asset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalance(domain.Balance{
		Account: account, Asset: asset, Amount: amount,
	}))
}

func (h *handler) deposit(w http.ResponseWriter, r *http.Request) {
	var req api.DepositRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := domain.ParseAddress(req.Account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	asset, err := domain.ParseAddress(req.Asset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.ledgerSvc.Deposit(r.Context(), account, asset, amount); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeBalance(w, r, account, asset)
}

func (h *handler) transfer(w http.ResponseWriter, r *http.Request) {
	var req api.TransferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	addrs := make([]domain.Address, 0, 3)
	for _, str := range []string{req.From, req.To, req.Asset} {
		addr, err := domain.ParseAddress(str)
		if err != nil {
			writeError(w, r, err)
			return
		}
		addrs = append(addrs, addr)
	}
	from, to, asset := addrs[0], addrs[1], addrs[2]

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.ledgerSvc.Transfer(
		r.Context(), from, to, asset, amount,
	); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeBalance(w, r, from, asset)
}

func (h *handler) addWebhook(w http.ResponseWriter, r *http.Request) {
	var req api.AddWebhookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := url.ParseRequestURI(req.Endpoint); err != nil {
		writeError(w, r, withStatus(errInvalidEndpoint, http.StatusBadRequest))
		return
	}

	id, err := h.pubsubSvc.AddWebhook(
		r.Context(), req.Topic, req.Endpoint, req.Secret,
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.AddWebhookResponse{Id: id})
}

func (h *handler) listWebhooks(w http.ResponseWriter, r *http.Request) {
	hooks, err := h.pubsubSvc.ListWebhooks(
		r.Context(), r.URL.Query().Get("topic"),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := api.ListWebhooksResponse{Webhooks: make([]api.Webhook, 0, len(hooks))}
	for _, hook := range hooks {
		res.Webhooks = append(res.Webhooks, api.Webhook{
			Id:        hook.Id,
			Topic:     hook.Topic,
			Endpoint:  hook.Endpoint,
			IsSecured: hook.IsSecured,
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) removeWebhook(w http.ResponseWriter, r *http.Request) {
	if err := h.pubsubSvc.RemoveWebhook(
		r.Context(), chi.URLParam(r, "id"),
	); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) writeBalance(
	w http.ResponseWriter, r *http.Request, account, asset domain.Address,
) {
	amount, err := h.ledgerSvc.GetBalance(r.Context(), account, asset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalance(domain.Balance{
		Account: account, Asset: asset, Amount: amount,
	}))
}

func parseMakeOfferRequest(req api.MakeOfferRequest) (*escrow.MakeOfferArgs, error) {
	addrs := make([]domain.Address, 0, 3)
	for _, str := range []string{req.Maker, req.AssetA, req.AssetB} {
		addr, err := domain.ParseAddress(str)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}

	offeredAmount, err := parseAmount(req.OfferedAmount)
	if err != nil {
		return nil, err
	}
	wantedAmount, err := parseAmount(req.WantedAmount)
	if err != nil {
		return nil, err
	}

	var offerID domain.OfferID
	if req.OfferID == "" {
		if offerID, err = domain.NewOfferID(); err != nil {
			return nil, err
		}
	} else {
		if offerID, err = domain.ParseOfferID(req.OfferID); err != nil {
			return nil, withStatus(err, http.StatusBadRequest)
		}
	}

	return &escrow.MakeOfferArgs{
		Maker:         addrs[0],
		OfferID:       offerID,
		OfferedAmount: offeredAmount,
		WantedAmount:  wantedAmount,
		AssetA:        addrs[1],
		AssetB:        addrs[2],
	}, nil
}

func parseAmount(str string) (uint64, error) {
	amount, err := strconv.ParseUint(str, 10, 64)
	if err != nil || amount == 0 {
		return 0, domain.ErrInvalidAmount
	}
	return amount, nil
}

func formatAmount(amount uint64) string {
	return strconv.FormatUint(amount, 10)
}

func toOffer(info escrow.OfferInfo) api.Offer {
	return api.Offer{
		Address:         info.Address.String(),
		OfferID:         info.ID.String(),
		Maker:           info.Maker.String(),
		AssetA:          info.AssetA.String(),
		AssetB:          info.AssetB.String(),
		WantedAmount:    formatAmount(info.WantedAmount),
		DepositedAmount: formatAmount(info.DepositedAmount),
		Vault:           info.Vault.String(),
		CreatedAt:       info.CreatedAt,
	}
}

func toBalance(b domain.Balance) api.Balance {
	return api.Balance{
		Account: b.Account.String(),
		Asset:   b.Asset.String(),
		Amount:  formatAmount(b.Amount),
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errInvalidRequest
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField(
			"request_id", getRequestID(r.Context()),
		).Error("internal error")
	}
	writeJSON(w, status, api.ErrorResponse{Error: err.Error()})
}
