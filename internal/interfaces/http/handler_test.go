package httpinterface_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/application/escrow"
	"github.com/tdex-network/tdex-escrow/internal/core/application/ledger"
	"github.com/tdex-network/tdex-escrow/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/metrics"
	webhookpubsub "github.com/tdex-network/tdex-escrow/internal/infrastructure/pubsub/webhook"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/inmemory"
	httpinterface "github.com/tdex-network/tdex-escrow/internal/interfaces/http"
	"github.com/tdex-network/tdex-escrow/pkg/api"
	"github.com/thanhpk/randstr"
)

func TestOfferLifecycle(t *testing.T) {
	srv := newTestServer(t, true)

	maker, taker := randomAddress(), randomAddress()
	assetA, assetB := randomAddress(), randomAddress()

	doRequest(t, srv, http.MethodPost, "/v1/deposits", api.DepositRequest{
		Account: maker, Asset: assetA, Amount: "1000000",
	}, http.StatusOK, nil)
	doRequest(t, srv, http.MethodPost, "/v1/deposits", api.DepositRequest{
		Account: taker, Asset: assetB, Amount: "500000",
	}, http.StatusOK, nil)

	var offer api.Offer
	doRequest(t, srv, http.MethodPost, "/v1/offers", api.MakeOfferRequest{
		Maker:         maker,
		OfferID:       "7",
		OfferedAmount: "1000000",
		WantedAmount:  "500000",
		AssetA:        assetA,
		AssetB:        assetB,
	}, http.StatusCreated, &offer)
	require.Equal(t, "7", offer.OfferID)
	require.Equal(t, "1000000", offer.DepositedAmount)

	var derived api.OfferAddressResponse
	doRequest(
		t, srv, http.MethodGet,
		"/v1/addresses/offer?maker="+maker+"&offer_id=7&asset_a="+assetA,
		nil, http.StatusOK, &derived,
	)
	require.Equal(t, offer.Address, derived.Address)
	require.Equal(t, offer.Vault, derived.Vault)

	var got api.Offer
	doRequest(
		t, srv, http.MethodGet, "/v1/offers/"+offer.Address, nil,
		http.StatusOK, &got,
	)
	require.Equal(t, offer, got)

	var list api.ListOffersResponse
	doRequest(
		t, srv, http.MethodGet, "/v1/offers?maker="+maker, nil,
		http.StatusOK, &list,
	)
	require.Len(t, list.Offers, 1)

	var vaultBalance api.Balance
	doRequest(
		t, srv, http.MethodGet,
		"/v1/accounts/"+offer.Vault+"/balances/"+assetA, nil,
		http.StatusOK, &vaultBalance,
	)
	require.Equal(t, "1000000", vaultBalance.Amount)

	var settlement api.Settlement
	doRequest(
		t, srv, http.MethodPost, "/v1/offers/"+offer.Address+"/take",
		api.TakeOfferRequest{Taker: taker}, http.StatusOK, &settlement,
	)
	require.Equal(t, "1000000", settlement.ReleasedAmount)
	require.Equal(t, "500000", settlement.PaidAmount)
	require.Equal(t, taker, settlement.Taker)

	var balances api.ListBalancesResponse
	doRequest(
		t, srv, http.MethodGet, "/v1/accounts/"+taker+"/balances", nil,
		http.StatusOK, &balances,
	)
	require.Len(t, balances.Balances, 1)
	require.Equal(t, assetA, balances.Balances[0].Asset)
	require.Equal(t, "1000000", balances.Balances[0].Amount)

	var makerBalance api.Balance
	doRequest(
		t, srv, http.MethodGet,
		"/v1/accounts/"+maker+"/balances/"+assetB, nil,
		http.StatusOK, &makerBalance,
	)
	require.Equal(t, "500000", makerBalance.Amount)

	doRequest(
		t, srv, http.MethodGet, "/v1/offers/"+offer.Address, nil,
		http.StatusNotFound, nil,
	)
	doRequest(
		t, srv, http.MethodPost, "/v1/offers/"+offer.Address+"/take",
		api.TakeOfferRequest{Taker: taker}, http.StatusNotFound, nil,
	)
}

func TestErrorStatusCodes(t *testing.T) {
	srv := newTestServer(t, false)

	maker := randomAddress()
	assetA, assetB := randomAddress(), randomAddress()
	doRequest(t, srv, http.MethodPost, "/v1/deposits", api.DepositRequest{
		Account: maker, Asset: assetA, Amount: "100",
	}, http.StatusOK, nil)

	makeOffer := func(offered string) api.MakeOfferRequest {
		return api.MakeOfferRequest{
			Maker:         maker,
			OfferID:       "1",
			OfferedAmount: offered,
			WantedAmount:  "10",
			AssetA:        assetA,
			AssetB:        assetB,
		}
	}

	var offer api.Offer
	doRequest(
		t, srv, http.MethodPost, "/v1/offers", makeOffer("50"),
		http.StatusCreated, &offer,
	)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{
			name:   "malformed_body",
			method: http.MethodPost,
			path:   "/v1/offers",
			body:   "not an object",
			status: http.StatusBadRequest,
		},
		{
			name:   "zero_amount",
			method: http.MethodPost,
			path:   "/v1/offers",
			body:   makeOffer("0"),
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid_address",
			method: http.MethodGet,
			path:   "/v1/offers/notanaddress",
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid_offer_id",
			method: http.MethodGet,
			path:   "/v1/addresses/offer?maker=" + maker + "&offer_id=abc",
			status: http.StatusBadRequest,
		},
		{
			name:   "offer_not_found",
			method: http.MethodGet,
			path:   "/v1/offers/" + randomAddress(),
			status: http.StatusNotFound,
		},
		{
			name:   "offer_already_exists",
			method: http.MethodPost,
			path:   "/v1/offers",
			body:   makeOffer("10"),
			status: http.StatusConflict,
		},
		{
			name:   "insufficient_funds",
			method: http.MethodPost,
			path:   "/v1/transfers",
			body: api.TransferRequest{
				From: maker, To: randomAddress(), Asset: assetA, Amount: "51",
			},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "deposit_to_vault",
			method: http.MethodPost,
			path:   "/v1/deposits",
			body: api.DepositRequest{
				Account: offer.Vault, Asset: assetA, Amount: "1",
			},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "webhooks_not_enabled",
			method: http.MethodGet,
			path:   "/v1/webhooks",
			status: http.StatusNotImplemented,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var res api.ErrorResponse
			doRequest(t, srv, tt.method, tt.path, tt.body, tt.status, &res)
			require.NotEmpty(t, res.Error)
		})
	}
}

func TestWebhooks(t *testing.T) {
	srv := newTestServer(t, true)

	doRequest(t, srv, http.MethodPost, "/v1/webhooks", api.AddWebhookRequest{
		Topic: "OFFER_MADE", Endpoint: "not a url",
	}, http.StatusBadRequest, nil)
	doRequest(t, srv, http.MethodPost, "/v1/webhooks", api.AddWebhookRequest{
		Topic: "UNKNOWN", Endpoint: "http://127.0.0.1:9999/hook",
	}, http.StatusBadRequest, nil)

	var added api.AddWebhookResponse
	doRequest(t, srv, http.MethodPost, "/v1/webhooks", api.AddWebhookRequest{
		Topic:    ports.OfferTakenTopic,
		Endpoint: "http://127.0.0.1:9999/hook",
		Secret:   "secret",
	}, http.StatusCreated, &added)
	require.NotEmpty(t, added.Id)

	var list api.ListWebhooksResponse
	doRequest(
		t, srv, http.MethodGet, "/v1/webhooks?topic="+ports.OfferTakenTopic,
		nil, http.StatusOK, &list,
	)
	require.Len(t, list.Webhooks, 1)
	require.True(t, list.Webhooks[0].IsSecured)

	doRequest(
		t, srv, http.MethodDelete, "/v1/webhooks/"+added.Id, nil,
		http.StatusNoContent, nil,
	)
	doRequest(
		t, srv, http.MethodDelete, "/v1/webhooks/"+added.Id, nil,
		http.StatusNotFound, nil,
	)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, false)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "abc")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "abc", res.Header.Get("X-Request-Id"))

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(res.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(buf.String(), "escrow_offers_made_total"))
}

func newTestServer(t *testing.T, withWebhooks bool) *httptest.Server {
	repoManager := inmemory.NewRepoManager()

	var webhooks ports.SecurePubSub
	if withWebhooks {
		var err error
		webhooks, err = webhookpubsub.NewWebhookPubSubService(
			webhookpubsub.Config{},
		)
		require.NoError(t, err)
	}
	pubsubSvc := pubsub.NewService(webhooks)

	registry := prometheus.NewRegistry()
	metricsSvc, err := metrics.NewService(registry)
	require.NoError(t, err)

	escrowSvc, err := escrow.NewService(repoManager, pubsubSvc, metricsSvc)
	require.NoError(t, err)
	ledgerSvc, err := ledger.NewService(repoManager)
	require.NoError(t, err)

	srv := httptest.NewServer(httpinterface.NewRouter(httpinterface.ServiceOpts{
		Address:   "127.0.0.1:0",
		EscrowSvc: escrowSvc,
		LedgerSvc: ledgerSvc,
		PubSubSvc: pubsubSvc,
		Gatherer:  registry,
	}))
	t.Cleanup(func() {
		srv.Close()
		pubsubSvc.Close()
	})
	return srv
}

func doRequest(
	t *testing.T, srv *httptest.Server, method, path string, body interface{},
	expectedStatus int, out interface{},
) {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, expectedStatus, res.StatusCode)
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
}

func randomAddress() string {
	return domain.DeriveAddress([]byte(randstr.Hex(16))).String()
}
