package escrowclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/pkg/api"
	"github.com/tdex-network/tdex-escrow/pkg/escrowclient"
)

func TestClient(t *testing.T) {
	var lastRequest *http.Request
	var lastBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			lastRequest = r
			lastBody = nil
			//nolint
			json.NewDecoder(r.Body).Decode(&lastBody)

			w.Header().Set("Content-Type", "application/json")
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/v1/offers":
				w.WriteHeader(http.StatusCreated)
				//nolint
				json.NewEncoder(w).Encode(api.Offer{Address: "offer", OfferID: "1"})
			case r.Method == http.MethodPost && r.URL.Path == "/v1/offers/offer/take":
				//nolint
				json.NewEncoder(w).Encode(api.Settlement{
					Taker: "taker", ReleasedAmount: "10", PaidAmount: "5",
				})
			case r.Method == http.MethodGet && r.URL.Path == "/v1/offers":
				//nolint
				json.NewEncoder(w).Encode(api.ListOffersResponse{
					Offers: []api.Offer{{Address: "offer"}},
				})
			case r.Method == http.MethodDelete:
				w.WriteHeader(http.StatusNoContent)
			default:
				w.WriteHeader(http.StatusNotFound)
				//nolint
				json.NewEncoder(w).Encode(api.ErrorResponse{Error: "offer not found"})
			}
		},
	))
	defer srv.Close()

	client, err := escrowclient.New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	offer, err := client.MakeOffer(ctx, api.MakeOfferRequest{
		Maker: "maker", OfferedAmount: "10", WantedAmount: "5",
	})
	require.NoError(t, err)
	require.Equal(t, "offer", offer.Address)
	require.Equal(t, "application/json", lastRequest.Header.Get("Content-Type"))
	require.Equal(t, "maker", lastBody["maker"])

	settlement, err := client.TakeOffer(ctx, "offer", "taker")
	require.NoError(t, err)
	require.Equal(t, "10", settlement.ReleasedAmount)
	require.Equal(t, "taker", lastBody["taker"])

	offers, err := client.ListOffers(ctx, "maker", "", "")
	require.NoError(t, err)
	require.Len(t, offers, 1)
	require.Equal(t, "maker", lastRequest.URL.Query().Get("maker"))
	require.Empty(t, lastRequest.URL.Query().Get("asset_a"))

	require.NoError(t, client.RemoveWebhook(ctx, "id"))

	_, err = client.GetOffer(ctx, "unknown")
	require.Error(t, err)
	var clientErr *escrowclient.Error
	require.True(t, errors.As(err, &clientErr))
	require.Equal(t, http.StatusNotFound, clientErr.StatusCode)
	require.Equal(t, "offer not found", clientErr.Message)
}

func TestNewClient(t *testing.T) {
	_, err := escrowclient.New("localhost:9945")
	require.NoError(t, err)

	_, err = escrowclient.New("http://%zz")
	require.Error(t, err)
}
