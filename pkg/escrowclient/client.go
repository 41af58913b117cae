// Package escrowclient is a Go client for the HTTP interface of the escrow
// daemon.
package escrowclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tdex-network/tdex-escrow/pkg/api"
)

const defaultTimeout = 30 * time.Second

// Error is returned for any response with a non-2xx status code.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the daemon listening at addr, either a host:port
// or a complete URL.
func New(addr string) (*Client, error) {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	if _, err := url.ParseRequestURI(addr); err != nil {
		return nil, fmt.Errorf("invalid daemon address: %w", err)
	}
	return &Client{
		baseURL:    strings.TrimSuffix(addr, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *Client) MakeOffer(
	ctx context.Context, req api.MakeOfferRequest,
) (*api.Offer, error) {
	offer := &api.Offer{}
	if err := c.do(ctx, http.MethodPost, "/v1/offers", req, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

func (c *Client) TakeOffer(
	ctx context.Context, offerAddress, taker string,
) (*api.Settlement, error) {
	settlement := &api.Settlement{}
	if err := c.do(
		ctx, http.MethodPost, "/v1/offers/"+url.PathEscape(offerAddress)+"/take",
		api.TakeOfferRequest{Taker: taker}, settlement,
	); err != nil {
		return nil, err
	}
	return settlement, nil
}

func (c *Client) GetOffer(ctx context.Context, offerAddress string) (*api.Offer, error) {
	offer := &api.Offer{}
	if err := c.do(
		ctx, http.MethodGet, "/v1/offers/"+url.PathEscape(offerAddress), nil, offer,
	); err != nil {
		return nil, err
	}
	return offer, nil
}

// ListOffers returns the open offers. Empty filter values match any offer.
func (c *Client) ListOffers(
	ctx context.Context, maker, assetA, assetB string,
) ([]api.Offer, error) {
	query := url.Values{}
	for key, value := range map[string]string{
		"maker": maker, "asset_a": assetA, "asset_b": assetB,
	} {
		if value != "" {
			query.Set(key, value)
		}
	}
	path := "/v1/offers"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	res := &api.ListOffersResponse{}
	if err := c.do(ctx, http.MethodGet, path, nil, res); err != nil {
		return nil, err
	}
	return res.Offers, nil
}

// OfferAddress returns the address of the offer with the given maker and id
// and, if assetA is defined, the address of its vault.
func (c *Client) OfferAddress(
	ctx context.Context, maker, offerID, assetA string,
) (*api.OfferAddressResponse, error) {
	query := url.Values{}
	query.Set("maker", maker)
	query.Set("offer_id", offerID)
	if assetA != "" {
		query.Set("asset_a", assetA)
	}

	res := &api.OfferAddressResponse{}
	if err := c.do(
		ctx, http.MethodGet, "/v1/addresses/offer?"+query.Encode(), nil, res,
	); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) GetBalance(
	ctx context.Context, account, asset string,
) (*api.Balance, error) {
	balance := &api.Balance{}
	path := fmt.Sprintf(
		"/v1/accounts/%s/balances/%s", url.PathEscape(account), url.PathEscape(asset),
	)
	if err := c.do(ctx, http.MethodGet, path, nil, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

func (c *Client) ListBalances(ctx context.Context, account string) ([]api.Balance, error) {
	res := &api.ListBalancesResponse{}
	path := fmt.Sprintf("/v1/accounts/%s/balances", url.PathEscape(account))
	if err := c.do(ctx, http.MethodGet, path, nil, res); err != nil {
		return nil, err
	}
	return res.Balances, nil
}

func (c *Client) Deposit(
	ctx context.Context, req api.DepositRequest,
) (*api.Balance, error) {
	balance := &api.Balance{}
	if err := c.do(ctx, http.MethodPost, "/v1/deposits", req, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

func (c *Client) Transfer(
	ctx context.Context, req api.TransferRequest,
) (*api.Balance, error) {
	balance := &api.Balance{}
	if err := c.do(ctx, http.MethodPost, "/v1/transfers", req, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

func (c *Client) AddWebhook(
	ctx context.Context, req api.AddWebhookRequest,
) (string, error) {
	res := &api.AddWebhookResponse{}
	if err := c.do(ctx, http.MethodPost, "/v1/webhooks", req, res); err != nil {
		return "", err
	}
	return res.Id, nil
}

func (c *Client) RemoveWebhook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/webhooks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListWebhooks(ctx context.Context, topic string) ([]api.Webhook, error) {
	path := "/v1/webhooks"
	if topic != "" {
		path += "?topic=" + url.QueryEscape(topic)
	}
	res := &api.ListWebhooksResponse{}
	if err := c.do(ctx, http.MethodGet, path, nil, res); err != nil {
		return nil, err
	}
	return res.Webhooks, nil
}

func (c *Client) do(
	ctx context.Context, method, path string, body, out interface{},
) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		errRes := api.ErrorResponse{}
		if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil ||
			errRes.Error == "" {
			errRes.Error = "unexpected response"
		}
		return &Error{res.StatusCode, errRes.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
