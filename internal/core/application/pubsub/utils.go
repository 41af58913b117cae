package pubsub

import (
	"strconv"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

type WebhookInfo struct {
	Id        string `json:"id"`
	Topic     string `json:"topic"`
	Endpoint  string `json:"endpoint"`
	IsSecured bool   `json:"is_secured"`
}

func newWebhookInfo(sub ports.Subscription) WebhookInfo {
	return WebhookInfo{
		Id:        sub.Id(),
		Topic:     sub.Topic(),
		Endpoint:  sub.NotifyAt(),
		IsSecured: sub.IsSecured(),
	}
}

func getOfferPayload(offer domain.Offer) map[string]interface{} {
	return map[string]interface{}{
		"address":       offer.Address.String(),
		"offer_id":      offer.ID.String(),
		"maker":         offer.Maker.String(),
		"asset_a":       offer.AssetA.String(),
		"asset_b":       offer.AssetB.String(),
		"wanted_amount": strconv.FormatUint(offer.WantedAmount, 10),
		"vault":         offer.Vault.String(),
		"created_at":    offer.CreatedAt,
	}
}
