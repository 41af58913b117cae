package main

import (
	"context"

	"github.com/tdex-network/tdex-escrow/pkg/api"
	"github.com/urfave/cli/v2"
)

var makeoffer = cli.Command{
	Name:  "makeoffer",
	Usage: "lock some amount of an asset into a new offer",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "maker",
			Usage:    "the account of the offer maker",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "id",
			Usage: "the offer id, a random one is used if not set",
		},
		&cli.StringFlag{
			Name:     "asset_a",
			Usage:    "the offered asset",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "offered_amount",
			Usage:    "the amount of asset_a to lock into the offer vault",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "asset_b",
			Usage:    "the wanted asset",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "wanted_amount",
			Usage:    "the amount of asset_b the taker pays to the maker",
			Required: true,
		},
		&cli.UintFlag{
			Name:  "precision_b",
			Usage: "number of decimal places of wanted_amount, 0 for base units",
		},
		&precisionFlag,
	},
	Action: makeOfferAction,
}

var takeoffer = cli.Command{
	Name:  "takeoffer",
	Usage: "settle an offer paying the wanted amount to its maker",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "offer",
			Usage:    "the address of the offer",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "taker",
			Usage:    "the account of the offer taker",
			Required: true,
		},
	},
	Action: takeOfferAction,
}

var getoffer = cli.Command{
	Name:  "getoffer",
	Usage: "get an open offer",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "offer",
			Usage:    "the address of the offer",
			Required: true,
		},
	},
	Action: getOfferAction,
}

var listoffers = cli.Command{
	Name:  "listoffers",
	Usage: "list all open offers, optionally filtered",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "maker",
			Usage: "list only offers of this maker",
		},
		&cli.StringFlag{
			Name:  "asset_a",
			Usage: "list only offers for this offered asset",
		},
		&cli.StringFlag{
			Name:  "asset_b",
			Usage: "list only offers for this wanted asset",
		},
	},
	Action: listOffersAction,
}

var deriveoffer = cli.Command{
	Name:  "deriveoffer",
	Usage: "derive the address of an offer and its vault",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "maker",
			Usage:    "the account of the offer maker",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "id",
			Usage:    "the offer id",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "asset_a",
			Usage: "the offered asset, required to derive the vault address",
		},
	},
	Action: deriveOfferAction,
}

func makeOfferAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	offeredAmount, err := parseAmountFlag(ctx, "offered_amount")
	if err != nil {
		return err
	}
	wantedAmount, err := parseWantedAmount(ctx)
	if err != nil {
		return err
	}

	offer, err := client.MakeOffer(context.Background(), api.MakeOfferRequest{
		Maker:         ctx.String("maker"),
		OfferID:       ctx.String("id"),
		OfferedAmount: offeredAmount,
		WantedAmount:  wantedAmount,
		AssetA:        ctx.String("asset_a"),
		AssetB:        ctx.String("asset_b"),
	})
	if err != nil {
		return err
	}

	printRespJSON(offer)
	return nil
}

func takeOfferAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	settlement, err := client.TakeOffer(
		context.Background(), ctx.String("offer"), ctx.String("taker"),
	)
	if err != nil {
		return err
	}

	printRespJSON(settlement)
	return nil
}

func getOfferAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	offer, err := client.GetOffer(context.Background(), ctx.String("offer"))
	if err != nil {
		return err
	}

	printRespJSON(offer)
	return nil
}

func listOffersAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	offers, err := client.ListOffers(
		context.Background(),
		ctx.String("maker"), ctx.String("asset_a"), ctx.String("asset_b"),
	)
	if err != nil {
		return err
	}

	printRespJSON(offers)
	return nil
}

func deriveOfferAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.OfferAddress(
		context.Background(),
		ctx.String("maker"), ctx.String("id"), ctx.String("asset_a"),
	)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func parseWantedAmount(ctx *cli.Context) (string, error) {
	precision := ctx.Uint("precision")
	if ctx.IsSet("precision_b") {
		precision = ctx.Uint("precision_b")
	}
	return toBaseUnits(ctx.String("wanted_amount"), precision)
}
