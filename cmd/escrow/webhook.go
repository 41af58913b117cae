package main

import (
	"context"
	"fmt"

	"github.com/tdex-network/tdex-escrow/pkg/api"
	"github.com/urfave/cli/v2"
)

var addwebhook = cli.Command{
	Name:  "addwebhook",
	Usage: "add a webhook registered for some event",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "the endpoint where to notify the webhook",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "secret",
			Usage: "the eventual secret to authenticate requests",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "event",
			Usage: "the event for which the webhook gets notified: OFFER_MADE, OFFER_TAKEN or *",
			Value: "*",
		},
	},
	Action: addWebhookAction,
}

var removewebhook = cli.Command{
	Name:  "removewebhook",
	Usage: "remove some webhook",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "id",
			Usage: "the id of the webhook to remove",
		},
	},
	Action: removeWebhookAction,
}

var listwebhooks = cli.Command{
	Name:  "listwebhooks",
	Usage: "list all webhooks registered for some event",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "event",
			Usage: "the event for which listing webhooks",
			Value: "*",
		},
	},
	Action: listWebhooksAction,
}

func addWebhookAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	id, err := client.AddWebhook(context.Background(), api.AddWebhookRequest{
		Topic:    ctx.String("event"),
		Endpoint: ctx.String("endpoint"),
		Secret:   ctx.String("secret"),
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("hook id:", id)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	id := ctx.String("id")
	if id == "" {
		return &invalidUsageError{ctx, "removewebhook"}
	}
	if err := client.RemoveWebhook(context.Background(), id); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("webhook removed")
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	hooks, err := client.ListWebhooks(context.Background(), ctx.String("event"))
	if err != nil {
		return err
	}

	printRespJSON(hooks)
	return nil
}
