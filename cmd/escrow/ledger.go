package main

import (
	"context"
	"fmt"

	"github.com/tdex-network/tdex-escrow/pkg/api"
	"github.com/urfave/cli/v2"
)

var deposit = cli.Command{
	Name:  "deposit",
	Usage: "credit some amount of an asset to an account",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "account",
			Usage:    "the account to credit",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "asset",
			Usage:    "the asset to deposit",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the amount to deposit",
			Required: true,
		},
		&precisionFlag,
	},
	Action: depositAction,
}

var transfer = cli.Command{
	Name:  "transfer",
	Usage: "move some amount of an asset between two accounts",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "from",
			Usage:    "the account to debit",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "to",
			Usage:    "the account to credit",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "asset",
			Usage:    "the asset to transfer",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the amount to transfer",
			Required: true,
		},
		&precisionFlag,
	},
	Action: transferAction,
}

var balance = cli.Command{
	Name:  "balance",
	Usage: "get the balances of an account",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "account",
			Usage:    "the account to get balances for",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "asset",
			Usage: "restrict to the balance of this asset",
		},
		&precisionFlag,
	},
	Action: balanceAction,
}

func depositAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	amount, err := parseAmountFlag(ctx, "amount")
	if err != nil {
		return err
	}

	reply, err := client.Deposit(context.Background(), api.DepositRequest{
		Account: ctx.String("account"),
		Asset:   ctx.String("asset"),
		Amount:  amount,
	})
	if err != nil {
		return err
	}

	printBalances(ctx, *reply)
	return nil
}

func transferAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	amount, err := parseAmountFlag(ctx, "amount")
	if err != nil {
		return err
	}

	reply, err := client.Transfer(context.Background(), api.TransferRequest{
		From:   ctx.String("from"),
		To:     ctx.String("to"),
		Asset:  ctx.String("asset"),
		Amount: amount,
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("transfer completed")
	printBalances(ctx, *reply)
	return nil
}

func balanceAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	account, asset := ctx.String("account"), ctx.String("asset")
	if asset != "" {
		reply, err := client.GetBalance(context.Background(), account, asset)
		if err != nil {
			return err
		}
		printBalances(ctx, *reply)
		return nil
	}

	balances, err := client.ListBalances(context.Background(), account)
	if err != nil {
		return err
	}
	printBalances(ctx, balances...)
	return nil
}

func printBalances(ctx *cli.Context, balances ...api.Balance) {
	for i := range balances {
		balances[i].Amount = formatAmount(ctx, balances[i].Amount)
	}
	printRespJSON(balances)
}
