package main

import (
	"github.com/tdex-network/tdex-escrow/pkg/mathutil"
	"github.com/urfave/cli/v2"
)

var precisionFlag = cli.UintFlag{
	Name:  "precision",
	Usage: "number of decimal places of the given amounts, 0 for base units",
	Value: 0,
}

// parseAmountFlag converts the decimal amount of the given flag into base
// units as expected by the daemon.
func parseAmountFlag(ctx *cli.Context, name string) (string, error) {
	return toBaseUnits(ctx.String(name), ctx.Uint("precision"))
}

func toBaseUnits(amount string, precision uint) (string, error) {
	units, err := mathutil.ToBaseUnits(amount, precision)
	if err != nil {
		return "", err
	}
	return mathutil.FromBaseUnits(units, 0), nil
}

// formatAmount converts an amount in base units into a decimal one with the
// precision given by flag.
func formatAmount(ctx *cli.Context, amount string) string {
	baseUnits, err := mathutil.ToBaseUnits(amount, 0)
	if err != nil {
		return amount
	}
	return mathutil.FromBaseUnits(baseUnits, ctx.Uint("precision"))
}
