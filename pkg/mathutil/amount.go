package mathutil

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// MaxPrecision is the max number of decimal places an asset can have for its
// base units to fit a uint64.
const MaxPrecision = 19

var maxUint64 = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// ToBaseUnits converts the given decimal amount into base units of an asset
// with the given precision, ie. "1.5" with precision 8 is 150000000.
// It fails if the amount is not positive, has more decimal places than the
// precision or does not fit a uint64.
func ToBaseUnits(amount string, precision uint) (uint64, error) {
	if precision > MaxPrecision {
		return 0, fmt.Errorf("precision must be in range [0, %d]", MaxPrecision)
	}

	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !amountDecimal.IsPositive() {
		return 0, fmt.Errorf("amount must be greater than zero")
	}

	units := amountDecimal.Shift(int32(precision))
	if !units.Equal(units.Truncate(0)) {
		return 0, fmt.Errorf(
			"amount %s has more than %d decimal places", amount, precision,
		)
	}
	if units.GreaterThan(maxUint64) {
		return 0, fmt.Errorf("amount %s is too big", amount)
	}

	return units.BigInt().Uint64(), nil
}

// FromBaseUnits converts the given amount of base units of an asset with the
// given precision into its decimal representation.
func FromBaseUnits(amount uint64, precision uint) string {
	units := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0)
	return units.Shift(-int32(precision)).String()
}
