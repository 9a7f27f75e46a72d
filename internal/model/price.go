package model

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// PriceScale is the number of fractional digits kept for a price. Matches NUMERIC(14,2).
	PriceScale = 2

	priceIntegerDigits = 12
)

// ParsePrice coerces a numeric or numeric-text value into a price rounded to PriceScale places.
// Halves are rounded away from zero.
func ParsePrice(v any) (decimal.Decimal, error) {
	var (
		price decimal.Decimal
		err   error
	)
	switch p := v.(type) {
	case decimal.Decimal:
		price = p
	case *decimal.Decimal:
		if p == nil {
			return decimal.Zero, fmt.Errorf("%w: price is null", ErrMalformedBody)
		}
		price = *p
	case string:
		price, err = decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: price %q is not a number", ErrMalformedBody, p)
		}
	case json.Number:
		price, err = decimal.NewFromString(p.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: price %q is not a number", ErrMalformedBody, p.String())
		}
	case float64:
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return decimal.Zero, fmt.Errorf("%w: price %v is not a finite number", ErrMalformedBody, p)
		}
		price = decimal.NewFromFloat(p)
	case float32:
		if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
			return decimal.Zero, fmt.Errorf("%w: price %v is not a finite number", ErrMalformedBody, p)
		}
		price = decimal.NewFromFloat32(p)
	case int:
		price = decimal.NewFromInt(int64(p))
	case int8:
		price = decimal.NewFromInt(int64(p))
	case int16:
		price = decimal.NewFromInt(int64(p))
	case int32:
		price = decimal.NewFromInt32(p)
	case int64:
		price = decimal.NewFromInt(p)
	case uint:
		price = decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(p)), 0)
	case uint8:
		price = decimal.NewFromInt(int64(p))
	case uint16:
		price = decimal.NewFromInt(int64(p))
	case uint32:
		price = decimal.NewFromInt(int64(p))
	case uint64:
		price = decimal.NewFromBigInt(new(big.Int).SetUint64(p), 0)
	case nil:
		return decimal.Zero, fmt.Errorf("%w: price is null", ErrMalformedBody)
	default:
		return decimal.Zero, fmt.Errorf("%w: price has unsupported type %T", ErrMalformedBody, v)
	}

	// Exponents are checked before Round, which expands the coefficient.
	if !priceWithinLimit(price) {
		return decimal.Zero, errPriceTooLarge
	}
	if price.IsZero() || integerDigits(price) < -PriceScale {
		return decimal.Zero, nil
	}

	price = price.Round(PriceScale)
	if !priceWithinLimit(price) {
		return decimal.Zero, errPriceTooLarge
	}
	return price, nil
}

var errPriceTooLarge = fmt.Errorf("%w: price exceeds %d integer digits", ErrMalformedBody, priceIntegerDigits)

// integerDigits returns n such that 10^(n-1) <= |d| < 10^n for a non-zero d.
func integerDigits(d decimal.Decimal) int {
	return d.NumDigits() + int(d.Exponent())
}

func priceWithinLimit(d decimal.Decimal) bool {
	return d.IsZero() || integerDigits(d) <= priceIntegerDigits
}
