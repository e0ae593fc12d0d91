// Package pricing maps proxy kind and quantity (or resident tariff
// size) to a price. Pure lookups, safe for concurrent use.
package pricing

import (
	"errors"
	"fmt"

	"github.com/proxyluxe/backend/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrUnknownTariff = errors.New("unknown tariff")

var (
	ispUnitPrice  = decimal.RequireFromString("2.4")
	ipv6UnitPrice = decimal.RequireFromString("0.08")
)

// residentPrices is keyed by the tariff's GB label.
var residentPrices = map[int]decimal.Decimal{
	1:   decimal.RequireFromString("2.4"),
	3:   decimal.NewFromInt(7),
	10:  decimal.NewFromInt(21),
	25:  decimal.NewFromInt(50),
	50:  decimal.NewFromInt(90),
	100: decimal.NewFromInt(170),
}

// UnitPrice returns the per-proxy price for non-resident kinds.
func UnitPrice(proxyType string) (decimal.Decimal, error) {
	switch proxyType {
	case domain.TypeISP:
		return ispUnitPrice, nil
	case domain.TypeIPv6:
		return ipv6UnitPrice, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: no unit price for type %q", ErrUnknownTariff, proxyType)
	}
}

// ForOrder prices a whole order: unit price times quantity for isp and
// ipv6, fixed table lookup by GB label for resident.
func ForOrder(proxyType string, quantity int) (decimal.Decimal, error) {
	if proxyType == domain.TypeResident {
		price, ok := residentPrices[quantity]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: no pricing found for %d GB", ErrUnknownTariff, quantity)
		}
		return price, nil
	}

	unit, err := UnitPrice(proxyType)
	if err != nil {
		return decimal.Zero, err
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity))), nil
}
