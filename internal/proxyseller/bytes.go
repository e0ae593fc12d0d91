package proxyseller

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownUnit = errors.New("unknown traffic unit")

// binary multiples, the provider counts traffic in powers of 1024
var units = map[string]int64{
	"b":  1,
	"kb": 1 << 10,
	"mb": 1 << 20,
	"gb": 1 << 30,
	"tb": 1 << 40,
}

// ConvertToBytes parses a human tariff label like "3 Gb" into a byte
// count. The unit table is strict: anything outside b/kb/mb/gb/tb is
// rejected.
func ConvertToBytes(tariff string) (int64, error) {
	fields := strings.Fields(strings.TrimSpace(tariff))
	if len(fields) != 2 {
		return 0, fmt.Errorf("%w: malformed tariff %q", ErrUnknownUnit, tariff)
	}

	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed tariff %q", ErrUnknownUnit, tariff)
	}

	mult, ok := units[strings.ToLower(fields[1])]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, fields[1])
	}

	return int64(value * float64(mult)), nil
}
