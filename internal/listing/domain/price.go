package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ParsePrice reads a price as typed by a user, e.g. "$ 1.500" or "1500,50".
// Currency symbols, thousands dots and spaces are stripped; a comma is the
// decimal separator.
func ParsePrice(raw string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ".", "", " ", "", "\u00a0", "").Replace(raw)
	cleaned = strings.Replace(cleaned, ",", ".", 1)
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPrice)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return v, nil
}

var priceLocale = language.MustParse("es-AR")

// FormatPrice renders a price in pesos with Argentine grouping and no
// decimals: 950000 -> "$ 950.000".
func FormatPrice(price float64) string {
	return "$ " + message.NewPrinter(priceLocale).Sprintf("%d", int64(math.Round(price)))
}
