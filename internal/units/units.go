// Package units converts quantity/unit pairs to grams using fixed constants.
// Volume units are treated as mass-equivalent at 1 g/ml. No unit is ever
// silently guessed: anything outside the table reports unconvertible and the
// caller must consult a per-food lookup or fall back to estimation.
package units

import (
	"math"
	"strings"
)

// gramsPerUnit maps supported units to their gram equivalent.
var gramsPerUnit = map[string]float64{
	"g":  1,
	"kg": 1000,
	"oz": 28.349523125,
	"lb": 453.59237,
	"ml": 1,
	"l":  1000,
}

// ToGrams converts quantity in the given unit to grams. The second return is
// false when the quantity is not a finite positive number or the unit is not
// in the fixed table (notably serving-sized units like "serv").
func ToGrams(quantity float64, unit string) (float64, bool) {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return 0, false
	}
	factor, ok := gramsPerUnit[normalize(unit)]
	if !ok {
		return 0, false
	}
	return quantity * factor, true
}

// KnownUnit reports whether unit is directly convertible to grams.
func KnownUnit(unit string) bool {
	_, ok := gramsPerUnit[normalize(unit)]
	return ok
}

func normalize(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}
