package units

import (
	"math"
	"testing"
)

func TestToGrams(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		unit     string
		want     float64
		wantOK   bool
	}{
		{"grams pass through", 120, "g", 120, true},
		{"kilograms", 1, "kg", 1000, true},
		{"ounces", 1, "oz", 28.349523125, true},
		{"pounds", 1, "lb", 453.59237, true},
		{"milliliters as mass", 250, "ml", 250, true},
		{"liters as mass", 1.5, "l", 1500, true},
		{"uppercase unit", 2, "KG", 2000, true},
		{"padded unit", 10, " g ", 10, true},
		{"serving unit unconvertible", 1, "serv", 0, false},
		{"empty unit unconvertible", 100, "", 0, false},
		{"unknown unit unconvertible", 1, "cup", 0, false},
		{"zero quantity", 0, "g", 0, false},
		{"negative quantity", -5, "g", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToGrams(tt.quantity, tt.unit)
			if ok != tt.wantOK {
				t.Fatalf("ToGrams(%v, %q) ok = %v, want %v", tt.quantity, tt.unit, ok, tt.wantOK)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("ToGrams(%v, %q) = %v, want %v", tt.quantity, tt.unit, got, tt.want)
			}
		})
	}

	t.Run("non-finite quantities", func(t *testing.T) {
		for _, q := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			if _, ok := ToGrams(q, "g"); ok {
				t.Errorf("ToGrams(%v, g) ok = true, want false", q)
			}
		}
	})
}

func TestKnownUnit(t *testing.T) {
	for _, u := range []string{"g", "kg", "oz", "lb", "ml", "l"} {
		if !KnownUnit(u) {
			t.Errorf("KnownUnit(%q) = false, want true", u)
		}
	}
	for _, u := range []string{"serv", "", "cup", "piece"} {
		if KnownUnit(u) {
			t.Errorf("KnownUnit(%q) = true, want false", u)
		}
	}
}
