package usecase

import (
	"context"

	"github.com/nutrilog/backend/internal/domain"
)

// NutrientCache memoizes per-food nutrient rows for the lifetime of one
// submission request, so repeated items hit the database once. Never shared
// across requests.
type NutrientCache struct {
	entries map[domain.FoodRef]map[string]float64
}

// NewNutrientCache creates an empty request-scoped nutrient cache.
func NewNutrientCache() *NutrientCache {
	return &NutrientCache{entries: make(map[domain.FoodRef]map[string]float64)}
}

// Rows returns the food's per-100g nutrient amounts, loading them through
// foods on first access.
func (c *NutrientCache) Rows(ctx context.Context, foods domain.FoodRepository, ref domain.FoodRef) (map[string]float64, error) {
	if rows, ok := c.entries[ref]; ok {
		return rows, nil
	}
	rows, err := foods.NutrientRows(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.entries[ref] = rows
	return rows, nil
}

// MicronutrientCount counts canonical non-macro nutrients with a positive
// stored amount. A count of zero on a matched food signals a macros-only
// record and triggers one rematch attempt.
func MicronutrientCount(rows map[string]float64) int {
	count := 0
	for code, amount := range rows {
		if amount <= 0 {
			continue
		}
		if domain.IsMacroCode(code) {
			continue
		}
		if domain.IsCanonicalCode(code) {
			count++
		}
	}
	return count
}
