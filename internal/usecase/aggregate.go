package usecase

import (
	"math"
	"sort"

	"github.com/nutrilog/backend/internal/domain"
)

// Calorie factors for the derived-energy fallback.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
	kcalPerGramAlcohol = 7
)

// ScaleRows multiplies each per-100g amount by grams/100.
func ScaleRows(per100g map[string]float64, grams float64) map[string]float64 {
	scaled := make(map[string]float64, len(per100g))
	factor := grams / 100
	for code, amount := range per100g {
		scaled[code] = amount * factor
	}
	return scaled
}

// MacroTotals sums the macro-mapped codes out of scaled nutrient rows. When
// no explicit energy row is present, calories derive as protein*4 + carbs*4
// + fat*9 + alcohol*7. Outputs round to integers except alcohol, which keeps
// one decimal.
func MacroTotals(rows map[string]float64) domain.Macros {
	protein := rows[domain.CodeProtein]
	carbs := rows[domain.CodeCarbs]
	fat := rows[domain.CodeFat]
	alcohol := rows[domain.CodeAlcohol]

	energy, hasEnergy := rows[domain.CodeEnergyKcal]
	if !hasEnergy {
		energy = protein*kcalPerGramProtein + carbs*kcalPerGramCarbs +
			fat*kcalPerGramFat + alcohol*kcalPerGramAlcohol
	}

	return domain.Macros{
		Calories: int(math.Round(energy)),
		ProteinG: int(math.Round(protein)),
		CarbsG:   int(math.Round(carbs)),
		FatG:     int(math.Round(fat)),
		AlcoholG: math.Round(alcohol*10) / 10,
	}
}

// SumItemMacros sums already-rounded per-item macros so item-level and
// day-level totals stay consistent.
func SumItemMacros(items []domain.ResolvedItem) domain.Macros {
	var totals domain.Macros
	for _, item := range items {
		totals.Add(item.Macros)
	}
	totals.AlcoholG = math.Round(totals.AlcoholG*10) / 10
	return totals
}

// NutrientBreakdownRow is one presentational line of a day's full profile.
type NutrientBreakdownRow struct {
	Code   string  `json:"code"`
	Label  string  `json:"label"`
	Unit   string  `json:"unit"`
	Group  string  `json:"group"`
	Amount float64 `json:"amount"`
}

// DayBreakdown sums per-item nutrient snapshots into the day's full nutrient
// profile, decorated with display metadata and sorted by group then
// intra-group order. Codes without metadata are dropped.
func DayBreakdown(itemRows []map[string]float64) []NutrientBreakdownRow {
	sums := make(map[string]float64)
	for _, rows := range itemRows {
		for code, amount := range rows {
			sums[code] += amount
		}
	}

	out := make([]NutrientBreakdownRow, 0, len(sums))
	order := make(map[string]int, len(sums))
	for code, amount := range sums {
		meta, ok := domain.MetaFor(code)
		if !ok {
			continue
		}
		order[code] = meta.GroupOrder*100 + meta.Order
		out = append(out, NutrientBreakdownRow{
			Code:   code,
			Label:  meta.Label,
			Unit:   meta.Unit,
			Group:  meta.Group,
			Amount: math.Round(amount*100) / 100,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return order[out[i].Code] < order[out[j].Code]
	})
	return out
}
