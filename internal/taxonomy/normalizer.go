// Package taxonomy maps externally-sourced nutrient observations onto the
// canonical nutrient codes. Mapping precedence: exact external numeric
// identifier first, then ordered case-insensitive name-fragment rules.
package taxonomy

import (
	"strings"

	"github.com/nutrilog/backend/internal/domain"
)

// External nutrient numbers for the key identifiers (FoodData Central style).
const (
	idEnergyKcal   = 1008
	idProtein      = 1003
	idTotalFat     = 1004
	idCarbohydrate = 1005
	idAlcohol      = 1018
	idWater        = 1051
	idCaffeine     = 1057
	idFiber        = 1079
	idSugars       = 2000
)

// idTable maps external numeric identifiers directly to canonical codes.
var idTable = map[int]string{
	idEnergyKcal:   domain.CodeEnergyKcal,
	idProtein:      domain.CodeProtein,
	idTotalFat:     domain.CodeFat,
	idCarbohydrate: domain.CodeCarbs,
	idAlcohol:      domain.CodeAlcohol,
	idWater:        domain.CodeWater,
	idCaffeine:     domain.CodeCaffeine,
	idFiber:        domain.CodeFiber,
	idSugars:       domain.CodeSugars,

	1258: domain.CodeSaturatedFat,
	1292: domain.CodeMonounsaturatedFat,
	1293: domain.CodePolyunsaturatedFat,
	1257: domain.CodeTransFat,
	1253: domain.CodeCholesterol,

	1093: domain.CodeSodium,
	1092: domain.CodePotassium,
	1087: domain.CodeCalcium,
	1089: domain.CodeIron,
	1090: domain.CodeMagnesium,
	1095: domain.CodeZinc,
	1091: domain.CodePhosphorus,
	1098: domain.CodeCopper,
	1101: domain.CodeManganese,
	1103: domain.CodeSelenium,
	1100: domain.CodeIodine,

	1106: domain.CodeVitaminA,
	1165: domain.CodeThiamin,
	1166: domain.CodeRiboflavin,
	1167: domain.CodeNiacin,
	1170: domain.CodeVitaminB5,
	1175: domain.CodeVitaminB6,
	1177: domain.CodeFolate,
	1178: domain.CodeVitaminB12,
	1162: domain.CodeVitaminC,
	1114: domain.CodeVitaminD,
	1109: domain.CodeVitaminE,
	1185: domain.CodeVitaminK,
	1180: domain.CodeCholine,

	1221: domain.CodeHistidine,
	1212: domain.CodeIsoleucine,
	1213: domain.CodeLeucine,
	1214: domain.CodeLysine,
	1215: domain.CodeMethionine,
	1217: domain.CodePhenylalanine,
	1211: domain.CodeThreonine,
	1210: domain.CodeTryptophan,
	1219: domain.CodeValine,
}

// omega sub-species identifiers. These never map to a canonical code on
// their own; they contribute to derived omega totals when the aggregate
// observation is absent or zero.
var (
	omega3SpeciesIDs = map[int]bool{
		1404: true, // ALA 18:3 n-3
		1278: true, // EPA 20:5 n-3
		1280: true, // DPA 22:5 n-3
		1272: true, // DHA 22:6 n-3
	}
	omega6SpeciesIDs = map[int]bool{
		1316: true, // LA 18:2 n-6
		1321: true, // gamma-linolenic 18:3 n-6
		1313: true, // eicosadienoic 20:2 n-6
		1406: true, // arachidonic 20:4 n-6
	}
)

// nameRule is one ordered name-fragment mapping. First matching rule wins and
// no rule is re-evaluated after a match.
type nameRule struct {
	fragments []string
	unit      string // required unit, empty = any
	code      string
}

// nameRules are evaluated top to bottom: energy, protein, fat,
// carbohydrate, fiber, sugars, sodium, remaining minerals, vitamins, amino
// acids, omega fatty acids, alcohol.
var nameRules = []nameRule{
	{[]string{"energy"}, "kcal", domain.CodeEnergyKcal},
	{[]string{"protein"}, "", domain.CodeProtein},
	{[]string{"fatty acids, total saturated"}, "", domain.CodeSaturatedFat},
	{[]string{"fatty acids, total monounsaturated"}, "", domain.CodeMonounsaturatedFat},
	{[]string{"fatty acids, total polyunsaturated"}, "", domain.CodePolyunsaturatedFat},
	{[]string{"fatty acids, total trans"}, "", domain.CodeTransFat},
	{[]string{"total lipid", "total fat"}, "", domain.CodeFat},
	{[]string{"carbohydrate"}, "", domain.CodeCarbs},
	{[]string{"fiber"}, "", domain.CodeFiber},
	{[]string{"sugars"}, "", domain.CodeSugars},
	{[]string{"sodium"}, "", domain.CodeSodium},
	{[]string{"cholesterol"}, "", domain.CodeCholesterol},
	{[]string{"potassium"}, "", domain.CodePotassium},
	{[]string{"calcium"}, "", domain.CodeCalcium},
	{[]string{"iron"}, "", domain.CodeIron},
	{[]string{"magnesium"}, "", domain.CodeMagnesium},
	{[]string{"zinc"}, "", domain.CodeZinc},
	{[]string{"phosphorus"}, "", domain.CodePhosphorus},
	{[]string{"copper"}, "", domain.CodeCopper},
	{[]string{"manganese"}, "", domain.CodeManganese},
	{[]string{"selenium"}, "", domain.CodeSelenium},
	{[]string{"iodine"}, "", domain.CodeIodine},
	{[]string{"vitamin a"}, "", domain.CodeVitaminA},
	{[]string{"thiamin", "vitamin b1"}, "", domain.CodeThiamin},
	{[]string{"riboflavin", "vitamin b2"}, "", domain.CodeRiboflavin},
	{[]string{"niacin", "vitamin b3"}, "", domain.CodeNiacin},
	{[]string{"pantothenic"}, "", domain.CodeVitaminB5},
	{[]string{"vitamin b-6", "vitamin b6"}, "", domain.CodeVitaminB6},
	{[]string{"folate"}, "", domain.CodeFolate},
	{[]string{"vitamin b-12", "vitamin b12"}, "", domain.CodeVitaminB12},
	{[]string{"vitamin c"}, "", domain.CodeVitaminC},
	{[]string{"vitamin d"}, "", domain.CodeVitaminD},
	{[]string{"vitamin e"}, "", domain.CodeVitaminE},
	{[]string{"vitamin k"}, "", domain.CodeVitaminK},
	{[]string{"choline"}, "", domain.CodeCholine},
	{[]string{"histidine"}, "", domain.CodeHistidine},
	{[]string{"isoleucine"}, "", domain.CodeIsoleucine},
	{[]string{"leucine"}, "", domain.CodeLeucine},
	{[]string{"lysine"}, "", domain.CodeLysine},
	{[]string{"methionine"}, "", domain.CodeMethionine},
	{[]string{"phenylalanine"}, "", domain.CodePhenylalanine},
	{[]string{"threonine"}, "", domain.CodeThreonine},
	{[]string{"tryptophan"}, "", domain.CodeTryptophan},
	{[]string{"valine"}, "", domain.CodeValine},
	{[]string{"omega-3", "n-3"}, "", domain.CodeOmega3},
	{[]string{"omega-6", "n-6"}, "", domain.CodeOmega6},
	{[]string{"alcohol, ethyl", "ethanol"}, "", domain.CodeAlcohol},
	{[]string{"water"}, "", domain.CodeWater},
	{[]string{"caffeine"}, "", domain.CodeCaffeine},
}

// Normalize maps one external observation to a canonical code. The second
// return is false for unmapped or low-value nutrients, which are discarded.
func Normalize(obs domain.NutrientObservation) (string, bool) {
	if code, ok := idTable[obs.ExternalID]; ok {
		return code, true
	}
	name := strings.ToLower(obs.Name)
	unit := strings.ToLower(strings.TrimSpace(obs.Unit))
	for _, rule := range nameRules {
		if rule.unit != "" && rule.unit != unit {
			continue
		}
		for _, frag := range rule.fragments {
			if strings.Contains(name, frag) {
				return rule.code, true
			}
		}
	}
	return "", false
}

// NormalizeAll normalizes a food's observations into per-100g rows keyed by
// canonical code, derives net carbs and omega totals, and filters the result
// to the canonical allow-list. The first observation mapping to a code wins;
// there is at most one amount per code.
func NormalizeAll(observations []domain.NutrientObservation) map[string]float64 {
	rows := make(map[string]float64)
	var omega3Sum, omega6Sum float64

	for _, obs := range observations {
		if omega3SpeciesIDs[obs.ExternalID] {
			omega3Sum += obs.AmountPer100G
			continue
		}
		if omega6SpeciesIDs[obs.ExternalID] {
			omega6Sum += obs.AmountPer100G
			continue
		}
		code, ok := Normalize(obs)
		if !ok {
			continue
		}
		if _, exists := rows[code]; exists {
			continue
		}
		rows[code] = obs.AmountPer100G
	}

	deriveNetCarbs(rows)
	deriveOmegaTotal(rows, domain.CodeOmega3, omega3Sum)
	deriveOmegaTotal(rows, domain.CodeOmega6, omega6Sum)

	for code := range rows {
		if !domain.IsCanonicalCode(code) {
			delete(rows, code)
		}
	}
	return rows
}

// deriveNetCarbs adds net_carbs_g = max(0, carbs - fiber) when either input
// is present and the value was not supplied by the source.
func deriveNetCarbs(rows map[string]float64) {
	if _, supplied := rows[domain.CodeNetCarbs]; supplied {
		return
	}
	carbs, hasCarbs := rows[domain.CodeCarbs]
	fiber, hasFiber := rows[domain.CodeFiber]
	if !hasCarbs && !hasFiber {
		return
	}
	net := carbs - fiber
	if net < 0 {
		net = 0
	}
	rows[domain.CodeNetCarbs] = net
}

// deriveOmegaTotal fills the aggregate omega code from sub-species sums when
// the aggregate is absent or zero.
func deriveOmegaTotal(rows map[string]float64, code string, speciesSum float64) {
	if speciesSum <= 0 {
		return
	}
	if existing, ok := rows[code]; ok && existing > 0 {
		return
	}
	rows[code] = speciesSum
}
