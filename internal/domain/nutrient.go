package domain

// Canonical nutrient codes. Every stored amount carries one of these; codes
// outside the allow-list are dropped before persistence.
const (
	CodeEnergyKcal = "energy_kcal"
	CodeProtein    = "protein_g"
	CodeCarbs      = "carbs_g"
	CodeFat        = "fat_g"
	CodeFiber      = "fiber_g"
	CodeSugars     = "sugars_g"
	CodeNetCarbs   = "net_carbs_g"
	CodeAlcohol    = "alcohol_g"

	CodeSaturatedFat       = "saturated_fat_g"
	CodeMonounsaturatedFat = "monounsaturated_fat_g"
	CodePolyunsaturatedFat = "polyunsaturated_fat_g"
	CodeTransFat           = "trans_fat_g"
	CodeCholesterol        = "cholesterol_mg"
	CodeOmega3             = "omega3_g"
	CodeOmega6             = "omega6_g"

	CodeSodium     = "sodium_mg"
	CodePotassium  = "potassium_mg"
	CodeCalcium    = "calcium_mg"
	CodeIron       = "iron_mg"
	CodeMagnesium  = "magnesium_mg"
	CodeZinc       = "zinc_mg"
	CodePhosphorus = "phosphorus_mg"
	CodeCopper     = "copper_mg"
	CodeManganese  = "manganese_mg"
	CodeSelenium   = "selenium_ug"
	CodeIodine     = "iodine_ug"

	CodeVitaminA   = "vitamin_a_ug"
	CodeThiamin    = "vitamin_b1_mg"
	CodeRiboflavin = "vitamin_b2_mg"
	CodeNiacin     = "vitamin_b3_mg"
	CodeVitaminB5  = "vitamin_b5_mg"
	CodeVitaminB6  = "vitamin_b6_mg"
	CodeFolate     = "folate_ug"
	CodeVitaminB12 = "vitamin_b12_ug"
	CodeVitaminC   = "vitamin_c_mg"
	CodeVitaminD   = "vitamin_d_ug"
	CodeVitaminE   = "vitamin_e_mg"
	CodeVitaminK   = "vitamin_k_ug"
	CodeCholine    = "choline_mg"

	CodeHistidine     = "histidine_g"
	CodeIsoleucine    = "isoleucine_g"
	CodeLeucine       = "leucine_g"
	CodeLysine        = "lysine_g"
	CodeMethionine    = "methionine_g"
	CodePhenylalanine = "phenylalanine_g"
	CodeThreonine     = "threonine_g"
	CodeTryptophan    = "tryptophan_g"
	CodeValine        = "valine_g"

	CodeWater    = "water_g"
	CodeCaffeine = "caffeine_mg"
)

// Display groups, in presentation order.
const (
	GroupMacros     = "macros"
	GroupFats       = "fats"
	GroupVitamins   = "vitamins"
	GroupMinerals   = "minerals"
	GroupAminoAcids = "amino_acids"
	GroupOther      = "other"
)

// NutrientMeta describes how a canonical nutrient is presented.
type NutrientMeta struct {
	Code       string `json:"code"`
	Label      string `json:"label"`
	Unit       string `json:"unit"`
	Group      string `json:"group"`
	GroupOrder int    `json:"-"`
	Order      int    `json:"-"`
}

// nutrientMetaTable is the single source of truth for the canonical
// allow-list. Order within a group is the intra-group display order.
var nutrientMetaTable = []NutrientMeta{
	{CodeEnergyKcal, "Energy", "kcal", GroupMacros, 1, 1},
	{CodeProtein, "Protein", "g", GroupMacros, 1, 2},
	{CodeCarbs, "Carbohydrates", "g", GroupMacros, 1, 3},
	{CodeNetCarbs, "Net Carbs", "g", GroupMacros, 1, 4},
	{CodeFiber, "Fiber", "g", GroupMacros, 1, 5},
	{CodeSugars, "Sugars", "g", GroupMacros, 1, 6},
	{CodeFat, "Total Fat", "g", GroupMacros, 1, 7},
	{CodeAlcohol, "Alcohol", "g", GroupMacros, 1, 8},

	{CodeSaturatedFat, "Saturated Fat", "g", GroupFats, 2, 1},
	{CodeMonounsaturatedFat, "Monounsaturated Fat", "g", GroupFats, 2, 2},
	{CodePolyunsaturatedFat, "Polyunsaturated Fat", "g", GroupFats, 2, 3},
	{CodeTransFat, "Trans Fat", "g", GroupFats, 2, 4},
	{CodeOmega3, "Omega-3", "g", GroupFats, 2, 5},
	{CodeOmega6, "Omega-6", "g", GroupFats, 2, 6},
	{CodeCholesterol, "Cholesterol", "mg", GroupFats, 2, 7},

	{CodeVitaminA, "Vitamin A", "µg", GroupVitamins, 3, 1},
	{CodeThiamin, "Vitamin B1 (Thiamin)", "mg", GroupVitamins, 3, 2},
	{CodeRiboflavin, "Vitamin B2 (Riboflavin)", "mg", GroupVitamins, 3, 3},
	{CodeNiacin, "Vitamin B3 (Niacin)", "mg", GroupVitamins, 3, 4},
	{CodeVitaminB5, "Vitamin B5 (Pantothenic Acid)", "mg", GroupVitamins, 3, 5},
	{CodeVitaminB6, "Vitamin B6", "mg", GroupVitamins, 3, 6},
	{CodeFolate, "Folate", "µg", GroupVitamins, 3, 7},
	{CodeVitaminB12, "Vitamin B12", "µg", GroupVitamins, 3, 8},
	{CodeVitaminC, "Vitamin C", "mg", GroupVitamins, 3, 9},
	{CodeVitaminD, "Vitamin D", "µg", GroupVitamins, 3, 10},
	{CodeVitaminE, "Vitamin E", "mg", GroupVitamins, 3, 11},
	{CodeVitaminK, "Vitamin K", "µg", GroupVitamins, 3, 12},
	{CodeCholine, "Choline", "mg", GroupVitamins, 3, 13},

	{CodeSodium, "Sodium", "mg", GroupMinerals, 4, 1},
	{CodePotassium, "Potassium", "mg", GroupMinerals, 4, 2},
	{CodeCalcium, "Calcium", "mg", GroupMinerals, 4, 3},
	{CodeIron, "Iron", "mg", GroupMinerals, 4, 4},
	{CodeMagnesium, "Magnesium", "mg", GroupMinerals, 4, 5},
	{CodeZinc, "Zinc", "mg", GroupMinerals, 4, 6},
	{CodePhosphorus, "Phosphorus", "mg", GroupMinerals, 4, 7},
	{CodeCopper, "Copper", "mg", GroupMinerals, 4, 8},
	{CodeManganese, "Manganese", "mg", GroupMinerals, 4, 9},
	{CodeSelenium, "Selenium", "µg", GroupMinerals, 4, 10},
	{CodeIodine, "Iodine", "µg", GroupMinerals, 4, 11},

	{CodeHistidine, "Histidine", "g", GroupAminoAcids, 5, 1},
	{CodeIsoleucine, "Isoleucine", "g", GroupAminoAcids, 5, 2},
	{CodeLeucine, "Leucine", "g", GroupAminoAcids, 5, 3},
	{CodeLysine, "Lysine", "g", GroupAminoAcids, 5, 4},
	{CodeMethionine, "Methionine", "g", GroupAminoAcids, 5, 5},
	{CodePhenylalanine, "Phenylalanine", "g", GroupAminoAcids, 5, 6},
	{CodeThreonine, "Threonine", "g", GroupAminoAcids, 5, 7},
	{CodeTryptophan, "Tryptophan", "g", GroupAminoAcids, 5, 8},
	{CodeValine, "Valine", "g", GroupAminoAcids, 5, 9},

	{CodeWater, "Water", "g", GroupOther, 6, 1},
	{CodeCaffeine, "Caffeine", "mg", GroupOther, 6, 2},
}

var nutrientMetaByCode = func() map[string]NutrientMeta {
	m := make(map[string]NutrientMeta, len(nutrientMetaTable))
	for _, meta := range nutrientMetaTable {
		m[meta.Code] = meta
	}
	return m
}()

// IsCanonicalCode reports whether code is in the canonical allow-list.
func IsCanonicalCode(code string) bool {
	_, ok := nutrientMetaByCode[code]
	return ok
}

// MetaFor returns presentation metadata for a canonical code.
func MetaFor(code string) (NutrientMeta, bool) {
	meta, ok := nutrientMetaByCode[code]
	return meta, ok
}

// AllNutrientMeta returns the full allow-list in display order.
func AllNutrientMeta() []NutrientMeta {
	out := make([]NutrientMeta, len(nutrientMetaTable))
	copy(out, nutrientMetaTable)
	return out
}

// macroCodes are the codes that feed macro totals directly. Everything else
// counts as a micronutrient for coverage purposes.
var macroCodes = map[string]bool{
	CodeEnergyKcal: true,
	CodeProtein:    true,
	CodeCarbs:      true,
	CodeFat:        true,
	CodeFiber:      true,
	CodeSugars:     true,
	CodeNetCarbs:   true,
	CodeAlcohol:    true,
}

// IsMacroCode reports whether code maps to a macro field.
func IsMacroCode(code string) bool {
	return macroCodes[code]
}

// KeyNutrientCodes spans macros, vitamins and minerals and is used as the
// coverage proxy when ranking match candidates.
func KeyNutrientCodes() []string {
	codes := make([]string, 0, len(nutrientMetaTable))
	for _, meta := range nutrientMetaTable {
		if meta.Group == GroupAminoAcids || meta.Group == GroupOther {
			continue
		}
		codes = append(codes, meta.Code)
	}
	return codes
}
