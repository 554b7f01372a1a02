package domain

import (
	"time"

	"github.com/google/uuid"
)

// Provenance of a food record.
const (
	ProvenanceUser   = "user"
	ProvenanceGlobal = "global"
)

// ResolvedItem sources.
const (
	SourceDB = "db"
	SourceAI = "ai"
)

// NutrientObservation is one externally-sourced measurement, produced only
// during food import.
type NutrientObservation struct {
	ExternalID     int     `json:"externalId"`
	ExternalNumber string  `json:"externalNumber"`
	Name           string  `json:"name"`
	Unit           string  `json:"unit"`
	AmountPer100G  float64 `json:"amountPer100g"`
}

// FoodRecord is a verified nutrient-bearing food. NutrientRows are amounts
// per 100g keyed by canonical code and are the single source of truth for
// deterministic resolution.
type FoodRecord struct {
	ID           uuid.UUID          `json:"id"`
	ExternalID   string             `json:"externalId,omitempty"`
	Name         string             `json:"name"`
	Brand        string             `json:"brand,omitempty"`
	Locale       string             `json:"locale"`
	Provenance   string             `json:"provenance"`
	NutrientRows map[string]float64 `json:"nutrientRows"`
}

// FoodRef identifies a food in either the user-private or global store.
type FoodRef struct {
	ID        uuid.UUID `json:"id"`
	UserOwned bool      `json:"userOwned"`
}

// FoodCandidate is a search hit prior to ranking.
type FoodCandidate struct {
	Ref   FoodRef `json:"ref"`
	Name  string  `json:"name"`
	Brand string  `json:"brand,omitempty"`
}

// FoodMatch is the outcome of deterministic name resolution.
type FoodMatch struct {
	FoodID      uuid.UUID `json:"foodId,omitempty"`
	UserFoodID  uuid.UUID `json:"userFoodId,omitempty"`
	Ref         FoodRef   `json:"-"`
	Name        string    `json:"name"`
	AutoMatched bool      `json:"autoMatched"`
	Coverage    int       `json:"-"`
}

// LogItem is one line of a day's food log as submitted.
type LogItem struct {
	FoodName         string   `json:"foodName"`
	Amount           float64  `json:"amount"`
	Unit             string   `json:"unit"`
	PreparationState string   `json:"preparationState,omitempty"`
	FoodRef          *FoodRef `json:"foodRef,omitempty"`
}

// Macros are the rounded per-item or per-day macro totals. Alcohol keeps one
// decimal place, everything else is whole units.
type Macros struct {
	Calories int     `json:"calories"`
	ProteinG int     `json:"protein_g"`
	CarbsG   int     `json:"carbs_g"`
	FatG     int     `json:"fats_g"`
	AlcoholG float64 `json:"alcohol_g"`
}

// Add accumulates other into m field by field.
func (m *Macros) Add(other Macros) {
	m.Calories += other.Calories
	m.ProteinG += other.ProteinG
	m.CarbsG += other.CarbsG
	m.FatG += other.FatG
	m.AlcoholG += other.AlcoholG
}

// ResolvedItem is the pipeline's working representation of a log item. It is
// never persisted directly; it decomposes into a stored item plus per-item
// nutrient rows.
type ResolvedItem struct {
	LogItem
	Grams        float64            `json:"grams"`
	Source       string             `json:"source"`
	Macros       Macros             `json:"macros"`
	NutrientRows map[string]float64 `json:"nutrientRows,omitempty"`
}

// StoredLogItem is the persisted shape of one resolved line.
type StoredLogItem struct {
	ID               uuid.UUID          `json:"id"`
	FoodName         string             `json:"foodName"`
	Amount           float64            `json:"amount"`
	Unit             string             `json:"unit"`
	PreparationState string             `json:"preparationState,omitempty"`
	Grams            float64            `json:"grams"`
	Source           string             `json:"source"`
	Macros           Macros             `json:"macros"`
	NutrientRows     map[string]float64 `json:"nutrientRows,omitempty"`
}

// DayLog is the per-(user, date) aggregate. One row per user per date.
type DayLog struct {
	UserID  uuid.UUID `json:"userId"`
	Date    string    `json:"date"` // YYYY-MM-DD
	Totals  Macros    `json:"totals"`
	Notes   string    `json:"notes,omitempty"`
	WaterMl int       `json:"waterMl"`
	SaltG   float64   `json:"saltG"`
}

// Micro-target basis modes.
const (
	TargetModeRDI        = "rdi"
	TargetModeBodyweight = "bodyweight"
	TargetModeCustom     = "custom"
)

// Biological sex values used by the RDI baseline table.
const (
	SexMale        = "male"
	SexFemale      = "female"
	SexUnspecified = ""
)

// TargetSettings holds a user's micro-target configuration plus the profile
// inputs the calculator needs.
type TargetSettings struct {
	UserID   uuid.UUID `json:"userId"`
	Mode     string    `json:"mode"`
	Sex      string    `json:"sex"`
	WeightKg float64   `json:"weightKg"`
}

// MicroTarget is one personalized per-nutrient target. Amount is nil when the
// nutrient has no defined baseline under the selected mode.
type MicroTarget struct {
	Code   string   `json:"code"`
	Label  string   `json:"label"`
	Unit   string   `json:"unit"`
	Amount *float64 `json:"amount"`
}

// EstimateItem is one line sent to the estimation service.
type EstimateItem struct {
	FoodName         string  `json:"foodName"`
	Amount           float64 `json:"amount"`
	Unit             string  `json:"unit"`
	PreparationState string  `json:"preparationState,omitempty"`
}

// EstimatedItem is the validated per-item estimation result.
type EstimatedItem struct {
	FoodName         string  `json:"foodName"`
	Amount           float64 `json:"amount"`
	Unit             string  `json:"unit"`
	PreparationState string  `json:"preparationState,omitempty"`
	Macros           Macros  `json:"macros"`
}

// EstimateResult is the validated whole-batch estimation response.
type EstimateResult struct {
	Totals   Macros          `json:"totals"`
	PerItem  []EstimatedItem `json:"perItem"`
	Warnings []string        `json:"warnings,omitempty"`
	CachedAt time.Time       `json:"cachedAt,omitempty"`
}

// ExternalFood is a food returned by the external food-database API.
type ExternalFood struct {
	ExternalID   string                `json:"externalId"`
	Name         string                `json:"name"`
	Brand        string                `json:"brand,omitempty"`
	DataType     string                `json:"dataType,omitempty"`
	Observations []NutrientObservation `json:"observations"`
}
