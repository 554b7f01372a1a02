package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// FoodRepository is the verified-food store, user-private and global flavors.
type FoodRepository interface {
	// SearchUserFoods matches pattern against name and brand of the user's
	// private foods. Pattern is a SQL LIKE pattern.
	SearchUserFoods(ctx context.Context, userID uuid.UUID, pattern string) ([]FoodCandidate, error)
	// SearchGlobalFoods matches pattern against name and brand of shared foods.
	SearchGlobalFoods(ctx context.Context, pattern string) ([]FoodCandidate, error)
	// KeyNutrientCount returns how many of the key nutrient codes have a
	// stored amount for the food.
	KeyNutrientCount(ctx context.Context, ref FoodRef) (int, error)
	// NutrientRows returns all stored per-100g amounts keyed by canonical code.
	NutrientRows(ctx context.Context, ref FoodRef) (map[string]float64, error)
	// GramsPerUnit looks up the food-specific gram weight of one serving-style
	// unit. Returns ErrLookupUnavailable when the backing table is missing.
	GramsPerUnit(ctx context.Context, ref FoodRef, unit string) (float64, bool, error)
	// FindByExternalID returns the global food imported from externalID, if any.
	FindByExternalID(ctx context.Context, externalID string) (*FoodRecord, error)
	// UpsertGlobalFood writes the record and replaces its nutrient rows.
	UpsertGlobalFood(ctx context.Context, rec *FoodRecord) (uuid.UUID, error)
}

// LogRepository persists day logs and their items.
type LogRepository interface {
	// ReplaceDay upserts the day log and replaces the day's items in one
	// transaction. Items are never partially updated.
	ReplaceDay(ctx context.Context, log *DayLog, items []StoredLogItem) error
	GetDayLog(ctx context.Context, userID uuid.UUID, date string) (*DayLog, error)
	DayItems(ctx context.Context, userID uuid.UUID, date string) ([]StoredLogItem, error)
}

// TargetRepository persists micro-target settings and overrides.
type TargetRepository interface {
	GetSettings(ctx context.Context, userID uuid.UUID) (*TargetSettings, error)
	SaveSettings(ctx context.Context, settings *TargetSettings) error
	Overrides(ctx context.Context, userID uuid.UUID) (map[string]float64, error)
	SaveOverrides(ctx context.Context, userID uuid.UUID, overrides map[string]float64) error
}

// FoodDataClient is the external food-database lookup.
type FoodDataClient interface {
	SearchFoods(ctx context.Context, query string) ([]ExternalFood, error)
	GetFood(ctx context.Context, externalID string) (*ExternalFood, error)
}

// EstimatorClient produces structured macro estimates for items that could
// not be resolved deterministically.
type EstimatorClient interface {
	Estimate(ctx context.Context, items []EstimateItem, notes string) (*EstimateResult, error)
}
