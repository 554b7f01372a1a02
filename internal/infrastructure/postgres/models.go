package postgres

import (
	"time"

	"github.com/google/uuid"
)

// Food is a globally shared verified food.
type Food struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ExternalID string    `gorm:"type:varchar(64);uniqueIndex"`
	Name       string    `gorm:"type:varchar(255);not null;index"`
	Brand      string    `gorm:"type:varchar(255);index"`
	Locale     string    `gorm:"type:varchar(16)"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UserFood is a user-private verified food.
type UserFood struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(255);not null;index"`
	Brand     string    `gorm:"type:varchar(255);index"`
	Locale    string    `gorm:"type:varchar(16)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FoodNutrient stores one per-100g amount. Scope discriminates the global and
// user-private food tables; at most one row per (food, scope, code).
type FoodNutrient struct {
	ID            uint      `gorm:"primaryKey"`
	FoodID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_food_scope_code"`
	FoodScope     string    `gorm:"type:varchar(8);not null;uniqueIndex:idx_food_scope_code"`
	Code          string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_food_scope_code"`
	AmountPer100G float64   `gorm:"not null"`
}

// UnitWeight is the optional per-food grams-per-unit lookup.
type UnitWeight struct {
	ID        uint      `gorm:"primaryKey"`
	FoodID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_unit_weight"`
	FoodScope string    `gorm:"type:varchar(8);not null;uniqueIndex:idx_unit_weight"`
	Unit      string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_unit_weight"`
	Grams     float64   `gorm:"not null"`
}

// DayLogRow is the per-(user, date) aggregate. Uniqueness on (user, date)
// guarantees one row per day.
type DayLogRow struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_day_log_user_date"`
	Date      string    `gorm:"type:date;not null;uniqueIndex:idx_day_log_user_date"`
	Calories  int       `gorm:"not null;default:0"`
	ProteinG  int       `gorm:"not null;default:0"`
	CarbsG    int       `gorm:"not null;default:0"`
	FatG      int       `gorm:"not null;default:0"`
	AlcoholG  float64   `gorm:"not null;default:0"`
	Notes     string    `gorm:"type:text"`
	WaterMl   int       `gorm:"not null;default:0"`
	SaltG     float64   `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DayLogRow) TableName() string { return "day_logs" }

// LogItemRow is one stored line of a day's log. Items are replaced wholesale
// on every re-save of the day.
type LogItemRow struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index:idx_log_item_user_date"`
	Date             string    `gorm:"type:date;not null;index:idx_log_item_user_date"`
	Position         int       `gorm:"not null;default:0"`
	FoodName         string    `gorm:"type:varchar(255);not null"`
	Amount           float64   `gorm:"not null"`
	Unit             string    `gorm:"type:varchar(32);not null"`
	PreparationState string    `gorm:"type:varchar(32)"`
	Grams            float64   `gorm:"not null"`
	Source           string    `gorm:"type:varchar(8);not null"`
	Calories         int       `gorm:"not null;default:0"`
	ProteinG         int       `gorm:"not null;default:0"`
	CarbsG           int       `gorm:"not null;default:0"`
	FatG             int       `gorm:"not null;default:0"`
	AlcoholG         float64   `gorm:"not null;default:0"`
	CreatedAt        time.Time
}

func (LogItemRow) TableName() string { return "log_items" }

// LogItemNutrient is the per-item nutrient snapshot taken at save time.
// Re-importing a food does not retroactively change these rows.
type LogItemNutrient struct {
	ID     uint      `gorm:"primaryKey"`
	ItemID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_item_code"`
	Code   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_item_code"`
	Amount float64   `gorm:"not null"`
}

// TargetSettingsRow holds a user's micro-target mode and profile inputs.
type TargetSettingsRow struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Mode      string    `gorm:"type:varchar(16);not null;default:'rdi'"`
	Sex       string    `gorm:"type:varchar(16)"`
	WeightKg  float64   `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (TargetSettingsRow) TableName() string { return "micro_target_settings" }

// TargetOverrideRow is one stored custom target amount.
type TargetOverrideRow struct {
	ID     uint      `gorm:"primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_target_override"`
	Code   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_target_override"`
	Amount float64   `gorm:"not null"`
}

func (TargetOverrideRow) TableName() string { return "micro_target_overrides" }
