package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nutrilog/backend/internal/domain"
)

// TargetRepo implements domain.TargetRepository.
type TargetRepo struct {
	db *gorm.DB
}

// NewTargetRepo creates the micro-target repository.
func NewTargetRepo(db *gorm.DB) *TargetRepo {
	return &TargetRepo{db: db}
}

// GetSettings returns the user's target settings, defaulting to RDI mode when
// none are stored.
func (r *TargetRepo) GetSettings(ctx context.Context, userID uuid.UUID) (*domain.TargetSettings, error) {
	var row TargetSettingsRow
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.TargetSettings{UserID: userID, Mode: domain.TargetModeRDI}, nil
		}
		return nil, wrapStorageErr(err)
	}
	return &domain.TargetSettings{
		UserID:   row.UserID,
		Mode:     row.Mode,
		Sex:      row.Sex,
		WeightKg: row.WeightKg,
	}, nil
}

// SaveSettings upserts the user's target settings.
func (r *TargetRepo) SaveSettings(ctx context.Context, settings *domain.TargetSettings) error {
	row := TargetSettingsRow{
		UserID:   settings.UserID,
		Mode:     settings.Mode,
		Sex:      settings.Sex,
		WeightKg: settings.WeightKg,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"mode", "sex", "weight_kg", "updated_at"}),
	}).Create(&row).Error
	return wrapStorageErr(err)
}

// Overrides returns the user's stored custom target amounts by code.
func (r *TargetRepo) Overrides(ctx context.Context, userID uuid.UUID) (map[string]float64, error) {
	var rows []TargetOverrideRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, wrapStorageErr(err)
	}
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.Code] = row.Amount
	}
	return out, nil
}

// SaveOverrides replaces the user's override set.
func (r *TargetRepo) SaveOverrides(ctx context.Context, userID uuid.UUID, overrides map[string]float64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&TargetOverrideRow{}).Error; err != nil {
			return err
		}
		rows := make([]TargetOverrideRow, 0, len(overrides))
		for code, amount := range overrides {
			rows = append(rows, TargetOverrideRow{UserID: userID, Code: code, Amount: amount})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	return wrapStorageErr(err)
}
