package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nutrilog/backend/internal/domain"
)

// FoodRepo implements domain.FoodRepository.
type FoodRepo struct {
	db            *gorm.DB
	maxCandidates int
}

// NewFoodRepo creates the food repository. maxCandidates bounds search
// results per fan-out query.
func NewFoodRepo(db *gorm.DB, maxCandidates int) *FoodRepo {
	if maxCandidates <= 0 {
		maxCandidates = 20
	}
	return &FoodRepo{db: db, maxCandidates: maxCandidates}
}

func scopeOf(ref domain.FoodRef) string {
	if ref.UserOwned {
		return "user"
	}
	return "global"
}

// SearchUserFoods matches pattern against name and brand of the user's foods.
func (r *FoodRepo) SearchUserFoods(ctx context.Context, userID uuid.UUID, pattern string) ([]domain.FoodCandidate, error) {
	var rows []UserFood
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND (name ILIKE ? OR brand ILIKE ?)", userID, pattern, pattern).
		Limit(r.maxCandidates).
		Find(&rows).Error
	if err != nil {
		return nil, wrapStorageErr(err)
	}

	out := make([]domain.FoodCandidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.FoodCandidate{
			Ref:   domain.FoodRef{ID: row.ID, UserOwned: true},
			Name:  row.Name,
			Brand: row.Brand,
		})
	}
	return out, nil
}

// SearchGlobalFoods matches pattern against name and brand of shared foods.
func (r *FoodRepo) SearchGlobalFoods(ctx context.Context, pattern string) ([]domain.FoodCandidate, error) {
	var rows []Food
	err := r.db.WithContext(ctx).
		Where("name ILIKE ? OR brand ILIKE ?", pattern, pattern).
		Limit(r.maxCandidates).
		Find(&rows).Error
	if err != nil {
		return nil, wrapStorageErr(err)
	}

	out := make([]domain.FoodCandidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.FoodCandidate{
			Ref:   domain.FoodRef{ID: row.ID, UserOwned: false},
			Name:  row.Name,
			Brand: row.Brand,
		})
	}
	return out, nil
}

// KeyNutrientCount returns how many key nutrient codes the food stores.
func (r *FoodRepo) KeyNutrientCount(ctx context.Context, ref domain.FoodRef) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&FoodNutrient{}).
		Where("food_id = ? AND food_scope = ? AND code IN ?", ref.ID, scopeOf(ref), domain.KeyNutrientCodes()).
		Count(&count).Error
	if err != nil {
		return 0, wrapStorageErr(err)
	}
	return int(count), nil
}

// NutrientRows returns all stored per-100g amounts for the food.
func (r *FoodRepo) NutrientRows(ctx context.Context, ref domain.FoodRef) (map[string]float64, error) {
	var rows []FoodNutrient
	err := r.db.WithContext(ctx).
		Where("food_id = ? AND food_scope = ?", ref.ID, scopeOf(ref)).
		Find(&rows).Error
	if err != nil {
		return nil, wrapStorageErr(err)
	}

	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.Code] = row.AmountPer100G
	}
	return out, nil
}

// GramsPerUnit looks up the food-specific gram weight of one unit.
func (r *FoodRepo) GramsPerUnit(ctx context.Context, ref domain.FoodRef, unit string) (float64, bool, error) {
	var row UnitWeight
	err := r.db.WithContext(ctx).
		Where("food_id = ? AND food_scope = ? AND unit = ?", ref.ID, scopeOf(ref), unit).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, wrapStorageErr(err)
	}
	return row.Grams, true, nil
}

// FindByExternalID returns the global food imported from externalID, if any.
func (r *FoodRepo) FindByExternalID(ctx context.Context, externalID string) (*domain.FoodRecord, error) {
	var row Food
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStorageErr(err)
	}

	rows, err := r.NutrientRows(ctx, domain.FoodRef{ID: row.ID})
	if err != nil {
		return nil, err
	}
	return &domain.FoodRecord{
		ID:           row.ID,
		ExternalID:   row.ExternalID,
		Name:         row.Name,
		Brand:        row.Brand,
		Locale:       row.Locale,
		Provenance:   domain.ProvenanceGlobal,
		NutrientRows: rows,
	}, nil
}

// UpsertGlobalFood writes the record keyed by external id and replaces its
// nutrient rows.
func (r *FoodRepo) UpsertGlobalFood(ctx context.Context, rec *domain.FoodRecord) (uuid.UUID, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := Food{
			ID:         rec.ID,
			ExternalID: rec.ExternalID,
			Name:       rec.Name,
			Brand:      rec.Brand,
			Locale:     rec.Locale,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "brand", "locale", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return err
		}

		// OnConflict keeps the existing primary key; reread it.
		var stored Food
		if err := tx.Where("external_id = ?", rec.ExternalID).First(&stored).Error; err != nil {
			return err
		}
		rec.ID = stored.ID

		if err := tx.Where("food_id = ? AND food_scope = ?", rec.ID, "global").
			Delete(&FoodNutrient{}).Error; err != nil {
			return err
		}

		nutrients := make([]FoodNutrient, 0, len(rec.NutrientRows))
		for code, amount := range rec.NutrientRows {
			if !domain.IsCanonicalCode(code) {
				continue
			}
			nutrients = append(nutrients, FoodNutrient{
				FoodID:        rec.ID,
				FoodScope:     "global",
				Code:          code,
				AmountPer100G: amount,
			})
		}
		if len(nutrients) == 0 {
			return nil
		}
		return tx.Create(&nutrients).Error
	})
	if err != nil {
		return uuid.Nil, wrapStorageErr(err)
	}
	return rec.ID, nil
}
