package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nutrilog/backend/internal/domain"
)

// LogRepo implements domain.LogRepository.
type LogRepo struct {
	db *gorm.DB
}

// NewLogRepo creates the day-log repository.
func NewLogRepo(db *gorm.DB) *LogRepo {
	return &LogRepo{db: db}
}

// ReplaceDay upserts the day log and replaces the day's items and their
// nutrient snapshots inside one transaction. A failure rolls everything back
// and callers may simply resubmit.
func (r *LogRepo) ReplaceDay(ctx context.Context, log *domain.DayLog, items []domain.StoredLogItem) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := DayLogRow{
			UserID:   log.UserID,
			Date:     log.Date,
			Calories: log.Totals.Calories,
			ProteinG: log.Totals.ProteinG,
			CarbsG:   log.Totals.CarbsG,
			FatG:     log.Totals.FatG,
			AlcoholG: log.Totals.AlcoholG,
			Notes:    log.Notes,
			WaterMl:  log.WaterMl,
			SaltG:    log.SaltG,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"calories", "protein_g", "carbs_g", "fat_g", "alcohol_g",
				"notes", "water_ml", "salt_g", "updated_at",
			}),
		}).Create(&row).Error; err != nil {
			return err
		}

		// Delete old items and their nutrient snapshots.
		var oldIDs []uuid.UUID
		if err := tx.Model(&LogItemRow{}).
			Where("user_id = ? AND date = ?", log.UserID, log.Date).
			Pluck("id", &oldIDs).Error; err != nil {
			return err
		}
		if len(oldIDs) > 0 {
			if err := tx.Where("item_id IN ?", oldIDs).Delete(&LogItemNutrient{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", oldIDs).Delete(&LogItemRow{}).Error; err != nil {
				return err
			}
		}

		rows := buildItemRows(log, items)
		for i := range rows {
			if err := tx.Create(&rows[i]).Error; err != nil {
				return err
			}

			nutrients := make([]LogItemNutrient, 0, len(items[i].NutrientRows))
			for code, amount := range items[i].NutrientRows {
				nutrients = append(nutrients, LogItemNutrient{
					ItemID: rows[i].ID,
					Code:   code,
					Amount: amount,
				})
			}
			if len(nutrients) > 0 {
				if err := tx.Create(&nutrients).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	return wrapStorageErr(err)
}

// buildItemRows converts stored items to table rows. Rows are numbered by
// submission order; all items of one replacement share an insert timestamp,
// so the position column is what keeps display order stable.
func buildItemRows(log *domain.DayLog, items []domain.StoredLogItem) []LogItemRow {
	rows := make([]LogItemRow, 0, len(items))
	for i, item := range items {
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		rows = append(rows, LogItemRow{
			ID:               id,
			UserID:           log.UserID,
			Date:             log.Date,
			Position:         i,
			FoodName:         item.FoodName,
			Amount:           item.Amount,
			Unit:             item.Unit,
			PreparationState: item.PreparationState,
			Grams:            item.Grams,
			Source:           item.Source,
			Calories:         item.Macros.Calories,
			ProteinG:         item.Macros.ProteinG,
			CarbsG:           item.Macros.CarbsG,
			FatG:             item.Macros.FatG,
			AlcoholG:         item.Macros.AlcoholG,
		})
	}
	return rows
}

// GetDayLog returns the day aggregate, or nil when the day has no log.
func (r *LogRepo) GetDayLog(ctx context.Context, userID uuid.UUID, date string) (*domain.DayLog, error) {
	var row DayLogRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStorageErr(err)
	}

	return &domain.DayLog{
		UserID: row.UserID,
		Date:   row.Date,
		Totals: domain.Macros{
			Calories: row.Calories,
			ProteinG: row.ProteinG,
			CarbsG:   row.CarbsG,
			FatG:     row.FatG,
			AlcoholG: row.AlcoholG,
		},
		Notes:   row.Notes,
		WaterMl: row.WaterMl,
		SaltG:   row.SaltG,
	}, nil
}

// DayItems returns the day's stored items with their nutrient snapshots.
func (r *LogRepo) DayItems(ctx context.Context, userID uuid.UUID, date string) ([]domain.StoredLogItem, error) {
	var rows []LogItemRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("position ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var nutrients []LogItemNutrient
	if err := r.db.WithContext(ctx).Where("item_id IN ?", ids).Find(&nutrients).Error; err != nil {
		return nil, wrapStorageErr(err)
	}
	byItem := make(map[uuid.UUID]map[string]float64)
	for _, n := range nutrients {
		if byItem[n.ItemID] == nil {
			byItem[n.ItemID] = make(map[string]float64)
		}
		byItem[n.ItemID][n.Code] = n.Amount
	}

	items := make([]domain.StoredLogItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.StoredLogItem{
			ID:               row.ID,
			FoodName:         row.FoodName,
			Amount:           row.Amount,
			Unit:             row.Unit,
			PreparationState: row.PreparationState,
			Grams:            row.Grams,
			Source:           row.Source,
			Macros: domain.Macros{
				Calories: row.Calories,
				ProteinG: row.ProteinG,
				CarbsG:   row.CarbsG,
				FatG:     row.FatG,
				AlcoholG: row.AlcoholG,
			},
			NutrientRows: byItem[row.ID],
		})
	}
	return items, nil
}
