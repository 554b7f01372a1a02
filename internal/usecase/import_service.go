package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nutrilog/backend/internal/domain"
	"github.com/nutrilog/backend/internal/taxonomy"
)

// ImportService copies foods from the external food database into the global
// store, normalizing their nutrient taxonomy on the way in.
type ImportService struct {
	foods    domain.FoodRepository
	foodData domain.FoodDataClient
	log      *zap.SugaredLogger
}

// NewImportService creates the food import service.
func NewImportService(foods domain.FoodRepository, foodData domain.FoodDataClient, log *zap.SugaredLogger) *ImportService {
	return &ImportService{foods: foods, foodData: foodData, log: log.With("service", "import")}
}

// SearchExternal queries the external food database by free text so clients
// can discover an external ID to import.
func (s *ImportService) SearchExternal(ctx context.Context, query string) ([]domain.ExternalFood, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: missing search query", domain.ErrInvalidRequest)
	}
	results, err := s.foodData.SearchFoods(ctx, query)
	if err != nil {
		return nil, err
	}
	s.log.Debugw("external food search", "query", query, "hits", len(results))
	return results, nil
}

// ImportResult reports where an imported food landed.
type ImportResult struct {
	FoodID uuid.UUID `json:"foodId"`
	Name   string    `json:"name"`
	Reused bool      `json:"reused"`
}

// ImportExternalFood fetches the external record, normalizes its nutrient
// observations to canonical rows, and upserts it into the global store. An
// already-imported external ID returns the existing food without refetching.
func (s *ImportService) ImportExternalFood(ctx context.Context, externalID string) (*ImportResult, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: missing external id", domain.ErrInvalidRequest)
	}

	existing, err := s.foods.FindByExternalID(ctx, externalID)
	if err != nil && !errors.Is(err, domain.ErrFoodNotFound) {
		return nil, err
	}
	if existing != nil {
		return &ImportResult{FoodID: existing.ID, Name: existing.Name, Reused: true}, nil
	}

	external, err := s.foodData.GetFood(ctx, externalID)
	if err != nil {
		return nil, err
	}

	rows := taxonomy.NormalizeAll(external.Observations)
	if len(rows) == 0 {
		s.log.Warnw("external food has no mappable nutrients", "externalId", externalID, "name", external.Name)
	}

	record := &domain.FoodRecord{
		ExternalID:   external.ExternalID,
		Name:         external.Name,
		Brand:        external.Brand,
		Locale:       "en",
		Provenance:   domain.ProvenanceGlobal,
		NutrientRows: rows,
	}
	foodID, err := s.foods.UpsertGlobalFood(ctx, record)
	if err != nil {
		return nil, err
	}

	s.log.Infow("imported external food", "externalId", externalID, "foodId", foodID, "nutrients", len(rows))
	return &ImportResult{FoodID: foodID, Name: external.Name, Reused: false}, nil
}
