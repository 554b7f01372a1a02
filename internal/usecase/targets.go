package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nutrilog/backend/internal/domain"
)

// Bodyweight scaling bounds. Baselines assume a 70 kg reference body; scaling
// is clamped so extreme weights never produce implausible targets.
const (
	referenceWeightKg = 70.0
	minWeightScale    = 0.6
	maxWeightScale    = 1.8
)

// rdiBaseline holds per-sex reference daily intakes. Codes absent from the
// table (e.g. total fat) have no numeric RDI and yield nil targets.
type rdiBaseline struct {
	male   float64
	female float64
}

func (b rdiBaseline) forSex(sex string) float64 {
	switch sex {
	case domain.SexMale:
		return b.male
	case domain.SexFemale:
		return b.female
	default:
		return (b.male + b.female) / 2
	}
}

var rdiBaselines = map[string]rdiBaseline{
	domain.CodeFiber:      {38, 25},
	domain.CodeOmega3:     {1.6, 1.1},
	domain.CodeSodium:     {1500, 1500},
	domain.CodePotassium:  {3400, 2600},
	domain.CodeCalcium:    {1000, 1000},
	domain.CodeIron:       {8, 18},
	domain.CodeMagnesium:  {420, 320},
	domain.CodeZinc:       {11, 8},
	domain.CodePhosphorus: {700, 700},
	domain.CodeCopper:     {0.9, 0.9},
	domain.CodeManganese:  {2.3, 1.8},
	domain.CodeSelenium:   {55, 55},
	domain.CodeIodine:     {150, 150},
	domain.CodeVitaminA:   {900, 700},
	domain.CodeThiamin:    {1.2, 1.1},
	domain.CodeRiboflavin: {1.3, 1.1},
	domain.CodeNiacin:     {16, 14},
	domain.CodeVitaminB5:  {5, 5},
	domain.CodeVitaminB6:  {1.3, 1.3},
	domain.CodeFolate:     {400, 400},
	domain.CodeVitaminB12: {2.4, 2.4},
	domain.CodeVitaminC:   {90, 75},
	domain.CodeVitaminD:   {15, 15},
	domain.CodeVitaminE:   {15, 15},
	domain.CodeVitaminK:   {120, 90},
	domain.CodeCholine:    {550, 425},
}

// perKgCoefficients are direct grams/mg-per-kilogram targets. Nutrients
// without a coefficient scale their RDI baseline by body weight instead.
var perKgCoefficients = map[string]float64{
	domain.CodeProtein: 0.8,
	domain.CodeWater:   35,
}

// TargetAmount computes one personalized micro-target. Returns nil when the
// nutrient has no defined baseline under the selected mode. All values round
// to two decimal places.
func TargetAmount(code, mode, sex string, weightKg float64, override *float64) *float64 {
	switch mode {
	case domain.TargetModeCustom:
		if override != nil && *override >= 0 {
			return round2p(*override)
		}
		return rdiAmount(code, sex)
	case domain.TargetModeBodyweight:
		if coeff, ok := perKgCoefficients[code]; ok && weightKg > 0 {
			return round2p(coeff * weightKg)
		}
		baseline, ok := rdiBaselines[code]
		if !ok {
			return nil
		}
		base := baseline.forSex(sex)
		if weightKg <= 0 {
			return round2p(base)
		}
		scale := weightKg / referenceWeightKg
		if scale < minWeightScale {
			scale = minWeightScale
		}
		if scale > maxWeightScale {
			scale = maxWeightScale
		}
		return round2p(base * scale)
	default:
		return rdiAmount(code, sex)
	}
}

func rdiAmount(code, sex string) *float64 {
	baseline, ok := rdiBaselines[code]
	if !ok {
		return nil
	}
	return round2p(baseline.forSex(sex))
}

func round2p(v float64) *float64 {
	rounded := math.Round(v*100) / 100
	return &rounded
}

// TargetService exposes the micro-target operations.
type TargetService struct {
	targets domain.TargetRepository
	log     *zap.SugaredLogger
}

// NewTargetService creates the target service.
func NewTargetService(targets domain.TargetRepository, log *zap.SugaredLogger) *TargetService {
	return &TargetService{targets: targets, log: log.With("service", "targets")}
}

// MicroTargetsResult is the full per-user target set.
type MicroTargetsResult struct {
	Mode        string               `json:"mode"`
	PerNutrient []domain.MicroTarget `json:"perNutrient"`
}

// MicroTargets computes the user's personalized target for every nutrient
// with a defined basis or override, in display order.
func (s *TargetService) MicroTargets(ctx context.Context, userID uuid.UUID) (*MicroTargetsResult, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrInvalidRequest
	}

	settings, err := s.targets.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	overrides, err := s.targets.Overrides(ctx, userID)
	if err != nil {
		return nil, err
	}

	codes := make(map[string]bool, len(rdiBaselines)+len(overrides))
	for code := range rdiBaselines {
		codes[code] = true
	}
	for code := range perKgCoefficients {
		codes[code] = true
	}
	for code := range overrides {
		codes[code] = true
	}

	result := &MicroTargetsResult{Mode: settings.Mode}
	order := make(map[string]int, len(codes))
	for code := range codes {
		meta, ok := domain.MetaFor(code)
		if !ok {
			continue
		}
		var override *float64
		if amount, ok := overrides[code]; ok {
			override = &amount
		}
		amount := TargetAmount(code, settings.Mode, settings.Sex, settings.WeightKg, override)
		order[code] = meta.GroupOrder*100 + meta.Order
		result.PerNutrient = append(result.PerNutrient, domain.MicroTarget{
			Code:   code,
			Label:  meta.Label,
			Unit:   meta.Unit,
			Amount: amount,
		})
	}

	sort.Slice(result.PerNutrient, func(i, j int) bool {
		return order[result.PerNutrient[i].Code] < order[result.PerNutrient[j].Code]
	})
	return result, nil
}

// SetMicroTargetMode updates the user's basis mode and override amounts.
func (s *TargetService) SetMicroTargetMode(ctx context.Context, userID uuid.UUID, mode string, overrides map[string]float64) error {
	if userID == uuid.Nil {
		return domain.ErrInvalidRequest
	}
	switch mode {
	case domain.TargetModeRDI, domain.TargetModeBodyweight, domain.TargetModeCustom:
	default:
		return fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidRequest, mode)
	}
	for code, amount := range overrides {
		if !domain.IsCanonicalCode(code) {
			return fmt.Errorf("%w: unknown nutrient code %q", domain.ErrInvalidRequest, code)
		}
		if amount < 0 {
			return fmt.Errorf("%w: negative override for %q", domain.ErrInvalidRequest, code)
		}
	}

	settings, err := s.targets.GetSettings(ctx, userID)
	if err != nil {
		return err
	}
	settings.Mode = mode
	if err := s.targets.SaveSettings(ctx, settings); err != nil {
		return err
	}
	if overrides != nil {
		if err := s.targets.SaveOverrides(ctx, userID, overrides); err != nil {
			return err
		}
	}
	s.log.Infow("updated micro-target mode", "user", userID, "mode", mode, "overrides", len(overrides))
	return nil
}
