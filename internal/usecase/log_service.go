package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nutrilog/backend/internal/domain"
	"github.com/nutrilog/backend/internal/units"
)

// LogService resolves submitted food entries into nutrient data and persists
// day logs.
type LogService struct {
	foods     domain.FoodRepository
	logs      domain.LogRepository
	matcher   *Matcher
	estimator domain.EstimatorClient
	log       *zap.SugaredLogger
	debug     bool

	// Set after the first ErrLookupUnavailable from the grams-per-unit
	// lookup; disables the lookup for the process lifetime.
	unitLookupDisabled atomic.Bool
}

// NewLogService creates the day-log service.
func NewLogService(
	foods domain.FoodRepository,
	logs domain.LogRepository,
	matcher *Matcher,
	estimator domain.EstimatorClient,
	log *zap.SugaredLogger,
	debug bool,
) *LogService {
	return &LogService{
		foods:     foods,
		logs:      logs,
		matcher:   matcher,
		estimator: estimator,
		log:       log.With("service", "logs"),
		debug:     debug,
	}
}

// ResolveDebug carries per-submission resolution counters, populated only
// when debug logging is enabled.
type ResolveDebug struct {
	Deterministic int `json:"deterministic"`
	Estimated     int `json:"estimated"`
	Skipped       int `json:"skipped"`
	Rematches     int `json:"rematches"`
}

// DayLogResult is the outcome of one day-log submission.
type DayLogResult struct {
	Date     string                `json:"date"`
	Totals   domain.Macros         `json:"totals"`
	Items    []domain.ResolvedItem `json:"items"`
	Warnings []string              `json:"warnings,omitempty"`
	Debug    *ResolveDebug         `json:"debug,omitempty"`
}

// pendingItem tracks an item awaiting the batched estimate. index points at
// its slot in the resolved slice.
type pendingItem struct {
	index int
}

// ResolveDayLog resolves every submitted item, aggregates totals, and
// replaces the user's log for the date. Items resolve deterministically from
// verified foods when a match with a convertible quantity exists, otherwise
// through one batched estimation call.
func (s *LogService) ResolveDayLog(
	ctx context.Context,
	userID uuid.UUID,
	date string,
	items []domain.LogItem,
	notes string,
	waterMl int,
	saltG float64,
) (*DayLogResult, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user identity", domain.ErrInvalidRequest)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidRequest)
	}

	result := &DayLogResult{Date: date}
	debug := &ResolveDebug{}
	matchCache := NewMatchCache()
	nutrientCache := NewNutrientCache()

	var pending []pendingItem
	var estimateItems []domain.EstimateItem

	for _, item := range items {
		if item.FoodName == "" || item.Amount <= 0 {
			result.Warnings = append(result.Warnings, domain.WarnItemSkipped)
			debug.Skipped++
			continue
		}

		resolved, warnings, err := s.resolveDeterministic(ctx, userID, item, matchCache, nutrientCache, debug)
		if err != nil {
			return nil, err
		}
		result.Warnings = append(result.Warnings, warnings...)

		if resolved != nil {
			result.Items = append(result.Items, *resolved)
			debug.Deterministic++
			continue
		}

		// No usable food reference or unconvertible unit: queue for the
		// batched estimate and reserve the item's slot now so output order
		// matches input order.
		result.Items = append(result.Items, domain.ResolvedItem{
			LogItem: item,
			Source:  domain.SourceAI,
		})
		pending = append(pending, pendingItem{index: len(result.Items) - 1})
		estimateItems = append(estimateItems, domain.EstimateItem{
			FoodName:         item.FoodName,
			Amount:           item.Amount,
			Unit:             item.Unit,
			PreparationState: item.PreparationState,
		})
	}

	if len(pending) > 0 {
		estimate, err := s.estimator.Estimate(ctx, estimateItems, notes)
		if err != nil {
			return nil, err
		}
		for i, p := range pending {
			if i < len(estimate.PerItem) {
				result.Items[p.index].Macros = estimate.PerItem[i].Macros
			}
			debug.Estimated++
		}
		result.Warnings = append(result.Warnings, domain.WarnEstimated)
		result.Warnings = append(result.Warnings, estimate.Warnings...)
	}

	result.Totals = SumItemMacros(result.Items)

	dayLog := &domain.DayLog{
		UserID:  userID,
		Date:    date,
		Totals:  result.Totals,
		Notes:   notes,
		WaterMl: waterMl,
		SaltG:   saltG,
	}
	stored := make([]domain.StoredLogItem, 0, len(result.Items))
	for _, item := range result.Items {
		stored = append(stored, domain.StoredLogItem{
			ID:               uuid.New(),
			FoodName:         item.FoodName,
			Amount:           item.Amount,
			Unit:             item.Unit,
			PreparationState: item.PreparationState,
			Grams:            item.Grams,
			Source:           item.Source,
			Macros:           item.Macros,
			NutrientRows:     item.NutrientRows,
		})
	}
	if err := s.logs.ReplaceDay(ctx, dayLog, stored); err != nil {
		return nil, err
	}

	if s.debug {
		result.Debug = debug
		s.log.Debugw("resolved day log",
			"user", userID, "date", date,
			"deterministic", debug.Deterministic, "estimated", debug.Estimated,
			"skipped", debug.Skipped, "rematches", debug.Rematches)
	}
	return result, nil
}

// resolveDeterministic attempts the database path for one item. A nil item
// with nil error means the item needs estimation.
func (s *LogService) resolveDeterministic(
	ctx context.Context,
	userID uuid.UUID,
	item domain.LogItem,
	matchCache *MatchCache,
	nutrientCache *NutrientCache,
	debug *ResolveDebug,
) (*domain.ResolvedItem, []string, error) {
	var warnings []string

	ref := item.FoodRef
	autoMatched := false
	if ref == nil {
		match, err := s.matcher.Match(ctx, userID, item.FoodName, matchCache)
		if err != nil {
			return nil, nil, err
		}
		if match == nil {
			return nil, nil, nil
		}
		ref = &match.Ref
		autoMatched = match.AutoMatched
	}

	grams, convertible := units.ToGrams(item.Amount, item.Unit)
	if !convertible {
		perUnit, found, err := s.gramsPerUnit(ctx, *ref, item.Unit)
		if err != nil {
			return nil, nil, err
		}
		if !found {
			return nil, nil, nil
		}
		grams = perUnit * item.Amount
	}

	rows, err := nutrientCache.Rows(ctx, s.foods, *ref)
	if err != nil {
		return nil, nil, err
	}

	// A macros-only row set usually means an incomplete import. Rematch by
	// name once, excluding the food we already have; keep the substitute
	// only when it actually adds coverage.
	if MicronutrientCount(rows) == 0 {
		debug.Rematches++
		match, err := s.matcher.MatchExcluding(ctx, userID, item.FoodName, *ref)
		if err != nil {
			return nil, nil, err
		}
		swapped := false
		if match != nil {
			richer, err := nutrientCache.Rows(ctx, s.foods, match.Ref)
			if err != nil {
				return nil, nil, err
			}
			if MicronutrientCount(richer) > 0 {
				ref = &match.Ref
				rows = richer
				autoMatched = autoMatched || match.AutoMatched
				swapped = true
			}
		}
		if !swapped {
			warnings = append(warnings, domain.WarnLowCoverage)
		}
	}

	if autoMatched {
		warnings = append(warnings, domain.WarnAutoMatched)
	}

	scaled := ScaleRows(rows, grams)
	resolved := &domain.ResolvedItem{
		LogItem:      item,
		Grams:        grams,
		Source:       domain.SourceDB,
		Macros:       MacroTotals(scaled),
		NutrientRows: scaled,
	}
	return resolved, warnings, nil
}

// gramsPerUnit wraps the per-food unit lookup behind the process-lifetime
// capability flag. The first missing-table error disables further attempts.
func (s *LogService) gramsPerUnit(ctx context.Context, ref domain.FoodRef, unit string) (float64, bool, error) {
	if s.unitLookupDisabled.Load() {
		return 0, false, nil
	}
	perUnit, found, err := s.foods.GramsPerUnit(ctx, ref, unit)
	if err != nil {
		if errors.Is(err, domain.ErrLookupUnavailable) {
			s.unitLookupDisabled.Store(true)
			s.log.Warnw("unit weight table missing, disabling per-unit lookups")
			return 0, false, nil
		}
		return 0, false, err
	}
	return perUnit, found, nil
}

// DaySummary is the read-side view of one day's log.
type DaySummary struct {
	Date      string                 `json:"date"`
	Totals    domain.Macros          `json:"totals"`
	Breakdown []NutrientBreakdownRow `json:"breakdown"`
	Items     []domain.StoredLogItem `json:"items"`
	Notes     string                 `json:"notes,omitempty"`
	WaterMl   int                    `json:"waterMl"`
	SaltG     float64                `json:"saltG"`
}

// DaySummary returns totals, the full nutrient breakdown, and the stored
// items for one date. A date with no log yields an empty summary.
func (s *LogService) DaySummary(ctx context.Context, userID uuid.UUID, date string) (*DaySummary, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user identity", domain.ErrInvalidRequest)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidRequest)
	}

	dayLog, err := s.logs.GetDayLog(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if dayLog == nil {
		return &DaySummary{Date: date, Items: []domain.StoredLogItem{}, Breakdown: []NutrientBreakdownRow{}}, nil
	}

	items, err := s.logs.DayItems(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	itemRows := make([]map[string]float64, 0, len(items))
	for _, item := range items {
		if len(item.NutrientRows) > 0 {
			itemRows = append(itemRows, item.NutrientRows)
		}
	}

	return &DaySummary{
		Date:      date,
		Totals:    dayLog.Totals,
		Breakdown: DayBreakdown(itemRows),
		Items:     items,
		Notes:     dayLog.Notes,
		WaterMl:   dayLog.WaterMl,
		SaltG:     dayLog.SaltG,
	}, nil
}
