package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nutrilog/backend/internal/domain"
)

type fakeLogRepo struct {
	dayLog *domain.DayLog
	items  []domain.StoredLogItem
}

func (r *fakeLogRepo) ReplaceDay(_ context.Context, log *domain.DayLog, items []domain.StoredLogItem) error {
	r.dayLog = log
	r.items = items
	return nil
}

func (r *fakeLogRepo) GetDayLog(_ context.Context, userID uuid.UUID, date string) (*domain.DayLog, error) {
	if r.dayLog == nil || r.dayLog.Date != date {
		return nil, nil
	}
	return r.dayLog, nil
}

func (r *fakeLogRepo) DayItems(_ context.Context, _ uuid.UUID, _ string) ([]domain.StoredLogItem, error) {
	return r.items, nil
}

type fakeEstimator struct {
	result *domain.EstimateResult
	err    error
	calls  int
	items  []domain.EstimateItem
}

func (e *fakeEstimator) Estimate(_ context.Context, items []domain.EstimateItem, _ string) (*domain.EstimateResult, error) {
	e.calls++
	e.items = items
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

// chickenRepo builds a repo with one well-covered global food: chicken
// breast at 31g protein, 3.6g fat per 100g plus a couple of minerals.
func chickenRepo() (*fakeFoodRepo, domain.FoodCandidate) {
	chicken := globalCandidate("Chicken Breast")
	repo := &fakeFoodRepo{
		globalFoods: []domain.FoodCandidate{chicken},
		coverage:    map[uuid.UUID]int{chicken.Ref.ID: 12},
		rows: map[uuid.UUID]map[string]float64{
			chicken.Ref.ID: {
				domain.CodeProtein:   31,
				domain.CodeFat:       3.6,
				domain.CodePotassium: 256,
				domain.CodeIron:      1,
			},
		},
	}
	return repo, chicken
}

func newTestLogService(repo *fakeFoodRepo, logs *fakeLogRepo, est *fakeEstimator) *LogService {
	log := zap.NewNop().Sugar()
	return NewLogService(repo, logs, NewMatcher(repo, log, false), est, log, true)
}

func TestResolveDayLog_Deterministic(t *testing.T) {
	repo, _ := chickenRepo()
	logs := &fakeLogRepo{}
	est := &fakeEstimator{}
	svc := newTestLogService(repo, logs, est)

	result, err := svc.ResolveDayLog(context.Background(), uuid.New(), "2026-09-01",
		[]domain.LogItem{{FoodName: "chicken breast", Amount: 200, Unit: "g"}}, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	assert.Equal(t, domain.SourceDB, item.Source)
	assert.Equal(t, 200.0, item.Grams)
	// Per 200g: 62g protein, 7.2g fat, derived 62*4 + 7.2*9 = 312.8 kcal.
	assert.Equal(t, 62, item.Macros.ProteinG)
	assert.Equal(t, 7, item.Macros.FatG)
	assert.Equal(t, 313, item.Macros.Calories)

	assert.Equal(t, result.Totals, item.Macros)
	assert.Zero(t, est.calls)

	require.NotNil(t, logs.dayLog)
	assert.Equal(t, result.Totals, logs.dayLog.Totals)
	require.Len(t, logs.items, 1)
	assert.Equal(t, domain.SourceDB, logs.items[0].Source)
	assert.InDelta(t, 512, logs.items[0].NutrientRows[domain.CodePotassium], 1e-9)

	require.NotNil(t, result.Debug)
	assert.Equal(t, 1, result.Debug.Deterministic)
}

func TestResolveDayLog_OuncesConvert(t *testing.T) {
	repo, _ := chickenRepo()
	logs := &fakeLogRepo{}
	svc := newTestLogService(repo, logs, &fakeEstimator{})

	result, err := svc.ResolveDayLog(context.Background(), uuid.New(), "2026-09-01",
		[]domain.LogItem{{FoodName: "chicken breast", Amount: 4, Unit: "oz"}}, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.InDelta(t, 113.398, result.Items[0].Grams, 0.001)
}

func TestResolveDayLog_ServingUnitLookup(t *testing.T) {
	repo, chicken := chickenRepo()
	repo.unitWeights = map[uuid.UUID]map[string]float64{
		chicken.Ref.ID: {"serv": 120},
	}
	logs := &fakeLogRepo{}
	est := &fakeEstimator{}
	svc := newTestLogService(repo, logs, est)

	result, err := svc.ResolveDayLog(context.Background(), uuid.New(), "2026-09-01",
		[]domain.LogItem{{FoodName: "chicken breast", Amount: 2, Unit: "serv"}}, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, domain.SourceDB, result.Items[0].Source)
	assert.Equal(t, 240.0, result.Items[0].Grams)
	assert.Zero(t, est.calls)
}

func TestResolveDayLog_MissingUnitTableDisablesLookup(t *testing.T) {
	repo, _ := chickenRepo()
	repo.unitErr = domain.ErrLookupUnavailable
	logs := &fakeLogRepo{}
	est := &fakeEstimator{result: &domain.EstimateResult{
		Totals:  domain.Macros{Calories: 150},
		PerItem: []domain.EstimatedItem{{Macros: domain.Macros{Calories: 150}}, {Macros: domain.Macros{Calories: 150}}},
	}}
	svc := newTestLogService(repo, logs, est)
	ctx := context.Background()
	userID := uuid.New()
	items := []domain.LogItem{{FoodName: "chicken breast", Amount: 1, Unit: "serv"}}

	_, err := svc.ResolveDayLog(ctx, userID, "2026-09-01", items, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.unitCalls.Load())

	// The flag holds for the process lifetime; no second probe happens.
	_, err = svc.ResolveDayLog(ctx, userID, "2026-09-02", items, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.unitCalls.Load())
	assert.Equal(t, 2, est.calls)
}

func TestResolveDayLog_EstimationFallback(t *testing.T) {
	repo := &fakeFoodRepo{}
	logs := &fakeLogRepo{}
	est := &fakeEstimator{result: &domain.EstimateResult{
		Totals: domain.Macros{Calories: 350, ProteinG: 12, CarbsG: 40, FatG: 15},
		PerItem: []domain.EstimatedItem{
			{FoodName: "homemade curry", Macros: domain.Macros{Calories: 350, ProteinG: 12, CarbsG: 40, FatG: 15}},
		},
	}}
	svc := newTestLogService(repo, logs, est)

	result, err := svc.ResolveDayLog(context.Background(), uuid.New(), "2026-09-01",
		[]domain.LogItem{{FoodName: "homemade curry", Amount: 1, Unit: "serv"}}, "extra spicy", 0, 0)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	assert.Equal(t, domain.SourceAI, result.Items[0].Source)
	assert.Equal(t, 350, result.Items[0].Macros.Calories)
	assert.Equal(t, 350, result.Totals.Calories)
	assert.Contains(t, result.Warnings, domain.WarnEstimated)
	assert.Equal(t, 1, est.calls)
	require.Len(t, est.items, 1)
	assert.Equal(t, "homemade curry", est.items[0].FoodName)
}

func TestResolveDayLog_SingleEstimateCallForManyItems(t *testing.T) {
	repo := &fakeFoodRepo{}
	logs := &fakeLogRepo{}
	est := &fakeEstimator{result: &domain.EstimateResult{
		PerItem: []domain.EstimatedItem{
			{Macros: domain.Macros{Calories: 100}},
			{Macros: domain.Macros{Calories: 200}},
		},
	}}
	svc := newTestLogService(repo, logs, est)

	result, err := svc.ResolveDayLog(context.Background(), uuid.New(), "2026-09-01",
		[]domain.LogItem{
			{FoodName: "mystery soup", Amount: 1, Unit: "serv"},
			{FoodName: "street taco", Amount: 2, Unit: "serv"},
		}, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, est.calls)
	assert.Equal(t, 300, result.Totals.Calories)
}

func TestResolveDayLog_SkipsInvalidItems(t *testing.T) {
	repo, _ := chickenRepo()
	logs := &fakeLogRepo{}
	svc := newTestLogService(repo, logs, &fakeEstimator{})

	result, err := svc.ResolveDayLog(context.Background(), uuid.New(), "2026-09-01",
		[]domain.LogItem{
			{FoodName: "", Amount: 100, Unit: "g"},
			{FoodName: "chicken breast", Amount: -5, Unit: "g"},
			{FoodName: "chicken breast", Amount: 100, Unit: "g"},
		}, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, 2, countWarnings(result.Warnings, domain.WarnItemSkipped))
	assert.Equal(t, 2, result.Debug.Skipped)
}

func countWarnings(warnings []string, text string) int {
	n := 0
	for _, w := range warnings {
		if w == text {
			n++
		}
	}
	return n
}

func TestResolveDayLog_LowCoverageRematch(t *testing.T) {
	// The bound food has macros only; the matcher finds a richer substitute
	// under the same name.
	macrosOnly := globalCandidate("Oats")
	rich := globalCandidate("Oats")
	repo := &fakeFoodRepo{
		globalFoods: []domain.FoodCandidate{rich},
		coverage:    map[uuid.UUID]int{rich.Ref.ID: 20},
		rows: map[uuid.UUID]map[string]float64{
			macrosOnly.Ref.ID: {domain.CodeProtein: 13, domain.CodeCarbs: 68, domain.CodeFat: 7},
			rich.Ref.ID: {
				domain.CodeProtein:   13,
				domain.CodeCarbs:     68,
				domain.CodeFat:       7,
				domain.CodeIron:      4.7,
				domain.CodeMagnesium: 138,
			},
		},
	}
	logs := &fakeLogRepo{}
	svc := newTestLogService(repo, logs, &fakeEstimator{})

	result, err := svc.ResolveDayLog(context.Background(), uuid.New(), "2026-09-01",
		[]domain.LogItem{{FoodName: "oats", Amount: 100, Unit: "g", FoodRef: &macrosOnly.Ref}}, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.InDelta(t, 4.7, result.Items[0].NutrientRows[domain.CodeIron], 1e-9)
	assert.NotContains(t, result.Warnings, domain.WarnLowCoverage)
	assert.Equal(t, 1, result.Debug.Rematches)
}

func TestResolveDayLog_RematchReplacesMatcherPick(t *testing.T) {
	// The exact-name match wins the first ranking but carries macros only;
	// the retry must look past the request cache and land on the richer
	// near-name food.
	macrosOnly := globalCandidate("Oats")
	rich := globalCandidate("Rolled Oats")
	repo := &fakeFoodRepo{
		globalFoods: []domain.FoodCandidate{macrosOnly, rich},
		coverage: map[uuid.UUID]int{
			macrosOnly.Ref.ID: 3,
			rich.Ref.ID:       20,
		},
		rows: map[uuid.UUID]map[string]float64{
			macrosOnly.Ref.ID: {domain.CodeProtein: 13, domain.CodeCarbs: 68, domain.CodeFat: 7},
			rich.Ref.ID: {
				domain.CodeProtein: 13,
				domain.CodeCarbs:   68,
				domain.CodeFat:     7,
				domain.CodeIron:    4.7,
			},
		},
	}
	logs := &fakeLogRepo{}
	svc := newTestLogService(repo, logs, &fakeEstimator{})

	result, err := svc.ResolveDayLog(context.Background(), uuid.New(), "2026-09-01",
		[]domain.LogItem{{FoodName: "oats", Amount: 100, Unit: "g"}}, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.InDelta(t, 4.7, result.Items[0].NutrientRows[domain.CodeIron], 1e-9)
	assert.NotContains(t, result.Warnings, domain.WarnLowCoverage)
	assert.Contains(t, result.Warnings, domain.WarnAutoMatched)
	assert.Equal(t, 1, result.Debug.Rematches)
}

func TestResolveDayLog_LowCoverageWarnsWhenNoSubstitute(t *testing.T) {
	macrosOnly := globalCandidate("Oats")
	repo := &fakeFoodRepo{
		globalFoods: []domain.FoodCandidate{macrosOnly},
		coverage:    map[uuid.UUID]int{macrosOnly.Ref.ID: 3},
		rows: map[uuid.UUID]map[string]float64{
			macrosOnly.Ref.ID: {domain.CodeProtein: 13, domain.CodeCarbs: 68, domain.CodeFat: 7},
		},
	}
	logs := &fakeLogRepo{}
	svc := newTestLogService(repo, logs, &fakeEstimator{})

	result, err := svc.ResolveDayLog(context.Background(), uuid.New(), "2026-09-01",
		[]domain.LogItem{{FoodName: "oats", Amount: 100, Unit: "g"}}, "", 0, 0)
	require.NoError(t, err)
	assert.Contains(t, result.Warnings, domain.WarnLowCoverage)
	assert.Equal(t, 1, result.Debug.Rematches)
}

func TestResolveDayLog_Validation(t *testing.T) {
	repo := &fakeFoodRepo{}
	svc := newTestLogService(repo, &fakeLogRepo{}, &fakeEstimator{})
	ctx := context.Background()

	_, err := svc.ResolveDayLog(ctx, uuid.Nil, "2026-09-01", nil, "", 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.ResolveDayLog(ctx, uuid.New(), "01-09-2026", nil, "", 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestDaySummary(t *testing.T) {
	repo, _ := chickenRepo()
	logs := &fakeLogRepo{}
	svc := newTestLogService(repo, logs, &fakeEstimator{})
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.ResolveDayLog(ctx, userID, "2026-09-01",
		[]domain.LogItem{{FoodName: "chicken breast", Amount: 200, Unit: "g"}}, "leg day", 500, 2)
	require.NoError(t, err)

	summary, err := svc.DaySummary(ctx, userID, "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, 62, summary.Totals.ProteinG)
	assert.Equal(t, "leg day", summary.Notes)
	assert.Equal(t, 500, summary.WaterMl)
	require.Len(t, summary.Items, 1)

	var potassium *NutrientBreakdownRow
	for i := range summary.Breakdown {
		if summary.Breakdown[i].Code == domain.CodePotassium {
			potassium = &summary.Breakdown[i]
		}
	}
	require.NotNil(t, potassium)
	assert.InDelta(t, 512, potassium.Amount, 1e-9)
	assert.Equal(t, "mg", potassium.Unit)
}

func TestDaySummary_EmptyDay(t *testing.T) {
	repo := &fakeFoodRepo{}
	svc := newTestLogService(repo, &fakeLogRepo{}, &fakeEstimator{})

	summary, err := svc.DaySummary(context.Background(), uuid.New(), "2026-09-01")
	require.NoError(t, err)
	assert.Zero(t, summary.Totals.Calories)
	assert.Empty(t, summary.Items)
}
