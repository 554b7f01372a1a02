package usecase

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nutrilog/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// MatchCache memoizes match results by normalized name for the lifetime of
// one submission request. Never shared across requests.
type MatchCache struct {
	entries map[string]*domain.FoodMatch
}

// NewMatchCache creates an empty request-scoped match cache.
func NewMatchCache() *MatchCache {
	return &MatchCache{entries: make(map[string]*domain.FoodMatch)}
}

func (c *MatchCache) get(key string) (*domain.FoodMatch, bool) {
	match, ok := c.entries[key]
	return match, ok
}

func (c *MatchCache) put(key string, match *domain.FoodMatch) {
	c.entries[key] = match
}

// Matcher resolves free-text food names to the best verified food reference.
type Matcher struct {
	foods domain.FoodRepository
	log   *zap.SugaredLogger
	debug bool
}

// NewMatcher creates a food matcher.
func NewMatcher(foods domain.FoodRepository, log *zap.SugaredLogger, debug bool) *Matcher {
	return &Matcher{foods: foods, log: log.With("component", "matcher"), debug: debug}
}

// candidate carries ranking inputs for one search hit.
type candidate struct {
	domain.FoodCandidate
	normalizedName string
	coverage       int
}

// Match finds the best verified food for a free-text name. Returns nil with
// no error when nothing matches; callers treat that as "no deterministic
// match", not a failure. Results are memoized in cache by normalized name,
// including misses.
func (m *Matcher) Match(ctx context.Context, userID uuid.UUID, name string, cache *MatchCache) (*domain.FoodMatch, error) {
	normalized := NormalizeFoodName(name)
	if normalized == "" {
		return nil, nil
	}

	if cached, ok := cache.get(normalized); ok {
		return cached, nil
	}

	candidates, err := m.searchCandidates(ctx, userID, normalized)
	if err != nil {
		return nil, err
	}

	ranked, err := m.rankByCoverage(ctx, normalized, candidates)
	if err != nil {
		return nil, err
	}

	if len(ranked) == 0 {
		cache.put(normalized, nil)
		return nil, nil
	}

	match := buildMatch(normalized, ranked[0])
	if m.debug {
		m.log.Debugw("matched food", "query", normalized, "name", match.Name,
			"userOwned", match.Ref.UserOwned, "coverage", match.Coverage, "auto", match.AutoMatched)
	}

	cache.put(normalized, match)
	return match, nil
}

// MatchExcluding re-runs the ranking for name but skips exclude, returning
// the best remaining candidate. The low-coverage retry uses this to seek a
// substitute for a food it already holds; had it gone through Match, the
// request cache would hand back the food being replaced. Results are not
// memoized.
func (m *Matcher) MatchExcluding(ctx context.Context, userID uuid.UUID, name string, exclude domain.FoodRef) (*domain.FoodMatch, error) {
	normalized := NormalizeFoodName(name)
	if normalized == "" {
		return nil, nil
	}

	candidates, err := m.searchCandidates(ctx, userID, normalized)
	if err != nil {
		return nil, err
	}
	ranked, err := m.rankByCoverage(ctx, normalized, candidates)
	if err != nil {
		return nil, err
	}

	for _, c := range ranked {
		if c.Ref == exclude {
			continue
		}
		return buildMatch(normalized, c), nil
	}
	return nil, nil
}

func buildMatch(normalized string, best candidate) *domain.FoodMatch {
	match := &domain.FoodMatch{
		Ref:         best.Ref,
		Name:        best.Name,
		AutoMatched: best.normalizedName != normalized,
		Coverage:    best.coverage,
	}
	if best.Ref.UserOwned {
		match.UserFoodID = best.Ref.ID
	} else {
		match.FoodID = best.Ref.ID
	}
	return match
}

// searchCandidates runs the four fan-out queries (user/global store × full
// phrase/first token) concurrently and merges the results with first-seen
// dedup, user hits ahead of global hits.
func (m *Matcher) searchCandidates(ctx context.Context, userID uuid.UUID, normalized string) ([]domain.FoodCandidate, error) {
	patterns := searchPatterns(normalized)

	// Fixed result slots keep the merge order deterministic regardless of
	// goroutine completion order.
	results := make([][]domain.FoodCandidate, 2*len(patterns))
	g, gctx := errgroup.WithContext(ctx)

	for i, pattern := range patterns {
		if userID != uuid.Nil {
			g.Go(func() error {
				hits, err := m.foods.SearchUserFoods(gctx, userID, pattern)
				if err != nil {
					return err
				}
				results[i] = hits
				return nil
			})
		}
		g.Go(func() error {
			hits, err := m.foods.SearchGlobalFoods(gctx, pattern)
			if err != nil {
				return err
			}
			results[len(patterns)+i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[domain.FoodRef]bool)
	var merged []domain.FoodCandidate
	for _, hits := range results {
		for _, hit := range hits {
			if seen[hit.Ref] {
				continue
			}
			seen[hit.Ref] = true
			merged = append(merged, hit)
		}
	}
	return merged, nil
}

// rankByCoverage fetches key-nutrient coverage for every candidate
// concurrently, discards zero-coverage candidates, and sorts by the score
// tuple (exact normalized-name match, user-owned, coverage). Ties keep the
// merged fan-out order.
func (m *Matcher) rankByCoverage(ctx context.Context, normalized string, candidates []domain.FoodCandidate) ([]candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	scored := make([]candidate, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		g.Go(func() error {
			count, err := m.foods.KeyNutrientCount(gctx, c.Ref)
			if err != nil {
				return err
			}
			scored[i] = candidate{
				FoodCandidate:  c,
				normalizedName: NormalizeFoodName(c.Name),
				coverage:       count,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := scored[:0]
	for _, c := range scored {
		if c.coverage > 0 {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		iExact := kept[i].normalizedName == normalized
		jExact := kept[j].normalizedName == normalized
		if iExact != jExact {
			return iExact
		}
		if kept[i].Ref.UserOwned != kept[j].Ref.UserOwned {
			return kept[i].Ref.UserOwned
		}
		return kept[i].coverage > kept[j].coverage
	})
	return kept, nil
}

// searchPatterns builds the LIKE patterns: full normalized phrase plus its
// first token when they differ.
func searchPatterns(normalized string) []string {
	patterns := []string{"%" + normalized + "%"}
	if first, _, found := strings.Cut(normalized, " "); found {
		patterns = append(patterns, "%"+first+"%")
	}
	return patterns
}

// NormalizeFoodName lowercases, strips non-alphanumerics to single spaces,
// and trims.
func NormalizeFoodName(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
