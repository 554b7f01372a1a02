// Package estimator produces structured macro estimates for log items that
// could not be resolved from verified food data. One batched call covers all
// unresolved items of a submission; validated results are cached by a content
// hash of the normalized request.
package estimator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nutrilog/backend/internal/domain"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Config holds estimator client configuration.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	CacheTTL time.Duration
}

// Client calls an OpenAI-style chat completions endpoint with a strict JSON
// response contract.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	cache      domain.CacheRepository
	cacheTTL   time.Duration
	limiter    *rate.Limiter
	log        *zap.SugaredLogger
}

// NewClient creates a new estimator client. cache bounds and TTL limit how
// long identical submissions reuse a previous estimate.
func NewClient(cfg Config, cache domain.CacheRepository, log *zap.SugaredLogger) *Client {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		model:    cfg.Model,
		cache:    cache,
		cacheTTL: cacheTTL,
		limiter:  rate.NewLimiter(rate.Limit(2), 4),
		log:      log.With("client", "estimator"),
	}
}

// chat completions wire types.
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
	Temperature    float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// estimatePayload is the JSON contract the model must produce.
type estimatePayload struct {
	Items []struct {
		FoodName         string  `json:"foodName"`
		Quantity         float64 `json:"quantity"`
		Unit             string  `json:"unit"`
		PreparationState string  `json:"preparationState"`
		Calories         float64 `json:"calories"`
		ProteinG         float64 `json:"protein_g"`
		CarbsG           float64 `json:"carbs_g"`
		FatsG            float64 `json:"fats_g"`
		AlcoholG         float64 `json:"alcohol_g"`
		AssumedServing   bool    `json:"assumedServing"`
	} `json:"items"`
	Total struct {
		Calories float64 `json:"calories"`
		ProteinG float64 `json:"protein_g"`
		CarbsG   float64 `json:"carbs_g"`
		FatsG    float64 `json:"fats_g"`
		AlcoholG float64 `json:"alcohol_g"`
	} `json:"total"`
	Warnings []string `json:"warnings"`
}

// Estimate resolves a batch of unmatched items to calories and macros.
func (c *Client) Estimate(ctx context.Context, items []domain.EstimateItem, notes string) (*domain.EstimateResult, error) {
	if len(items) == 0 {
		return &domain.EstimateResult{
			Warnings: []string{"no items to estimate"},
		}, nil
	}

	hash := contentHash(items, notes)

	if cached, err := c.cache.Get(ctx, hash); err == nil {
		if result, ok := cached.(*domain.EstimateResult); ok {
			c.log.Debugw("estimate cache hit", "hash", hash)
			copied := *result
			copied.Warnings = append(append([]string(nil), result.Warnings...), domain.WarnCachedEstimate)
			return &copied, nil
		}
	}

	payload, err := c.callModel(ctx, items, notes)
	if err != nil {
		return nil, err
	}

	result, err := validate(payload, items)
	if err != nil {
		return nil, err
	}
	result.CachedAt = time.Now()

	if err := c.cache.Set(ctx, hash, result, c.cacheTTL); err != nil {
		c.log.Warnw("failed to cache estimate", "error", err)
	}

	return result, nil
}

// callModel issues the chat completions request and decodes the structured
// payload out of the first choice.
func (c *Client) callModel(ctx context.Context, items []domain.EstimateItem, notes string) (*estimatePayload, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(items, notes)},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
		Temperature:    0,
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEstimatorFailure, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.log.Warnw("estimator api error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrEstimatorFailure, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", domain.ErrEstimatorRefusal)
	}
	choice := chat.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrEstimatorRefusal, choice.Message.Refusal)
	}
	if choice.FinishReason != "" && choice.FinishReason != "stop" {
		return nil, fmt.Errorf("%w: finish reason %s", domain.ErrEstimatorRefusal, choice.FinishReason)
	}

	var payload estimatePayload
	if err := json.Unmarshal([]byte(choice.Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEstimatorRefusal, err)
	}
	return &payload, nil
}

const systemPrompt = `You are a nutrition estimation engine. Estimate calories and macronutrients for each food item. Rules:
- Convert mass units (g, kg, oz, lb) and volume units (ml, l) exactly.
- For ambiguous units such as "serv" or "piece", assume a typical serving size and add a warning naming the item.
- Account for raw versus cooked state changes in weight and nutrient density.
- Respond with a single JSON object: {"items": [{"foodName", "quantity", "unit", "preparationState", "calories", "protein_g", "carbs_g", "fats_g", "alcohol_g", "assumedServing"}], "total": {"calories", "protein_g", "carbs_g", "fats_g", "alcohol_g"}, "warnings": []}.
- "items" must contain exactly one entry per input item, echoing foodName, quantity, unit and preparationState unchanged.
- All numbers are non-negative.`

// buildUserPrompt renders the batch as the user message.
func buildUserPrompt(items []domain.EstimateItem, notes string) string {
	var sb strings.Builder
	sb.WriteString("Estimate these logged items:\n")
	for i, item := range items {
		state := item.PreparationState
		if state == "" {
			state = "unspecified"
		}
		fmt.Fprintf(&sb, "%d. %s, %g %s, %s\n", i+1, item.FoodName, item.Amount, item.Unit, state)
	}
	if notes != "" {
		sb.WriteString("Notes: ")
		sb.WriteString(notes)
		sb.WriteString("\n")
	}
	return sb.String()
}

// contentHash digests the normalized item list plus notes into a cache key.
func contentHash(items []domain.EstimateItem, notes string) string {
	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "%s|%g|%s|%s;",
			normalizeText(item.FoodName),
			item.Amount,
			normalizeText(item.Unit),
			normalizeText(item.PreparationState))
	}
	sb.WriteString(normalizeText(notes))
	sum := sha256.Sum256([]byte(sb.String()))
	return "estimate:" + hex.EncodeToString(sum[:])
}

func normalizeText(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// itemKey is the composite key used to match response items back to request
// items.
func itemKey(name string, amount float64, unit, state string) string {
	return fmt.Sprintf("%s|%g|%s|%s",
		normalizeText(name), amount, normalizeText(unit), normalizeText(state))
}

// validate coerces the model payload into a complete EstimateResult. Every
// numeric field becomes non-negative; macro and calorie fields round to
// integers. Missing response items default to zero macros with a warning,
// duplicate matches are consumed at most once, order-preserving.
func validate(payload *estimatePayload, requested []domain.EstimateItem) (*domain.EstimateResult, error) {
	if payload == nil || payload.Items == nil {
		return nil, fmt.Errorf("%w: missing items", domain.ErrEstimatorRefusal)
	}

	// Index response items by composite key, keeping duplicates in order.
	type responseItem struct {
		macros         domain.Macros
		assumedServing bool
	}
	byKey := make(map[string][]responseItem)
	for _, item := range payload.Items {
		macros := domain.Macros{
			Calories: roundNonNegative(item.Calories),
			ProteinG: roundNonNegative(item.ProteinG),
			CarbsG:   roundNonNegative(item.CarbsG),
			FatG:     roundNonNegative(item.FatsG),
			AlcoholG: clampAlcohol(item.AlcoholG),
		}
		key := itemKey(item.FoodName, item.Quantity, item.Unit, item.PreparationState)
		byKey[key] = append(byKey[key], responseItem{macros: macros, assumedServing: item.AssumedServing})
	}

	result := &domain.EstimateResult{
		Totals: domain.Macros{
			Calories: roundNonNegative(payload.Total.Calories),
			ProteinG: roundNonNegative(payload.Total.ProteinG),
			CarbsG:   roundNonNegative(payload.Total.CarbsG),
			FatG:     roundNonNegative(payload.Total.FatsG),
			AlcoholG: clampAlcohol(payload.Total.AlcoholG),
		},
		Warnings: append([]string(nil), payload.Warnings...),
	}

	for _, req := range requested {
		estimated := domain.EstimatedItem{
			FoodName:         req.FoodName,
			Amount:           req.Amount,
			Unit:             req.Unit,
			PreparationState: req.PreparationState,
		}
		key := itemKey(req.FoodName, req.Amount, req.Unit, req.PreparationState)
		if matches := byKey[key]; len(matches) > 0 {
			estimated.Macros = matches[0].macros
			if matches[0].assumedServing {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: %s", domain.WarnAssumedServing, req.FoodName))
			}
			byKey[key] = matches[1:]
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: %s", domain.WarnItemZeroed, req.FoodName))
		}
		result.PerItem = append(result.PerItem, estimated)
	}

	return result, nil
}

func roundNonNegative(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return int(math.Round(v))
}

func clampAlcohol(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return math.Round(v*10) / 10
}
