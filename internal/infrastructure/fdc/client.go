// Package fdc talks to the external FoodData-Central-style food database.
package fdc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nutrilog/backend/internal/domain"
)

// searchResponse is the wire shape of the search endpoint.
type searchResponse struct {
	Foods     []wireFood `json:"foods"`
	TotalHits int        `json:"totalHits"`
}

// wireFood is the wire shape of one food record.
type wireFood struct {
	FdcID       int64          `json:"fdcId"`
	Description string         `json:"description"`
	BrandOwner  string         `json:"brandOwner,omitempty"`
	DataType    string         `json:"dataType,omitempty"`
	Nutrients   []wireNutrient `json:"foodNutrients"`
}

// wireNutrient is one nutrient observation on the wire.
type wireNutrient struct {
	NutrientID     int     `json:"nutrientId"`
	NutrientNumber string  `json:"nutrientNumber,omitempty"`
	NutrientName   string  `json:"nutrientName"`
	UnitName       string  `json:"unitName"`
	Value          float64 `json:"value"`
}

// Client handles communication with the food database API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	log         *zap.SugaredLogger
}

// NewClient creates a new food database client
func NewClient(apiKey, baseURL string, log *zap.SugaredLogger) *Client {
	// The API allows 1000 requests per hour: 1000/3600 ≈ 0.278 requests/sec
	limiter := rate.NewLimiter(rate.Limit(0.278), 10) // burst of 10 requests

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
		log:         log.With("client", "fdc"),
	}
}

// exponentialBackoff returns the wait before retry number attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Nutrilog/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFoodDataAPIFailure, err)
	}

	return resp, nil
}

// SearchFoods returns a ranked list of candidate foods for a text query.
func (c *Client) SearchFoods(ctx context.Context, query string) ([]domain.ExternalFood, error) {
	c.log.Debugw("searching foods", "query", query)

	endpoint := fmt.Sprintf("%s/v1/foods/search", c.baseURL)
	params := url.Values{}
	params.Add("query", query)
	params.Add("api_key", c.apiKey)
	params.Add("dataType", "Survey (FNDDS),Foundation,Branded")
	params.Add("pageSize", "10")

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	body, err := c.getWithRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(searchResp.Foods) == 0 {
		c.log.Debugw("no foods found", "query", query)
		return nil, domain.ErrFoodNotFound
	}

	foods := make([]domain.ExternalFood, 0, len(searchResp.Foods))
	for _, f := range searchResp.Foods {
		foods = append(foods, mapWireFood(f))
	}
	c.log.Debugw("foods found", "query", query, "count", len(foods))
	return foods, nil
}

// GetFood retrieves one food with its full nutrient observation list.
func (c *Client) GetFood(ctx context.Context, externalID string) (*domain.ExternalFood, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/food/%s", c.baseURL, externalID)
	params := url.Values{}
	params.Add("api_key", c.apiKey)

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrFoodNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrFoodDataAPIFailure, resp.StatusCode, string(body))
	}

	var food wireFood
	if err := json.NewDecoder(resp.Body).Decode(&food); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	mapped := mapWireFood(food)
	return &mapped, nil
}

// getWithRetry runs a GET with up to 3 attempts for transient failures.
func (c *Client) getWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			c.log.Warnw("request error", "attempt", attempt, "error", err)
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if resp.StatusCode == http.StatusNotFound {
				return nil, domain.ErrFoodNotFound
			}
			c.log.Warnw("api error", "attempt", attempt, "status", resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrFoodDataAPIFailure, resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		return body, nil
	}

	c.log.Errorw("all retries failed", "url", reqURL)
	return nil, lastErr
}

// mapWireFood converts the wire shape into the domain model.
func mapWireFood(f wireFood) domain.ExternalFood {
	obs := make([]domain.NutrientObservation, 0, len(f.Nutrients))
	for _, n := range f.Nutrients {
		obs = append(obs, domain.NutrientObservation{
			ExternalID:     n.NutrientID,
			ExternalNumber: n.NutrientNumber,
			Name:           n.NutrientName,
			Unit:           n.UnitName,
			AmountPer100G:  n.Value,
		})
	}
	return domain.ExternalFood{
		ExternalID:   strconv.FormatInt(f.FdcID, 10),
		Name:         f.Description,
		Brand:        f.BrandOwner,
		DataType:     f.DataType,
		Observations: obs,
	}
}
