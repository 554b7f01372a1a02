package fdc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nutrilog/backend/internal/domain"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com", testLogger())

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSearchFoods_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/foods/search", r.URL.Path)
		assert.Equal(t, "banana", r.URL.Query().Get("query"))
		assert.Equal(t, "test-api-key", r.URL.Query().Get("api_key"))

		response := searchResponse{
			Foods: []wireFood{
				{
					FdcID:       173944,
					Description: "Bananas, raw",
					DataType:    "Foundation",
					Nutrients: []wireNutrient{
						{NutrientID: 1008, NutrientName: "Energy", UnitName: "kcal", Value: 89},
						{NutrientID: 1003, NutrientName: "Protein", UnitName: "g", Value: 1.1},
					},
				},
			},
			TotalHits: 1,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, testLogger())

	foods, err := client.SearchFoods(context.Background(), "banana")
	require.NoError(t, err)
	require.Len(t, foods, 1)

	assert.Equal(t, "173944", foods[0].ExternalID)
	assert.Equal(t, "Bananas, raw", foods[0].Name)
	require.Len(t, foods[0].Observations, 2)
	assert.Equal(t, 1008, foods[0].Observations[0].ExternalID)
	assert.Equal(t, 89.0, foods[0].Observations[0].AmountPer100G)
}

func TestSearchFoods_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{Foods: []wireFood{}})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, testLogger())

	_, err := client.SearchFoods(context.Background(), "nothing")
	assert.ErrorIs(t, err, domain.ErrFoodNotFound)
}

func TestGetFood_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/food/173944", r.URL.Path)

		json.NewEncoder(w).Encode(wireFood{
			FdcID:       173944,
			Description: "Bananas, raw",
			Nutrients: []wireNutrient{
				{NutrientID: 1005, NutrientName: "Carbohydrate, by difference", UnitName: "g", Value: 22.8},
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, testLogger())

	food, err := client.GetFood(context.Background(), "173944")
	require.NoError(t, err)
	assert.Equal(t, "Bananas, raw", food.Name)
	require.Len(t, food.Observations, 1)
	assert.Equal(t, 22.8, food.Observations[0].AmountPer100G)
}

func TestGetFood_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, testLogger())

	_, err := client.GetFood(context.Background(), "999999")
	assert.ErrorIs(t, err, domain.ErrFoodNotFound)
}
