package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrFoodNotFound is returned when a food cannot be found in any store
	ErrFoodNotFound = errors.New("food not found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrFoodDataAPIFailure is returned when the external food-database request fails
	ErrFoodDataAPIFailure = errors.New("food data API request failed")

	// ErrEstimatorFailure is returned when the estimation service request fails
	ErrEstimatorFailure = errors.New("estimation request failed")

	// ErrEstimatorRefusal is returned when the estimation service refuses or
	// returns an incomplete structured response
	ErrEstimatorRefusal = errors.New("estimation response refused or incomplete")

	// ErrLookupUnavailable is returned by repositories when an optional
	// lookup table is missing from the schema
	ErrLookupUnavailable = errors.New("lookup table unavailable")

	// ErrStorageFailure is returned when a datastore operation fails
	ErrStorageFailure = errors.New("datastore operation failed")
)

// Warning texts accumulated alongside successful results. Non-fatal.
const (
	WarnAutoMatched    = "auto-matched to a different food than requested"
	WarnLowCoverage    = "matched food lacks micronutrient coverage"
	WarnEstimated      = "fell back to estimation"
	WarnCachedEstimate = "used cached estimate"
	WarnAssumedServing = "assumed a typical serving size for an ambiguous unit"
	WarnItemSkipped    = "item skipped: missing name or non-positive amount"
	WarnItemZeroed     = "estimator omitted item, defaulted to zero macros"
)
