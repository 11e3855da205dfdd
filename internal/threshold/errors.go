package threshold

import "sensordash/internal/errors"

const (
	// Validation Errors
	ErrInvalidRange = errors.ErrorCode("threshold_invalid_range")

	// Storage Errors
	ErrInvalidDBPath = errors.ErrorCode("threshold_invalid_db_path")
	ErrStorageInit   = errors.ErrorCode("threshold_storage_init_failed")
	ErrStorageAccess = errors.ErrorCode("threshold_storage_access_failed")
	ErrStorageClose  = errors.ErrorCode("threshold_storage_close_failed")
)

// InvalidRangeData names the metric that failed validation.
type InvalidRangeData struct {
	Metric string  `json:"metric"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}
