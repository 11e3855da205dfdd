package threshold

import (
	"sync"

	"sensordash/internal/errors"
	"sensordash/internal/logger"
)

// Store owns the active threshold set. The active set is only ever
// replaced as a whole, after validation and persistence both succeeded.
type Store struct {
	mu     sync.RWMutex
	active Set
	repo   Repository
}

// NewStore loads the persisted set from repo, falling back to the
// hardcoded defaults when none exists.
func NewStore(repo Repository) (*Store, error) {
	set, found, err := repo.Load()
	if err != nil {
		return nil, err
	}
	if !found {
		set = DefaultSet()
		logger.Debug().Msg("No persisted thresholds, using defaults")
	}

	return &Store{active: set, repo: repo}, nil
}

// NewMemoryStore returns a store with default thresholds and no
// persistence.
func NewMemoryStore() *Store {
	return &Store{active: DefaultSet(), repo: noopRepository{}}
}

// Current returns a snapshot of the active set.
func (s *Store) Current() Set {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.active
}

// Validate checks a candidate set without touching the active one. A
// failing metric is named in the error data.
func (s *Store) Validate(candidate Set) error {
	errFactory := errors.New()

	if candidate.Temperature.Max <= candidate.Temperature.Min {
		return errFactory.WithData(ErrInvalidRange, InvalidRangeData{
			Metric: "temperature",
			Min:    candidate.Temperature.Min,
			Max:    candidate.Temperature.Max,
		})
	}
	if candidate.Humidity.Max <= candidate.Humidity.Min {
		return errFactory.WithData(ErrInvalidRange, InvalidRangeData{
			Metric: "humidity",
			Min:    candidate.Humidity.Min,
			Max:    candidate.Humidity.Max,
		})
	}

	return nil
}

// Commit validates candidate, persists it, and replaces the active set.
// On any failure the active set is left unchanged.
func (s *Store) Commit(candidate Set) error {
	if err := s.Validate(candidate); err != nil {
		return err
	}

	if err := s.repo.Save(candidate); err != nil {
		return err
	}

	s.mu.Lock()
	s.active = candidate
	s.mu.Unlock()

	logger.Info().
		Float64("temp_min", candidate.Temperature.Min).
		Float64("temp_max", candidate.Temperature.Max).
		Float64("hum_min", candidate.Humidity.Min).
		Float64("hum_max", candidate.Humidity.Max).
		Msg("Thresholds updated")

	return nil
}
