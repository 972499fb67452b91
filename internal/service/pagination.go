package service

import (
	"itemhub/internal/errors"
	"itemhub/internal/repository"
)

// normalizePage validates skip and clamps limit into [1, MaxLimit].
// A zero limit means "use the default".
func normalizePage(skip, limit int) (int, int, error) {
	if skip < 0 {
		return 0, 0, errors.NewValidationError("skip", "must be greater than or equal to 0")
	}
	switch {
	case limit == 0:
		limit = repository.DefaultLimit
	case limit < 0:
		return 0, 0, errors.NewValidationError("limit", "must be greater than 0")
	case limit > repository.MaxLimit:
		limit = repository.MaxLimit
	}
	return skip, limit, nil
}
