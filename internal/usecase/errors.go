package usecase

import (
	"errors"

	"github.com/riskibarqy/fantaqb/internal/domain/formation"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrWeekClosed            = errors.New("week closed for submissions")
	ErrWeekNotCalculable     = errors.New("week not calculable")
	ErrFormationLocked       = formation.ErrFormationLocked
)
