package formation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Size is the number of quarterbacks in every formation.
const Size = 3

type State string

const (
	StateEmpty  State = "empty"
	StateLocked State = "locked"
)

var (
	ErrInvalidSize          = errors.New("formation must contain exactly 3 quarterbacks")
	ErrDuplicateQuarterback = errors.New("formation quarterbacks must be distinct")
	ErrFormationLocked      = errors.New("formation already submitted")
	ErrNoFormation          = errors.New("formation not submitted")
)

// Formation is one user's quarterback pick for one week. A zero value is the
// Empty state; every stored formation is Locked.
type Formation struct {
	UserID         string
	Week           int
	QuarterbackIDs [Size]string
	State          State
	UpdatedAt      time.Time
}

// NewLocked builds a submitted formation. There is no draft state.
func NewLocked(userID string, week int, ids []string, now time.Time) (Formation, error) {
	if strings.TrimSpace(userID) == "" {
		return Formation{}, fmt.Errorf("formation user id is required")
	}
	if week <= 0 {
		return Formation{}, fmt.Errorf("formation week must be positive, got %d", week)
	}
	set, err := normalizeIDs(ids)
	if err != nil {
		return Formation{}, err
	}

	return Formation{
		UserID:         userID,
		Week:           week,
		QuarterbackIDs: set,
		State:          StateLocked,
		UpdatedAt:      now,
	}, nil
}

// Override replaces the quarterback set of a submitted formation.
func (f Formation) Override(ids []string, now time.Time) (Formation, error) {
	if f.State != StateLocked {
		return f, ErrNoFormation
	}
	set, err := normalizeIDs(ids)
	if err != nil {
		return f, err
	}
	f.QuarterbackIDs = set
	f.UpdatedAt = now
	return f, nil
}

func (f Formation) Locked() bool { return f.State == StateLocked }

func (f Formation) IDs() []string {
	return append([]string(nil), f.QuarterbackIDs[:]...)
}

// ValidateIDs reports whether ids form a legal quarterback set.
func ValidateIDs(ids []string) error {
	_, err := normalizeIDs(ids)
	return err
}

func normalizeIDs(ids []string) ([Size]string, error) {
	var out [Size]string
	if len(ids) != Size {
		return out, fmt.Errorf("%w: got %d", ErrInvalidSize, len(ids))
	}

	seen := make(map[string]struct{}, Size)
	for i, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			return out, fmt.Errorf("%w: empty quarterback id at position %d", ErrInvalidSize, i)
		}
		if _, dup := seen[id]; dup {
			return out, fmt.Errorf("%w: %s", ErrDuplicateQuarterback, id)
		}
		seen[id] = struct{}{}
		out[i] = id
	}
	return out, nil
}
