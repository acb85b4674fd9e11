package formation

import (
	"errors"
	"testing"
	"time"
)

func TestNewLocked(t *testing.T) {
	now := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		ids       []string
		targetErr error
	}{
		{name: "valid", ids: []string{"qb-a", "qb-b", "qb-c"}},
		{name: "too few", ids: []string{"qb-a", "qb-b"}, targetErr: ErrInvalidSize},
		{name: "too many", ids: []string{"qb-a", "qb-b", "qb-c", "qb-d"}, targetErr: ErrInvalidSize},
		{name: "blank id", ids: []string{"qb-a", " ", "qb-c"}, targetErr: ErrInvalidSize},
		{name: "duplicate", ids: []string{"qb-a", "qb-b", "qb-a"}, targetErr: ErrDuplicateQuarterback},
		{name: "duplicate after trim", ids: []string{"qb-a", "qb-b", " qb-b "}, targetErr: ErrDuplicateQuarterback},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := NewLocked("u1", 5, tc.ids, now)
			if tc.targetErr != nil {
				if !errors.Is(err, tc.targetErr) {
					t.Fatalf("expected %v, got %v", tc.targetErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !f.Locked() {
				t.Fatalf("new formation must be locked")
			}
			if f.QuarterbackIDs != [Size]string{"qb-a", "qb-b", "qb-c"} {
				t.Fatalf("unexpected ids: %v", f.QuarterbackIDs)
			}
			if !f.UpdatedAt.Equal(now) {
				t.Fatalf("unexpected updated at: %v", f.UpdatedAt)
			}
		})
	}
}

func TestNewLocked_RequiresOwnerAndWeek(t *testing.T) {
	ids := []string{"a", "b", "c"}
	if _, err := NewLocked("", 1, ids, time.Now()); err == nil {
		t.Fatalf("expected error for empty user id")
	}
	if _, err := NewLocked("u1", 0, ids, time.Now()); err == nil {
		t.Fatalf("expected error for week 0")
	}
}

func TestOverride(t *testing.T) {
	created, err := NewLocked("u1", 2, []string{"a", "b", "c"}, time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	later := created.UpdatedAt.Add(time.Hour)
	updated, err := created.Override([]string{"d", "e", "f"}, later)
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if !updated.Locked() || updated.QuarterbackIDs != [Size]string{"d", "e", "f"} || !updated.UpdatedAt.Equal(later) {
		t.Fatalf("unexpected override result: %+v", updated)
	}

	if _, err := created.Override([]string{"d", "d", "f"}, later); !errors.Is(err, ErrDuplicateQuarterback) {
		t.Fatalf("expected ErrDuplicateQuarterback, got %v", err)
	}

	var empty Formation
	if _, err := empty.Override([]string{"d", "e", "f"}, later); !errors.Is(err, ErrNoFormation) {
		t.Fatalf("expected ErrNoFormation, got %v", err)
	}
}
