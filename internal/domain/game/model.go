package game

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// State is the lifecycle position of a game.
type State string

const (
	StateScheduled  State = "scheduled"
	StatePlayed     State = "played"
	StateCalculated State = "calculated"
)

var (
	ErrMalformedResult = errors.New("malformed game result")
	ErrGameCalculated  = errors.New("game already calculated")
	ErrGameNotPlayed   = errors.New("game not played")
)

var resultPattern = regexp.MustCompile(`^\s*(\d{1,3})\s*-\s*(\d{1,3})\s*$`)

// Result is a final score, home first.
type Result struct {
	Home int
	Away int
}

func ParseResult(raw string) (Result, error) {
	m := resultPattern.FindStringSubmatch(raw)
	if m == nil {
		return Result{}, fmt.Errorf("%w: %q", ErrMalformedResult, raw)
	}
	home, _ := strconv.Atoi(m[1])
	away, _ := strconv.Atoi(m[2])
	return Result{Home: home, Away: away}, nil
}

func (r Result) String() string {
	return strconv.Itoa(r.Home) + " - " + strconv.Itoa(r.Away)
}

// Game is one matchup of a league week.
type Game struct {
	ID       string
	Week     int
	HomeTeam string
	AwayTeam string
	State    State
	Result   *Result
}

func (g Game) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("game id is required")
	}
	if g.Week <= 0 {
		return fmt.Errorf("game week must be positive, got %d", g.Week)
	}
	if strings.TrimSpace(g.HomeTeam) == "" || strings.TrimSpace(g.AwayTeam) == "" {
		return fmt.Errorf("game teams are required")
	}
	switch g.State {
	case StateScheduled, StatePlayed, StateCalculated:
	default:
		return fmt.Errorf("invalid game state: %q", g.State)
	}
	return nil
}

func (g Game) Played() bool     { return g.State == StatePlayed || g.State == StateCalculated }
func (g Game) Calculated() bool { return g.State == StateCalculated }

func (g Game) Matchup() string {
	return g.HomeTeam + " vs " + g.AwayTeam
}

// ResultText is the wire form of the result, empty when unset.
func (g Game) ResultText() string {
	if g.Result == nil {
		return ""
	}
	return g.Result.String()
}

// RecordResult sets or clears the final score. An empty raw value returns the
// game to Scheduled.
func (g Game) RecordResult(raw string) (Game, error) {
	if g.State == StateCalculated {
		return g, ErrGameCalculated
	}
	if strings.TrimSpace(raw) == "" {
		g.State = StateScheduled
		g.Result = nil
		return g, nil
	}

	result, err := ParseResult(raw)
	if err != nil {
		return g, err
	}
	g.State = StatePlayed
	g.Result = &result
	return g, nil
}

// MarkCalculated finalizes a played game. Calculating twice is a no-op.
func (g Game) MarkCalculated() (Game, error) {
	switch g.State {
	case StateCalculated:
		return g, nil
	case StatePlayed:
		g.State = StateCalculated
		return g, nil
	default:
		return g, fmt.Errorf("%w: %s", ErrGameNotPlayed, g.Matchup())
	}
}

// StateFromFlags maps the stored played/calculated booleans onto State.
// A calculated flag without the played flag is read as Calculated.
func StateFromFlags(played, calculated bool) State {
	switch {
	case calculated:
		return StateCalculated
	case played:
		return StatePlayed
	default:
		return StateScheduled
	}
}
