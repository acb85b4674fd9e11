package weekstat

import (
	"fmt"
	"math"
	"strings"
)

// WeekStat is one quarterback's fantasy score for one game. A zero score
// means the player appeared but earned nothing.
type WeekStat struct {
	ID            string
	QuarterbackID string
	GameID        string
	Score         float64
}

func (w WeekStat) Validate() error {
	if strings.TrimSpace(w.QuarterbackID) == "" {
		return fmt.Errorf("weekstat quarterback id is required")
	}
	if strings.TrimSpace(w.GameID) == "" {
		return fmt.Errorf("weekstat game id is required")
	}
	if math.IsNaN(w.Score) || math.IsInf(w.Score, 0) {
		return fmt.Errorf("weekstat score must be finite")
	}
	return nil
}
