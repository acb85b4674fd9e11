package scoring

// Contribution is one quarterback's share of a formation total.
type Contribution struct {
	QuarterbackID string
	GameID        string
	Score         float64
	Scored        bool
	Counted       bool
}

// PlayerStats is a quarterback's season line.
type PlayerStats struct {
	QuarterbackID string
	GamesPlayed   int
	TotalPoints   float64
	PointsPerGame float64
}

// UserTotal is a user's league total over every submitted formation.
type UserTotal struct {
	UserID     string
	Total      float64
	Formations int
}

// Counts reports whether a score adds to totals. Zero still counts as a
// game played.
func Counts(score float64) bool {
	return score > 0
}
