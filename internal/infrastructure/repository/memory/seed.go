package memory

import (
	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/domain/quarterback"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
)

const SeedAdminID = "admin"

func SeedQuarterbacks() []quarterback.Quarterback {
	return []quarterback.Quarterback{
		{ID: "qb-mahomes", Name: "Patrick Mahomes", Team: "Chiefs", Status: quarterback.StatusStarter},
		{ID: "qb-allen", Name: "Josh Allen", Team: "Bills", Status: quarterback.StatusStarter},
		{ID: "qb-burrow", Name: "Joe Burrow", Team: "Bengals", Status: quarterback.StatusStarter},
		{ID: "qb-hurts", Name: "Jalen Hurts", Team: "Eagles", Status: quarterback.StatusStarter},
		{ID: "qb-jackson", Name: "Lamar Jackson", Team: "Ravens", Status: quarterback.StatusStarter},
		{ID: "qb-goff", Name: "Jared Goff", Team: "Lions", Status: quarterback.StatusStarter},
		{ID: "qb-backup-kc", Name: "Carson Wentz", Team: "Chiefs", Status: "Riserva"},
	}
}

func SeedGames() []game.Game {
	return []game.Game{
		{ID: "w1-kc-buf", Week: 1, HomeTeam: "Chiefs", AwayTeam: "Bills", State: game.StateScheduled},
		{ID: "w1-cin-phi", Week: 1, HomeTeam: "Bengals", AwayTeam: "Eagles", State: game.StateScheduled},
		{ID: "w1-bal-det", Week: 1, HomeTeam: "Ravens", AwayTeam: "Lions", State: game.StateScheduled},
		{ID: "w2-buf-cin", Week: 2, HomeTeam: "Bills", AwayTeam: "Bengals", State: game.StateScheduled},
		{ID: "w2-phi-bal", Week: 2, HomeTeam: "Eagles", AwayTeam: "Ravens", State: game.StateScheduled},
		{ID: "w2-det-kc", Week: 2, HomeTeam: "Lions", AwayTeam: "Chiefs", State: game.StateScheduled},
	}
}

func SeedUsers() []user.User {
	return []user.User{
		{ID: SeedAdminID, Email: "admin@fantaqb.local", Username: "commissioner", IsAdmin: true},
		{ID: "demo-user", Email: "demo@fantaqb.local", Username: "demo", TeamName: "Demo Gunslingers"},
	}
}
