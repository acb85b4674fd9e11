package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/riskibarqy/fantaqb/internal/domain/formation"
	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/domain/quarterback"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/domain/weekstat"
)

const (
	tableQuarterbacks = "qbs"
	tableGames        = "games"
	tableUsers        = "users"
	tableFormations   = "formations"
	tableWeekStats    = "weekstats"
)

type quarterbackModel struct {
	ID     string `db:"id"`
	Name   string `db:"nome"`
	Team   string `db:"squadra"`
	Status string `db:"stato"`
}

var quarterbackColumns = []string{"id", "nome", "squadra", "stato"}

func quarterbackFromRow(row quarterbackModel) quarterback.Quarterback {
	return quarterback.Quarterback{ID: row.ID, Name: row.Name, Team: row.Team, Status: row.Status}
}

type gameModel struct {
	ID         string         `db:"id"`
	Week       int            `db:"week_number"`
	HomeTeam   string         `db:"squadra_casa"`
	AwayTeam   string         `db:"squadra_ospite"`
	Played     bool           `db:"partita_giocata"`
	Result     sql.NullString `db:"risultato"`
	Calculated bool           `db:"partita_calcolata"`
}

var gameColumns = []string{"id", "week_number", "squadra_casa", "squadra_ospite", "partita_giocata", "risultato", "partita_calcolata"}

func gameModelOf(g game.Game) gameModel {
	return gameModel{
		ID:         g.ID,
		Week:       g.Week,
		HomeTeam:   g.HomeTeam,
		AwayTeam:   g.AwayTeam,
		Played:     g.Played(),
		Result:     sql.NullString{String: g.ResultText(), Valid: g.Result != nil},
		Calculated: g.Calculated(),
	}
}

// gameFromRow tolerates a stored result string that no longer parses by
// dropping it; the flags still carry the state.
func gameFromRow(row gameModel) game.Game {
	g := game.Game{
		ID:       row.ID,
		Week:     row.Week,
		HomeTeam: row.HomeTeam,
		AwayTeam: row.AwayTeam,
		State:    game.StateFromFlags(row.Played, row.Calculated),
	}
	if row.Result.Valid {
		if result, err := game.ParseResult(row.Result.String); err == nil {
			g.Result = &result
		}
	}
	return g
}

type userModel struct {
	ID       string `db:"id"`
	Email    string `db:"email"`
	Username string `db:"username"`
	TeamName string `db:"nome_team"`
	IsAdmin  bool   `db:"is_admin"`
}

var userColumns = []string{"id", "email", "username", "nome_team", "is_admin"}

func userFromRow(row userModel) user.User {
	return user.User{ID: row.ID, Email: row.Email, Username: row.Username, TeamName: row.TeamName, IsAdmin: row.IsAdmin}
}

type formationModel struct {
	UserID    string         `db:"user_id"`
	Week      int            `db:"week_number"`
	QBIDs     pq.StringArray `db:"qb_ids"`
	Locked    bool           `db:"locked"`
	UpdatedAt time.Time      `db:"updated_at"`
}

var formationColumns = []string{"user_id", "week_number", "qb_ids", "locked", "updated_at"}

func formationModelOf(f formation.Formation) formationModel {
	return formationModel{
		UserID:    f.UserID,
		Week:      f.Week,
		QBIDs:     pq.StringArray(f.IDs()),
		Locked:    f.Locked(),
		UpdatedAt: f.UpdatedAt,
	}
}

func formationFromRow(row formationModel) formation.Formation {
	f := formation.Formation{
		UserID:    row.UserID,
		Week:      row.Week,
		State:     formation.StateEmpty,
		UpdatedAt: row.UpdatedAt,
	}
	copy(f.QuarterbackIDs[:], row.QBIDs)
	if row.Locked {
		f.State = formation.StateLocked
	}
	return f
}

type weekStatModel struct {
	ID            string  `db:"id"`
	QuarterbackID string  `db:"qb_id"`
	GameID        string  `db:"game_id"`
	Score         float64 `db:"punteggio_qb"`
}

var weekStatColumns = []string{"id", "qb_id", "game_id", "punteggio_qb"}

func weekStatFromRow(row weekStatModel) weekstat.WeekStat {
	return weekstat.WeekStat{ID: row.ID, QuarterbackID: row.QuarterbackID, GameID: row.GameID, Score: row.Score}
}
