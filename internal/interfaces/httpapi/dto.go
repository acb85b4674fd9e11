package httpapi

import (
	"time"

	"github.com/riskibarqy/fantaqb/internal/domain/formation"
	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/domain/weekstat"
	"github.com/riskibarqy/fantaqb/internal/usecase"
)

type submitFormationRequest struct {
	QuarterbackIDs []string `json:"qb_ids" validate:"required,len=3,dive,required"`
}

type recordResultRequest struct {
	Result string `json:"result" validate:"omitempty,max=16"`
}

type recordScoreRequest struct {
	QuarterbackID string   `json:"qb_id" validate:"required"`
	Score         *float64 `json:"score" validate:"required"`
}

type currentWeekDTO struct {
	Week int  `json:"week"`
	Open bool `json:"open"`
}

type formationDTO struct {
	UserID         string    `json:"user_id"`
	Week           int       `json:"week"`
	QuarterbackIDs []string  `json:"qb_ids"`
	State          string    `json:"state"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type formationListingDTO struct {
	formationDTO
	Username string `json:"username"`
	TeamName string `json:"team_name"`
}

type formationPlayerDTO struct {
	QuarterbackID string  `json:"qb_id"`
	Name          string  `json:"name"`
	Team          string  `json:"team"`
	GameID        string  `json:"game_id,omitempty"`
	Score         float64 `json:"score"`
	Scored        bool    `json:"scored"`
	Counted       bool    `json:"counted"`
}

type formationViewDTO struct {
	UserID    string               `json:"user_id"`
	Week      int                  `json:"week"`
	Exists    bool                 `json:"exists"`
	Final     bool                 `json:"final"`
	Formation *formationDTO        `json:"formation,omitempty"`
	Players   []formationPlayerDTO `json:"players"`
	Total     float64              `json:"total"`
}

type leagueRowDTO struct {
	Rank       int     `json:"rank"`
	UserID     string  `json:"user_id"`
	Username   string  `json:"username"`
	TeamName   string  `json:"team_name"`
	Total      float64 `json:"total"`
	Formations int     `json:"formations"`
}

type quarterbackRowDTO struct {
	Rank          int     `json:"rank"`
	QuarterbackID string  `json:"qb_id"`
	Name          string  `json:"name"`
	Team          string  `json:"team"`
	GamesPlayed   int     `json:"games_played"`
	TotalPoints   float64 `json:"total_points"`
	PointsPerGame float64 `json:"points_per_game"`
}

type gameDTO struct {
	ID       string `json:"id"`
	Week     int    `json:"week"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	State    string `json:"state"`
	Result   string `json:"result,omitempty"`
}

type calendarWeekDTO struct {
	Week       int       `json:"week"`
	Calculated bool      `json:"calculated"`
	Games      []gameDTO `json:"games"`
}

type weekValidationDTO struct {
	Week       int      `json:"week"`
	Calculable bool     `json:"calculable"`
	Problems   []string `json:"problems"`
}

type calculationReportDTO struct {
	Week              int  `json:"week"`
	Flagged           int  `json:"flagged"`
	AlreadyCalculated bool `json:"already_calculated"`
}

type weekStatDTO struct {
	ID            string  `json:"id"`
	QuarterbackID string  `json:"qb_id"`
	GameID        string  `json:"game_id"`
	Score         float64 `json:"score"`
}

func toFormationDTO(f formation.Formation) formationDTO {
	return formationDTO{
		UserID:         f.UserID,
		Week:           f.Week,
		QuarterbackIDs: f.IDs(),
		State:          string(f.State),
		UpdatedAt:      f.UpdatedAt,
	}
}

func toFormationListingDTOs(items []usecase.FormationListing) []formationListingDTO {
	out := make([]formationListingDTO, 0, len(items))
	for _, item := range items {
		out = append(out, formationListingDTO{
			formationDTO: toFormationDTO(item.Formation),
			Username:     item.Username,
			TeamName:     item.TeamName,
		})
	}
	return out
}

func toFormationViewDTO(view usecase.FormationView) formationViewDTO {
	out := formationViewDTO{
		UserID:  view.UserID,
		Week:    view.Week,
		Exists:  view.Exists,
		Final:   view.Final,
		Players: make([]formationPlayerDTO, 0, len(view.Players)),
		Total:   view.Total,
	}
	if view.Exists {
		f := toFormationDTO(view.Formation)
		out.Formation = &f
	}
	for _, p := range view.Players {
		out.Players = append(out.Players, formationPlayerDTO{
			QuarterbackID: p.QuarterbackID,
			Name:          p.Name,
			Team:          p.Team,
			GameID:        p.GameID,
			Score:         p.Score,
			Scored:        p.Scored,
			Counted:       p.Counted,
		})
	}
	return out
}

func toLeagueRowDTOs(rows []usecase.LeagueRow) []leagueRowDTO {
	out := make([]leagueRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueRowDTO{
			Rank:       row.Rank,
			UserID:     row.UserID,
			Username:   row.Username,
			TeamName:   row.TeamName,
			Total:      row.Total,
			Formations: row.Formations,
		})
	}
	return out
}

func toQuarterbackRowDTOs(rows []usecase.QuarterbackRow) []quarterbackRowDTO {
	out := make([]quarterbackRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, quarterbackRowDTO{
			Rank:          row.Rank,
			QuarterbackID: row.QuarterbackID,
			Name:          row.Name,
			Team:          row.Team,
			GamesPlayed:   row.GamesPlayed,
			TotalPoints:   row.TotalPoints,
			PointsPerGame: row.PointsPerGame,
		})
	}
	return out
}

func toGameDTO(g game.Game) gameDTO {
	return gameDTO{
		ID:       g.ID,
		Week:     g.Week,
		HomeTeam: g.HomeTeam,
		AwayTeam: g.AwayTeam,
		State:    string(g.State),
		Result:   g.ResultText(),
	}
}

func toCalendarDTOs(weeks []usecase.CalendarWeek) []calendarWeekDTO {
	out := make([]calendarWeekDTO, 0, len(weeks))
	for _, week := range weeks {
		games := make([]gameDTO, 0, len(week.Games))
		for _, g := range week.Games {
			games = append(games, toGameDTO(g))
		}
		out = append(out, calendarWeekDTO{Week: week.Week, Calculated: week.Calculated, Games: games})
	}
	return out
}

func toWeekStatDTO(s weekstat.WeekStat) weekStatDTO {
	return weekStatDTO{
		ID:            s.ID,
		QuarterbackID: s.QuarterbackID,
		GameID:        s.GameID,
		Score:         s.Score,
	}
}
