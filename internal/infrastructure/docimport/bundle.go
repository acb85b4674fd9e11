package docimport

import (
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/fantaqb/internal/domain/formation"
	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/domain/quarterback"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/domain/weekstat"
)

// Bundle is a migrated export in canonical form, each slice ordered by id.
type Bundle struct {
	Quarterbacks []quarterback.Quarterback
	Games        []game.Game
	Users        []user.User
	Formations   []formation.Formation
	WeekStats    []weekstat.WeekStat
	// Skipped names documents that were read but left out, with the reason.
	Skipped []string
}

// Decode parses, migrates and converts an export.
func Decode(data []byte, now time.Time) (Bundle, error) {
	doc, err := Parse(data)
	if err != nil {
		return Bundle{}, err
	}
	if err := Migrate(&doc); err != nil {
		return Bundle{}, err
	}
	return doc.Canonical(now)
}

// Canonical converts a document already at CurrentSchemaVersion. now stamps
// imported formations.
func (d Document) Canonical(now time.Time) (Bundle, error) {
	if d.SchemaVersion != CurrentSchemaVersion {
		return Bundle{}, crerr.Wrapf(ErrUnsupportedVersion, "canonical read needs version %d, got %d", CurrentSchemaVersion, d.SchemaVersion)
	}

	var out Bundle

	for _, id := range sortedIDs(d.Quarterbacks) {
		raw := d.Quarterbacks[id]
		qb := quarterback.Quarterback{
			ID:     id,
			Name:   stringField(raw, "nome"),
			Team:   stringField(raw, "squadra"),
			Status: stringField(raw, "stato"),
		}
		if err := qb.Validate(); err != nil {
			return Bundle{}, crerr.Wrapf(crerr.Mark(err, ErrInvalidDocument), "qbs/%s", id)
		}
		out.Quarterbacks = append(out.Quarterbacks, qb)
	}

	for _, id := range sortedIDs(d.Games) {
		g, skipped, err := canonicalGame(id, d.Games[id])
		if err != nil {
			return Bundle{}, crerr.Wrapf(err, "games/%s", id)
		}
		if skipped != "" {
			out.Skipped = append(out.Skipped, "games/"+id+": "+skipped)
		}
		out.Games = append(out.Games, g)
	}

	for _, id := range sortedIDs(d.Users) {
		raw := d.Users[id]
		u := user.User{
			ID:       id,
			Email:    stringField(raw, "email"),
			Username: stringField(raw, "username"),
			TeamName: stringField(raw, "nomeTeam"),
			IsAdmin:  boolField(raw, "isAdmin"),
		}
		out.Users = append(out.Users, u)

		formations, skipped, err := canonicalFormations(id, raw, now)
		if err != nil {
			return Bundle{}, crerr.Wrapf(err, "users/%s", id)
		}
		out.Formations = append(out.Formations, formations...)
		out.Skipped = append(out.Skipped, skipped...)
	}

	for _, id := range sortedIDs(d.WeekStats) {
		raw := d.WeekStats[id]
		stat := weekstat.WeekStat{
			ID:            id,
			QuarterbackID: stringField(raw, "qb_id"),
			GameID:        stringField(raw, "game_id"),
		}
		if _, ok := raw[fieldScore]; !ok {
			out.Skipped = append(out.Skipped, "weekstats/"+id+": no score")
			continue
		}
		score, err := floatField(raw, fieldScore)
		if err != nil {
			return Bundle{}, crerr.Wrapf(err, "weekstats/%s", id)
		}
		stat.Score = score
		if err := stat.Validate(); err != nil {
			return Bundle{}, crerr.Wrapf(crerr.Mark(err, ErrInvalidDocument), "weekstats/%s", id)
		}
		out.WeekStats = append(out.WeekStats, stat)
	}

	return out, nil
}

// canonicalGame maps the played/calculated flags onto State. An unreadable
// result is dropped and reported, the flags still apply.
func canonicalGame(id string, raw rawDoc) (game.Game, string, error) {
	week, err := intField(raw, fieldWeekNumber)
	if err != nil {
		return game.Game{}, "", err
	}

	g := game.Game{
		ID:       id,
		Week:     week,
		HomeTeam: stringField(raw, "squadraCasa"),
		AwayTeam: stringField(raw, "squadraOspite"),
		State:    game.StateFromFlags(boolField(raw, "partitaGiocata"), boolField(raw, "partitaCalcolata")),
	}

	var skipped string
	if text := stringField(raw, "risultato"); text != "" {
		result, err := game.ParseResult(text)
		if err != nil {
			skipped = "unreadable result " + strconv.Quote(text)
		} else {
			g.Result = &result
		}
	}

	if err := g.Validate(); err != nil {
		return game.Game{}, "", crerr.Mark(err, ErrInvalidDocument)
	}
	return g, skipped, nil
}

// canonicalFormations reads users/{uid}/formations/{week}. Unlocked drafts
// are skipped; every stored formation is locked.
func canonicalFormations(userID string, raw rawDoc, now time.Time) ([]formation.Formation, []string, error) {
	nested, _ := raw[fieldFormations].(map[string]any)
	if len(nested) == 0 {
		return nil, nil, nil
	}

	var (
		out     []formation.Formation
		skipped []string
	)
	for _, key := range sortedIDs(nested) {
		doc, ok := nested[key].(map[string]any)
		if !ok {
			return nil, nil, crerr.Wrapf(ErrInvalidDocument, "formations/%s must be an object", key)
		}
		path := "users/" + userID + "/formations/" + key

		week, err := intField(doc, fieldWeekNumber)
		if err != nil {
			if week, err = strconv.Atoi(strings.TrimSpace(key)); err != nil {
				return nil, nil, crerr.Wrapf(ErrInvalidDocument, "formations/%s has no week", key)
			}
		}
		if !boolField(doc, "locked") {
			skipped = append(skipped, path+": not locked")
			continue
		}
		ids, err := stringsField(doc, "qbIds")
		if err != nil {
			return nil, nil, crerr.Wrapf(err, "formations/%s", key)
		}
		f, err := formation.NewLocked(userID, week, ids, now)
		if err != nil {
			skipped = append(skipped, path+": "+err.Error())
			continue
		}
		out = append(out, f)
	}
	return out, skipped, nil
}
