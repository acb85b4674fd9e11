// Package docimport loads exported league documents into the canonical
// entities. Legacy exports are upgraded by versioned migrations before any
// field is read, so nothing past this package sees the historical shapes.
package docimport

import (
	"math"
	"sort"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// CurrentSchemaVersion is the export layout the canonical reader accepts.
const CurrentSchemaVersion = 1

const (
	fieldScore      = "punteggioQB"
	fieldWeekNumber = "weekNumber"
	fieldFormations = "formations"
)

// scoreAliases are the names version 0 exports used for a weekstat score,
// in lookup priority.
var scoreAliases = []string{fieldScore, "punteggio", "score", "points"}

var (
	ErrUnsupportedVersion = crerr.New("unsupported schema version")
	ErrInvalidDocument    = crerr.New("invalid document")
)

type rawDoc = map[string]any

type rawCollection map[string]rawDoc

// Document is a full export: one map per collection keyed by document id.
// Formations are nested under each user at formations/{week}.
type Document struct {
	SchemaVersion int           `json:"schemaVersion"`
	Quarterbacks  rawCollection `json:"qbs"`
	Games         rawCollection `json:"games"`
	Users         rawCollection `json:"users"`
	WeekStats     rawCollection `json:"weekstats"`
}

func Parse(data []byte) (Document, error) {
	var doc Document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return Document{}, crerr.WithHint(
			crerr.Wrap(err, "decode export document"),
			"an export is one JSON object holding qbs, games, users and weekstats maps",
		)
	}
	return doc, nil
}

type migration func(doc *Document) error

var migrations = map[int]migration{
	0: migrateV0,
}

// Migrate upgrades doc in place to CurrentSchemaVersion.
func Migrate(doc *Document) error {
	if doc.SchemaVersion < 0 || doc.SchemaVersion > CurrentSchemaVersion {
		return crerr.WithHint(
			crerr.Wrapf(ErrUnsupportedVersion, "schema version %d", doc.SchemaVersion),
			"this build reads schema versions 0 through "+strconv.Itoa(CurrentSchemaVersion),
		)
	}
	for doc.SchemaVersion < CurrentSchemaVersion {
		step, ok := migrations[doc.SchemaVersion]
		if !ok {
			return crerr.Newf("no migration from schema version %d", doc.SchemaVersion)
		}
		if err := step(doc); err != nil {
			return crerr.Wrapf(err, "migrate schema version %d", doc.SchemaVersion)
		}
		doc.SchemaVersion++
	}
	return nil
}

// migrateV0 collapses score aliases into punteggioQB and turns numeric
// strings into numbers.
func migrateV0(doc *Document) error {
	for _, id := range sortedIDs(doc.WeekStats) {
		stat := doc.WeekStats[id]
		score, found, err := firstScore(stat)
		if err != nil {
			return crerr.Wrapf(err, "weekstat %s", id)
		}
		for _, alias := range scoreAliases {
			delete(stat, alias)
		}
		if found {
			stat[fieldScore] = score
		}
	}

	for _, id := range sortedIDs(doc.Games) {
		if err := coerceNumber(doc.Games[id], fieldWeekNumber); err != nil {
			return crerr.Wrapf(err, "game %s", id)
		}
	}

	for _, id := range sortedIDs(doc.Users) {
		formations, _ := doc.Users[id][fieldFormations].(map[string]any)
		for week, raw := range formations {
			f, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if err := coerceNumber(f, fieldWeekNumber); err != nil {
				return crerr.Wrapf(err, "user %s formation %s", id, week)
			}
		}
	}
	return nil
}

func firstScore(stat rawDoc) (float64, bool, error) {
	for _, alias := range scoreAliases {
		value, ok := stat[alias]
		if !ok || value == nil {
			continue
		}
		score, err := toFloat(value)
		if err != nil {
			return 0, false, crerr.Wrapf(err, "field %s", alias)
		}
		return score, true, nil
	}
	return 0, false, nil
}

func coerceNumber(doc rawDoc, field string) error {
	value, ok := doc[field]
	if !ok || value == nil {
		return nil
	}
	n, err := toFloat(value)
	if err != nil {
		return crerr.Wrapf(err, "field %s", field)
	}
	doc[field] = n
	return nil
}

func toFloat(value any) (float64, error) {
	switch typed := value.(type) {
	case float64:
		return typed, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, crerr.Newf("%q is not a number", typed)
		}
		return parsed, nil
	default:
		return 0, crerr.Newf("unexpected %T where a number belongs", value)
	}
}

func sortedIDs[T any](items map[string]T) []string {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// canonical readers; these only run after Migrate.

func stringField(doc rawDoc, field string) string {
	value, _ := doc[field].(string)
	return strings.TrimSpace(value)
}

func boolField(doc rawDoc, field string) bool {
	value, _ := doc[field].(bool)
	return value
}

func intField(doc rawDoc, field string) (int, error) {
	value, ok := doc[field].(float64)
	if !ok {
		return 0, crerr.Wrapf(ErrInvalidDocument, "field %s must be a number", field)
	}
	if value != math.Trunc(value) {
		return 0, crerr.Wrapf(ErrInvalidDocument, "field %s must be an integer, got %v", field, value)
	}
	return int(value), nil
}

func floatField(doc rawDoc, field string) (float64, error) {
	value, ok := doc[field].(float64)
	if !ok {
		return 0, crerr.Wrapf(ErrInvalidDocument, "field %s must be a number", field)
	}
	return value, nil
}

func stringsField(doc rawDoc, field string) ([]string, error) {
	raw, ok := doc[field].([]any)
	if !ok {
		return nil, crerr.Wrapf(ErrInvalidDocument, "field %s must be an array", field)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, crerr.Wrapf(ErrInvalidDocument, "field %s must hold strings", field)
		}
		out = append(out, s)
	}
	return out, nil
}
