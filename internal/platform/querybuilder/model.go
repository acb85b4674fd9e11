package querybuilder

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// InsertModel renders an INSERT for the db-tagged exported fields of model.
// conflict is appended verbatim, e.g. "ON CONFLICT DO NOTHING".
func InsertModel(table string, model any, conflict string) (string, []any, error) {
	cols, vals, err := columnsOf(model)
	if err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}

	var buf strings.Builder
	buf.WriteString("INSERT INTO ")
	buf.WriteString(table)
	buf.WriteString(" (")
	buf.WriteString(strings.Join(cols, ", "))
	buf.WriteString(") VALUES (")

	args := make([]any, 0, len(vals))
	n := 1
	for i, v := range vals {
		if i > 0 {
			buf.WriteString(", ")
		}
		bind(&buf, &args, &n, v)
	}
	buf.WriteString(")")
	if conflict = strings.TrimSpace(conflict); conflict != "" {
		buf.WriteString(" ")
		buf.WriteString(conflict)
	}
	return buf.String(), args, nil
}

// UpsertModel renders an INSERT that overwrites every non-key column when a
// row with the same key already exists.
func UpsertModel(table string, model any, key ...string) (string, []any, error) {
	return UpsertModelWhere(table, model, "", key...)
}

// UpsertModelWhere is UpsertModel with a condition on the conflicting row.
// When guard is false the existing row is kept and no row is reported as
// affected. guard may refer to the stored row by table name and to the
// proposed one as EXCLUDED.
func UpsertModelWhere(table string, model any, guard string, key ...string) (string, []any, error) {
	if len(key) == 0 {
		return "", nil, fmt.Errorf("upsert key columns are required")
	}
	cols, _, err := columnsOf(model)
	if err != nil {
		return "", nil, err
	}

	updates := make([]string, 0, len(cols))
	for _, col := range cols {
		if slices.Contains(key, col) {
			continue
		}
		updates = append(updates, col+" = EXCLUDED."+col)
	}

	conflict := "ON CONFLICT (" + strings.Join(key, ", ") + ") DO NOTHING"
	if len(updates) > 0 {
		conflict = "ON CONFLICT (" + strings.Join(key, ", ") + ") DO UPDATE SET " + strings.Join(updates, ", ")
		if guard = strings.TrimSpace(guard); guard != "" {
			conflict += " WHERE " + guard
		}
	}
	return InsertModel(table, model, conflict)
}

func columnsOf(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model %s has no db columns", typ.Name())
	}
	return cols, vals, nil
}
