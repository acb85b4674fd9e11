package postgres

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// DSN is a connection string in either URL form (postgres://...) or lib/pq
// keyword/value form (host=... dbname=...).
type DSN struct {
	raw    string
	url    *url.URL
	params map[string]string
}

func ParseDSN(raw string) DSN {
	raw = strings.TrimSpace(raw)
	d := DSN{raw: raw, params: make(map[string]string)}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		d.url = u
		for key, values := range u.Query() {
			if len(values) > 0 {
				d.params[key] = values[0]
			}
		}
		return d
	}
	for _, field := range strings.Fields(raw) {
		key, value, ok := strings.Cut(field, "=")
		if ok {
			d.params[key] = strings.Trim(value, `"'`)
		}
	}
	return d
}

// WithDefault sets key unless the connection string already carries it.
func (d DSN) WithDefault(key, value string) DSN {
	if _, ok := d.params[key]; ok {
		return d
	}
	params := make(map[string]string, len(d.params)+1)
	for k, v := range d.params {
		params[k] = v
	}
	params[key] = value

	if d.url == nil {
		return DSN{raw: strings.TrimSpace(d.raw + " " + key + "=" + value), params: params}
	}
	u := *d.url
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return DSN{raw: u.String(), url: &u, params: params}
}

// Database is the target database name, empty when the string names none.
func (d DSN) Database() string {
	if d.url != nil {
		return strings.TrimPrefix(d.url.Path, "/")
	}
	return d.params["dbname"]
}

func (d DSN) String() string { return d.raw }

// PgBouncer in transaction mode cannot keep binary prepared results between
// statements.
const paramDisableBinary = "disable_prepared_binary_result"

// ForPooler turns off binary prepared results unless the string sets it.
func (d DSN) ForPooler() DSN {
	return d.WithDefault(paramDisableBinary, "yes")
}

const maxTracedStatement = 512

// TraceStatement flattens a statement to one line for span attributes and
// truncates it on a rune boundary.
func TraceStatement(query string) string {
	flat := strings.Join(strings.Fields(query), " ")
	if len(flat) <= maxTracedStatement {
		return flat
	}
	cut := maxTracedStatement
	for cut > 0 && !utf8.RuneStart(flat[cut]) {
		cut--
	}
	return flat[:cut] + "..."
}
