package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldTraceRequest(t *testing.T) {
	cases := map[string]bool{
		"/healthz":                                false,
		" /HEALTHZ ":                              false,
		"/readyz":                                 false,
		"/metrics":                                false,
		"/v1/stream/rankings/league":              false,
		"/v1/stream/users/demo-user/formations/1": false,
		"/v1/rankings/league":                     true,
		"/v1/formations/me/1":                     true,
		"/docs":                                   true,
		"/":                                       true,
	}
	for path, want := range cases {
		assert.Equal(t, want, shouldTraceRequest(path), path)
	}
}
