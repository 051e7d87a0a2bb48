package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintIsOrderInsensitive(t *testing.T) {
	a := Fingerprint("v1.0/users", map[string]string{"$filter": "x", "$select": "id"})
	b := Fingerprint("v1.0/users", map[string]string{"$select": "id", "$filter": "x"})

	assert.Equal(t, a, b)
}

func TestFingerprintDistinguishesRequests(t *testing.T) {
	base := Fingerprint("v1.0/users", map[string]string{"$filter": "x"})

	tests := []struct {
		name     string
		endpoint string
		params   map[string]string
	}{
		{name: "different endpoint", endpoint: "v1.0/groups", params: map[string]string{"$filter": "x"}},
		{name: "different value", endpoint: "v1.0/users", params: map[string]string{"$filter": "y"}},
		{name: "extra param", endpoint: "v1.0/users", params: map[string]string{"$filter": "x", "$top": "5"}},
		{name: "no params", endpoint: "v1.0/users", params: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, Fingerprint(tt.endpoint, tt.params))
		})
	}
}

func TestFingerprintNormalizesLeadingSlash(t *testing.T) {
	assert.Equal(t,
		Fingerprint("/v1.0/users", nil),
		Fingerprint("v1.0/users", nil))
}

func TestFingerprintShape(t *testing.T) {
	key := Fingerprint("v1.0/users", nil)
	assert.Len(t, key, 64)
	assert.Regexp(t, "^[0-9a-f]+$", key)
}
