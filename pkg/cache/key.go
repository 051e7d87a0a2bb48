package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint derives a deterministic cache key from an endpoint and its
// request parameters. Parameters are sorted by name so that semantically
// equivalent requests always map to the same key.
func Fingerprint(endpoint string, params map[string]string) string {
	var b strings.Builder
	b.WriteString(strings.Trim(endpoint, "/"))

	if len(params) > 0 {
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Fprintf(&b, ":%s=%s", name, params[name])
		}
	}

	hash := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(hash[:])
}
