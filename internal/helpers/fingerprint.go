package helpers

import "github.com/praetorian-inc/blackcat/pkg/cache"

// BatchFingerprint keys an ARM batch operation by operation name and
// subscription so repeated runs within a session reuse the response.
func BatchFingerprint(operation, subscription string) string {
	return cache.Fingerprint(operation, map[string]string{
		"subscription": subscription,
	})
}
