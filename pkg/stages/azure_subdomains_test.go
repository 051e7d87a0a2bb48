package stages

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectSuffixesDefaultsToAllServices(t *testing.T) {
	suffixes, err := selectSuffixes(nil)
	require.NoError(t, err)
	assert.Len(t, suffixes, len(AzureServiceSuffixes))
}

func TestSelectSuffixesSubset(t *testing.T) {
	suffixes, err := selectSuffixes([]string{"storage-blob", "key-vault"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"storage-blob": "blob.core.windows.net",
		"key-vault":    "vault.azure.net",
	}, suffixes)
}

func TestSelectSuffixesUnknownService(t *testing.T) {
	_, err := selectSuffixes([]string{"storage-blob", "mainframe"})
	assert.ErrorContains(t, err, "mainframe")
}

func TestSubdomainScanFingerprint(t *testing.T) {
	suffixes, err := selectSuffixes([]string{"storage-blob", "key-vault"})
	require.NoError(t, err)

	a := subdomainScanFingerprint([]string{"acme", "dev"}, suffixes)
	b := subdomainScanFingerprint([]string{"acme", "dev"}, suffixes)
	assert.Equal(t, a, b, "same scan must map to the same key")

	c := subdomainScanFingerprint([]string{"acme"}, suffixes)
	assert.NotEqual(t, a, c, "different wordlist must map to a different key")
}

func TestIsNotFound(t *testing.T) {
	notFound := &net.DNSError{Err: "no such host", Name: "x", IsNotFound: true}

	assert.True(t, isNotFound(notFound))
	assert.True(t, isNotFound(fmt.Errorf("lookup: %w", notFound)))
	assert.False(t, isNotFound(&net.DNSError{Err: "timeout", Name: "x", IsTimeout: true}))
	assert.False(t, isNotFound(fmt.Errorf("plain error")))
}
