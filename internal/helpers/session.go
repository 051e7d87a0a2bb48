package helpers

import (
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/praetorian-inc/blackcat/internal/config"
	"github.com/praetorian-inc/blackcat/pkg/cache"
)

// Cache partitions, one per upstream API surface.
const (
	CachePartitionGraph   = "MSGraph"
	CachePartitionAzBatch = "AzBatch"
	CachePartitionDNS     = "DNS"
)

// Session carries the shared per-run state: configuration, the response
// cache, credentials, and the HTTP client. It is constructed once at
// command startup and passed explicitly into every module.
type Session struct {
	Config *config.Config
	Cache  *cache.Cache
	Cred   *azidentity.DefaultAzureCredential
	HTTP   *http.Client

	// TenantID pins credential acquisition to one tenant. Empty uses the
	// environment default.
	TenantID string

	// NoCache bypasses cache lookups for this run. Fetched responses are
	// still stored so later runs benefit.
	NoCache bool
}

// NewSession builds a session from config. Credential acquisition is lazy,
// unauthenticated modules (subdomain brute force, public blob probing)
// never need it.
func NewSession(cfg *config.Config) *Session {
	return &Session{
		Config: cfg,
		Cache: cache.New(
			cache.WithDefaultTTL(cfg.CacheTTL()),
			cache.WithMaxSize(cfg.MaxCacheSizeBytes),
			cache.WithCompression(cfg.CompressionEnabled),
		),
		HTTP: &http.Client{Timeout: 30 * time.Second},
	}
}

// Credential returns the session credential, acquiring it on first use.
func (s *Session) Credential() (*azidentity.DefaultAzureCredential, error) {
	if s.Cred != nil {
		return s.Cred, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
		TenantID: s.TenantID,
	})
	if err != nil {
		return nil, err
	}
	s.Cred = cred
	return cred, nil
}
