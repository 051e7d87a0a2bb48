package stages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strings"

	"github.com/praetorian-inc/blackcat/internal/helpers"
	"github.com/praetorian-inc/blackcat/internal/message"
	"github.com/praetorian-inc/blackcat/pkg/cache"
	"github.com/praetorian-inc/blackcat/pkg/pool"
)

// AzureServiceSuffixes maps service labels to the DNS zones Azure hands
// out for tenant-chosen names. A resolving name under any of these zones
// is an existing customer resource.
var AzureServiceSuffixes = map[string]string{
	"storage-blob":  "blob.core.windows.net",
	"storage-file":  "file.core.windows.net",
	"storage-queue": "queue.core.windows.net",
	"storage-table": "table.core.windows.net",
	"app-service":   "azurewebsites.net",
	"app-scm":       "scm.azurewebsites.net",
	"key-vault":     "vault.azure.net",
	"cosmos-db":     "documents.azure.com",
	"sql-server":    "database.windows.net",
	"service-bus":   "servicebus.windows.net",
	"redis":         "redis.cache.windows.net",
	"container-reg": "azurecr.io",
	"cdn":           "azureedge.net",
	"api-mgmt":      "azure-api.net",
}

// SubdomainHit is a brute-forced name that resolved.
type SubdomainHit struct {
	Hostname  string   `json:"hostname"`
	Service   string   `json:"service"`
	Addresses []string `json:"addresses"`
}

// SubdomainScan configures a brute-force run.
type SubdomainScan struct {
	// Words are the candidate base names.
	Words []string

	// Services limits the scan to the named service labels. Empty scans
	// every known suffix.
	Services []string

	// Throttle bounds concurrent DNS lookups.
	Throttle int
}

// SubdomainReport is the module output.
type SubdomainReport struct {
	Hits    []SubdomainHit `json:"hits"`
	Summary pool.Summary   `json:"summary"`
}

type subdomainCandidate struct {
	hostname string
	service  string
}

// EnumerateSubdomains crosses the wordlist with the Azure service suffixes
// and resolves every candidate through a bounded worker pool. A candidate
// that does not resolve is a normal miss, not a failure; only resolver
// transport errors count as failed units.
func EnumerateSubdomains(ctx context.Context, sess *helpers.Session, scan SubdomainScan) (*SubdomainReport, error) {
	suffixes, err := selectSuffixes(scan.Services)
	if err != nil {
		return nil, err
	}

	key := subdomainScanFingerprint(scan.Words, suffixes)
	if !sess.NoCache {
		var cached []SubdomainHit
		if sess.Cache.GetInto(helpers.CachePartitionDNS, key, &cached) {
			slog.Debug("Subdomain scan cache hit", slog.Int("hits", len(cached)))
			message.Info("Serving %d hits from the DNS cache", len(cached))
			return &SubdomainReport{Hits: cached, Summary: pool.Summary{}}, nil
		}
	}

	candidates := make([]subdomainCandidate, 0, len(scan.Words)*len(suffixes))
	for _, word := range scan.Words {
		for service, suffix := range suffixes {
			candidates = append(candidates, subdomainCandidate{
				hostname: fmt.Sprintf("%s.%s", word, suffix),
				service:  service,
			})
		}
	}

	throttle := scan.Throttle
	if throttle <= 0 {
		throttle = sess.Config.ThrottleLimit
	}

	message.Info("Resolving %d candidates across %d Azure services (throttle %d)",
		len(candidates), len(suffixes), throttle)

	resolver := &net.Resolver{}
	outcomes, summary := pool.Run(ctx, candidates, throttle,
		func(ctx context.Context, c subdomainCandidate) (*SubdomainHit, error) {
			addrs, err := resolver.LookupHost(ctx, c.hostname)
			if err != nil {
				if isNotFound(err) {
					return nil, nil
				}
				return nil, fmt.Errorf("lookup %s: %w", c.hostname, err)
			}
			return &SubdomainHit{Hostname: c.hostname, Service: c.service, Addresses: addrs}, nil
		})

	report := &SubdomainReport{Hits: []SubdomainHit{}, Summary: summary}
	for _, hit := range pool.Successes(outcomes) {
		if hit != nil {
			report.Hits = append(report.Hits, *hit)
		}
	}
	sort.Slice(report.Hits, func(i, j int) bool {
		return report.Hits[i].Hostname < report.Hits[j].Hostname
	})

	if summary.Failed == 0 {
		if err := sess.Cache.Set(helpers.CachePartitionDNS, key, report.Hits); err != nil {
			slog.Debug("Subdomain scan cache store skipped", slog.String("reason", err.Error()))
		}
	}

	return report, nil
}

// subdomainScanFingerprint keys a scan by its full input, so a repeated run
// with the same wordlist and services is served from the DNS partition.
func subdomainScanFingerprint(words []string, suffixes map[string]string) string {
	services := make([]string, 0, len(suffixes))
	for service := range suffixes {
		services = append(services, service)
	}
	sort.Strings(services)

	return cache.Fingerprint("subdomains", map[string]string{
		"words":    strings.Join(words, ","),
		"services": strings.Join(services, ","),
	})
}

func isNotFound(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}

func selectSuffixes(services []string) (map[string]string, error) {
	if len(services) == 0 {
		return AzureServiceSuffixes, nil
	}

	selected := make(map[string]string, len(services))
	for _, service := range services {
		suffix, ok := AzureServiceSuffixes[service]
		if !ok {
			return nil, fmt.Errorf("unknown Azure service %q", service)
		}
		selected[service] = suffix
	}
	return selected, nil
}
