package stages

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/praetorian-inc/blackcat/internal/helpers"
	"github.com/praetorian-inc/blackcat/internal/message"
	"github.com/praetorian-inc/blackcat/pkg/pool"
)

// blobList is the subset of the Azure Blob REST EnumerationResults
// document we care about.
type blobList struct {
	XMLName xml.Name `xml:"EnumerationResults"`
	Blobs   struct {
		Blob []struct {
			Name string `xml:"Name"`
		} `xml:"Blob"`
	} `xml:"Blobs"`
}

// PublicContainer is a storage container listable without authentication.
type PublicContainer struct {
	Account   string   `json:"account"`
	Container string   `json:"container"`
	URL       string   `json:"url"`
	BlobCount int      `json:"blobCount"`
	Blobs     []string `json:"blobs"`
}

// BlobScan configures a public-container probe run.
type BlobScan struct {
	// Accounts are the storage account names to probe.
	Accounts []string

	// Containers are the candidate container names.
	Containers []string

	// Throttle bounds concurrent HTTP probes.
	Throttle int
}

// BlobReport is the module output.
type BlobReport struct {
	Containers []PublicContainer `json:"containers"`
	Summary    pool.Summary      `json:"summary"`
}

type blobCandidate struct {
	account   string
	container string
}

// DiscoverPublicBlobs probes candidate containers on each storage account
// over anonymous HTTPS. A 200 with a blob listing means the container
// allows public enumeration; 404 and 403 are normal misses. Only transport
// errors count as failed units.
func DiscoverPublicBlobs(ctx context.Context, sess *helpers.Session, scan BlobScan) (*BlobReport, error) {
	if len(scan.Accounts) == 0 {
		return nil, fmt.Errorf("no storage accounts to probe")
	}

	candidates := make([]blobCandidate, 0, len(scan.Accounts)*len(scan.Containers))
	for _, account := range scan.Accounts {
		for _, container := range scan.Containers {
			candidates = append(candidates, blobCandidate{account: account, container: container})
		}
	}

	throttle := scan.Throttle
	if throttle <= 0 {
		throttle = sess.Config.ThrottleLimit
	}

	message.Info("Probing %d containers across %d storage accounts (throttle %d)",
		len(scan.Containers), len(scan.Accounts), throttle)

	outcomes, summary := pool.Run(ctx, candidates, throttle,
		func(ctx context.Context, c blobCandidate) (*PublicContainer, error) {
			return probeContainer(ctx, sess.HTTP, c)
		})

	report := &BlobReport{Containers: []PublicContainer{}, Summary: summary}
	for _, found := range pool.Successes(outcomes) {
		if found != nil {
			report.Containers = append(report.Containers, *found)
		}
	}
	sort.Slice(report.Containers, func(i, j int) bool {
		if report.Containers[i].Account != report.Containers[j].Account {
			return report.Containers[i].Account < report.Containers[j].Account
		}
		return report.Containers[i].Container < report.Containers[j].Container
	})

	return report, nil
}

func probeContainer(ctx context.Context, client *http.Client, c blobCandidate) (*PublicContainer, error) {
	probeURL := fmt.Sprintf("https://%s.blob.core.windows.net/%s?restype=container&comp=list",
		c.account, c.container)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe %s/%s: %w", c.account, c.container, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Private or nonexistent container, a normal miss.
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read listing for %s/%s: %w", c.account, c.container, err)
	}

	var listing blobList
	if err := xml.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("parse listing for %s/%s: %w", c.account, c.container, err)
	}

	found := &PublicContainer{
		Account:   c.account,
		Container: c.container,
		URL:       fmt.Sprintf("https://%s.blob.core.windows.net/%s", c.account, c.container),
		Blobs:     []string{},
	}
	for _, blob := range listing.Blobs.Blob {
		found.Blobs = append(found.Blobs, blob.Name)
	}
	found.BlobCount = len(found.Blobs)

	return found, nil
}
