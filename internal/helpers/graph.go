package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/praetorian-inc/blackcat/pkg/cache"
)

const graphBaseURL = "https://graph.microsoft.com"

var graphScopes = []string{"https://graph.microsoft.com/.default"}

// graphPage is the Graph collection envelope.
type graphPage struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
}

// GraphGet performs an authenticated Microsoft Graph GET with paging,
// collecting every page's value array. Responses are cached in the MSGraph
// partition keyed by the request fingerprint; the cache is consulted before
// any network call and populated after.
func GraphGet(ctx context.Context, sess *Session, path string, query map[string]string) ([]json.RawMessage, error) {
	key := cache.Fingerprint(path, query)

	if !sess.NoCache {
		var cached []json.RawMessage
		if sess.Cache.GetInto(CachePartitionGraph, key, &cached) {
			slog.Debug("Graph cache hit", slog.String("path", path))
			return cached, nil
		}
	}

	cred, err := sess.Credential()
	if err != nil {
		return nil, fmt.Errorf("failed to get Azure credentials: %w", err)
	}

	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: graphScopes})
	if err != nil {
		return nil, fmt.Errorf("failed to get Graph token: %w", err)
	}

	requestURL := graphBaseURL + path
	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			values.Set(k, v)
		}
		requestURL += "?" + values.Encode()
	}

	var results []json.RawMessage
	for requestURL != "" {
		page, err := graphGetPage(ctx, sess.HTTP, token.Token, requestURL)
		if err != nil {
			return nil, err
		}
		results = append(results, page.Value...)
		requestURL = page.NextLink
	}

	if err := sess.Cache.Set(CachePartitionGraph, key, results); err != nil {
		// A full or oversized cache never fails the request.
		slog.Debug("Graph cache store skipped", slog.String("path", path), slog.String("reason", err.Error()))
	}

	return results, nil
}

func graphGetPage(ctx context.Context, client *http.Client, token, requestURL string) (*graphPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Graph request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Graph response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Graph returned %d for %s: %s", resp.StatusCode, requestURL, truncate(string(body), 200))
	}

	var page graphPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode Graph response: %w", err)
	}
	return &page, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
