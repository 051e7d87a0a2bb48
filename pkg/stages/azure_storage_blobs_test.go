package stages

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/praetorian-inc/blackcat/internal/config"
	"github.com/praetorian-inc/blackcat/internal/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleListing = `<?xml version="1.0" encoding="utf-8"?>
<EnumerationResults ServiceEndpoint="https://acct.blob.core.windows.net/" ContainerName="backups">
  <Blobs>
    <Blob><Name>db-dump.sql</Name></Blob>
    <Blob><Name>secrets/.env</Name></Blob>
  </Blobs>
  <NextMarker />
</EnumerationResults>`

// roundTripFunc stubs the HTTP transport so probes never leave the test.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func fakeClient(fn roundTripFunc) *http.Client {
	return &http.Client{Transport: fn}
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestProbeContainerParsesPublicListing(t *testing.T) {
	client := fakeClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "acct.blob.core.windows.net", req.URL.Host)
		assert.Equal(t, "container", req.URL.Query().Get("restype"))
		assert.Equal(t, "list", req.URL.Query().Get("comp"))
		return response(http.StatusOK, sampleListing), nil
	})

	found, err := probeContainer(context.Background(), client, blobCandidate{account: "acct", container: "backups"})
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, "acct", found.Account)
	assert.Equal(t, "backups", found.Container)
	assert.Equal(t, "https://acct.blob.core.windows.net/backups", found.URL)
	assert.Equal(t, 2, found.BlobCount)
	assert.Equal(t, []string{"db-dump.sql", "secrets/.env"}, found.Blobs)
}

func TestProbeContainerTreatsNon200AsMiss(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusForbidden} {
		client := fakeClient(func(req *http.Request) (*http.Response, error) {
			return response(status, "denied"), nil
		})

		found, err := probeContainer(context.Background(), client, blobCandidate{account: "acct", container: "private"})
		assert.NoError(t, err)
		assert.Nil(t, found)
	}
}

func TestProbeContainerRejectsMalformedListing(t *testing.T) {
	client := fakeClient(func(req *http.Request) (*http.Response, error) {
		return response(http.StatusOK, "not xml at all <"), nil
	})

	_, err := probeContainer(context.Background(), client, blobCandidate{account: "acct", container: "c"})
	assert.ErrorContains(t, err, "parse listing")
}

func TestDiscoverPublicBlobs(t *testing.T) {
	sess := &helpers.Session{
		Config: config.Default(),
		HTTP: fakeClient(func(req *http.Request) (*http.Response, error) {
			if req.URL.Host == "open.blob.core.windows.net" && req.URL.Path == "/backups" {
				return response(http.StatusOK, sampleListing), nil
			}
			return response(http.StatusNotFound, ""), nil
		}),
	}

	report, err := DiscoverPublicBlobs(context.Background(), sess, BlobScan{
		Accounts:   []string{"open", "closed"},
		Containers: []string{"backups", "logs"},
		Throttle:   4,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Summary.Attempted)
	assert.Equal(t, 4, report.Summary.Succeeded)
	require.Len(t, report.Containers, 1)
	assert.Equal(t, "open", report.Containers[0].Account)
	assert.Equal(t, "backups", report.Containers[0].Container)
}

func TestDiscoverPublicBlobsRequiresAccounts(t *testing.T) {
	sess := &helpers.Session{Config: config.Default(), HTTP: http.DefaultClient}

	_, err := DiscoverPublicBlobs(context.Background(), sess, BlobScan{Containers: []string{"c"}})
	assert.ErrorContains(t, err, "no storage accounts")
}
