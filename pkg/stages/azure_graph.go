package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/praetorian-inc/blackcat/internal/helpers"
	"github.com/praetorian-inc/blackcat/internal/message"
)

// GraphReport carries the collected objects of a raw Graph query.
type GraphReport struct {
	Path    string            `json:"path"`
	Count   int               `json:"count"`
	Objects []json.RawMessage `json:"objects"`
}

// QueryGraph runs an arbitrary Microsoft Graph GET, following paging, with
// responses served from the MSGraph cache partition when fresh.
func QueryGraph(ctx context.Context, sess *helpers.Session, path string, query map[string]string) (*GraphReport, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasPrefix(path, "/v1.0/") && !strings.HasPrefix(path, "/beta/") {
		return nil, fmt.Errorf("graph path must start with /v1.0/ or /beta/, got %q", path)
	}

	objects, err := helpers.GraphGet(ctx, sess, path, query)
	if err != nil {
		return nil, err
	}

	message.Info("Graph query %s returned %d objects", path, len(objects))

	if objects == nil {
		objects = []json.RawMessage{}
	}
	return &GraphReport{Path: path, Count: len(objects), Objects: objects}, nil
}
