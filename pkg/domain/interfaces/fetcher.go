package interfaces

import (
	"context"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
)

// AssetFetcher downloads and extracts the upstream static bundle into the
// project's static directory.
type AssetFetcher interface {
	// Fetch retrieves the given upstream version, or the latest published
	// version when version is empty.
	Fetch(ctx context.Context, version string) (*model.FetchResult, error)
}
