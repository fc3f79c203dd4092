package interfaces

import (
	"context"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
)

// Notifier reports release outcomes to an external channel. It is only
// called once a release plan exists; delivery failures are logged by the
// caller, never fatal.
type Notifier interface {
	NotifySuccess(ctx context.Context, plan *model.ReleasePlan) error
	NotifyFailure(ctx context.Context, plan *model.ReleasePlan, failed model.ReleaseState, reason string) error
}
