package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/interfaces"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
)

type notifier struct {
	webhookURL string
}

// New creates a webhook notifier. An empty URL yields a no-op notifier so
// callers never have to branch on configuration.
func New(webhookURL string) interfaces.Notifier {
	if webhookURL == "" {
		return &nullNotifier{}
	}
	return &notifier{webhookURL: webhookURL}
}

func (n *notifier) NotifySuccess(ctx context.Context, plan *model.ReleasePlan) error {
	msg := &slack.WebhookMessage{
		Attachments: []slack.Attachment{
			{
				Color: "good",
				Title: fmt.Sprintf("Release %s completed", plan.TagName),
				Fields: []slack.AttachmentField{
					{Title: "Version", Value: plan.Version.String(), Short: true},
					{Title: "Tag", Value: plan.TagName, Short: true},
					{Title: "Upstream", Value: fmt.Sprintf("%s@%s", plan.Package, plan.UpstreamRaw), Short: true},
					{Title: "Branch", Value: plan.ReleaseBranch, Short: true},
				},
			},
		},
	}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack webhook")
	}
	return nil
}

func (n *notifier) NotifyFailure(ctx context.Context, plan *model.ReleasePlan, failed model.ReleaseState, reason string) error {
	msg := &slack.WebhookMessage{
		Attachments: []slack.Attachment{
			{
				Color: "danger",
				Title: fmt.Sprintf("Release %s failed", plan.TagName),
				Fields: []slack.AttachmentField{
					{Title: "Failed step", Value: string(failed), Short: true},
					{Title: "Version", Value: plan.Version.String(), Short: true},
					{Title: "Restored branch", Value: plan.CurrentBranch, Short: true},
					{Title: "Reason", Value: truncate(reason, 500), Short: false},
				},
			},
		},
	}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack webhook")
	}
	return nil
}

type nullNotifier struct{}

func (n *nullNotifier) NotifySuccess(ctx context.Context, plan *model.ReleasePlan) error {
	return nil
}

func (n *nullNotifier) NotifyFailure(ctx context.Context, plan *model.ReleasePlan, failed model.ReleaseState, reason string) error {
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
