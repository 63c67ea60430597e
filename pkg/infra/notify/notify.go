package notify

import (
	"context"

	"github.com/hy-sato/picket/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// SlackNotifier posts operational messages to a Slack incoming webhook.
// Delivery is fire-and-forget: the caller never waits and never sees a
// delivery failure, which is logged by the async dispatcher instead.
type SlackNotifier struct {
	webhookURL string
}

// NewSlack creates a notifier for the given incoming webhook URL
func NewSlack(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

// Notify posts msg asynchronously
func (n *SlackNotifier) Notify(ctx context.Context, msg string) {
	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := slack.PostWebhookContext(ctx, n.webhookURL, &slack.WebhookMessage{
			Text: msg,
		}); err != nil {
			return goerr.Wrap(err, "failed to post notification")
		}
		return nil
	})
}

// Discard is a no-op notifier for deployments without a webhook configured
type Discard struct{}

// Notify does nothing
func (Discard) Notify(context.Context, string) {}
