// Package notify posts schedule events to Slack. A nil Notifier is
// valid and drops every message, so callers never branch on whether
// Slack is configured.
package notify

import (
	"fmt"

	"github.com/mnordin/planverk/internal/models"
	"github.com/mnordin/planverk/internal/schedule"
	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Notifier posts messages to a single Slack channel.
type Notifier struct {
	client  slackClient
	channel string
}

// New creates a Notifier, or nil when no token is configured.
func New(token, channel string) *Notifier {
	if token == "" || channel == "" {
		return nil
	}
	return &Notifier{client: slackapi.New(token), channel: channel}
}

// ScheduleGenerated announces a completed generation run.
func (n *Notifier) ScheduleGenerated(metrics models.ScheduleMetrics, skipped []schedule.Diagnostic) error {
	if n == nil {
		return nil
	}
	text := fmt.Sprintf("Schedule regenerated: %d blocks on %d machines, OEE %.1f%%, revenue %.0f SEK",
		metrics.TotalBlocks, metrics.MachinesUsed, metrics.TotalOEE, metrics.EstimatedRevenue)
	if len(skipped) > 0 {
		text += fmt.Sprintf(" (%d demand items skipped)", len(skipped))
	}
	return n.post(text)
}

// ScheduleCleared announces a full schedule wipe.
func (n *Notifier) ScheduleCleared(blocks int64) error {
	if n == nil {
		return nil
	}
	return n.post(fmt.Sprintf("Schedule cleared: %d blocks removed", blocks))
}

func (n *Notifier) post(text string) error {
	_, _, err := n.client.PostMessage(n.channel, slackapi.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("notify: post to %s: %w", n.channel, err)
	}
	return nil
}
