package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"wifiwatch/internal/config"
	ntpl "wifiwatch/internal/notify/template"
	"wifiwatch/internal/types"
)

// SlackNotifier represents Slack notifier
type SlackNotifier struct {
	config    *config.SlackConfig
	logger    *zap.Logger
	client    *http.Client
	tplLoader *ntpl.Loader
}

// SlackMessage represents Slack message
type SlackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SlackAttachment represents Slack attachment
type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields,omitempty"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

// SlackField represents Slack field
type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// NewSlackNotifier creates new SlackNotifier
func NewSlackNotifier(cfg *config.SlackConfig, loader *ntpl.Loader, logger *zap.Logger) (*SlackNotifier, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("slack webhook URL is required")
	}

	return &SlackNotifier{
		config:    cfg,
		logger:    logger,
		client:    newHTTPClient(10 * time.Second),
		tplLoader: loader,
	}, nil
}

// NotifyDeviceIncrease sends a device increase notification
func (n *SlackNotifier) NotifyDeviceIncrease(ctx context.Context, event *types.DeviceEvent) error {
	data := ntpl.NewData(event)
	text, err := n.tplLoader.Render(ntpl.Slack, ntpl.DeviceIncrease, data)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	msg := SlackMessage{
		Channel:   n.config.Channel,
		Username:  n.config.Username,
		IconEmoji: n.config.IconEmoji,
		Attachments: []SlackAttachment{{
			Color: "danger",
			Title: data.Title,
			Text:  text,
			Fields: []SlackField{
				{Title: "Previous", Value: strconv.Itoa(event.PreviousCount), Short: true},
				{Title: "Current", Value: strconv.Itoa(event.CurrentCount), Short: true},
				{Title: "Subnet", Value: event.Subnet.String(), Short: true},
				{Title: "Interface", Value: event.Interface.Name, Short: true},
			},
			Footer:    "wifiwatch " + event.Hostname,
			Timestamp: event.DetectedAt.Unix(),
		}},
	}

	_, err = postJSON(ctx, n.client, n.logger, "slack", n.config.WebhookURL, msg)
	return err
}

// Health checks the health of the notifier
func (n *SlackNotifier) Health(_ context.Context) error {
	if n.config.WebhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}
	return nil
}
