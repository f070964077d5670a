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

// discordColorAlert is the embed colour for device alerts (red)
const discordColorAlert = 0xE74C3C

// DiscordNotifier represents Discord notifier
type DiscordNotifier struct {
	config    *config.DiscordConfig
	logger    *zap.Logger
	client    *http.Client
	tplLoader *ntpl.Loader
}

// DiscordMessage represents Discord message
type DiscordMessage struct {
	Username  string         `json:"username,omitempty"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Content   string         `json:"content,omitempty"`
	Embeds    []DiscordEmbed `json:"embeds,omitempty"`
}

// DiscordEmbed represents Discord embed
type DiscordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []DiscordField `json:"fields"`
	Footer      DiscordFooter  `json:"footer"`
	Timestamp   string         `json:"timestamp"`
}

// DiscordFooter represents Discord embed footer
type DiscordFooter struct {
	Text string `json:"text"`
}

// DiscordField represents Discord field
type DiscordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// NewDiscordNotifier creates new Discord notifier
func NewDiscordNotifier(cfg *config.DiscordConfig, loader *ntpl.Loader, logger *zap.Logger) (*DiscordNotifier, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("discord webhook URL is required")
	}

	return &DiscordNotifier{
		config:    cfg,
		logger:    logger,
		client:    newHTTPClient(10 * time.Second),
		tplLoader: loader,
	}, nil
}

// NotifyDeviceIncrease sends a device increase notification
func (n *DiscordNotifier) NotifyDeviceIncrease(ctx context.Context, event *types.DeviceEvent) error {
	data := ntpl.NewData(event)
	description, err := n.tplLoader.Render(ntpl.Discord, ntpl.DeviceIncrease, data)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	msg := DiscordMessage{
		Username:  n.config.Username,
		AvatarURL: n.config.AvatarURL,
		Embeds: []DiscordEmbed{{
			Title:       data.Title,
			Description: description,
			Color:       discordColorAlert,
			Fields: []DiscordField{
				{Name: "Previous", Value: strconv.Itoa(event.PreviousCount), Inline: true},
				{Name: "Current", Value: strconv.Itoa(event.CurrentCount), Inline: true},
				{Name: "Without gateway", Value: strconv.Itoa(event.CountWithoutGateway), Inline: true},
			},
			Footer:    DiscordFooter{Text: "wifiwatch " + event.Hostname},
			Timestamp: event.DetectedAt.Format(time.RFC3339),
		}},
	}

	_, err = postJSON(ctx, n.client, n.logger, "discord", n.config.WebhookURL, msg)
	return err
}

// Health checks the health of the notifier
func (n *DiscordNotifier) Health(_ context.Context) error {
	if n.config.WebhookURL == "" {
		return fmt.Errorf("discord webhook URL is not configured")
	}
	return nil
}
