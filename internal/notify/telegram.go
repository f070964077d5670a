package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"wifiwatch/internal/config"
	ntpl "wifiwatch/internal/notify/template"
	"wifiwatch/internal/retry"
	"wifiwatch/internal/types"
)

const defaultTelegramAPIURL = "https://api.telegram.org"

// TelegramNotifier represents Telegram notifier
type TelegramNotifier struct {
	config    *config.TelegramConfig
	logger    *zap.Logger
	client    *http.Client
	tplLoader *ntpl.Loader
	apiURL    string
}

// TelegramMessage represents Telegram message
type TelegramMessage struct {
	ChatID              string `json:"chat_id"`
	Text                string `json:"text"`
	ParseMode           string `json:"parse_mode,omitempty"`
	DisableNotification bool   `json:"disable_notification,omitempty"`
}

// NewTelegramNotifier creates new Telegram notifier
func NewTelegramNotifier(cfg *config.TelegramConfig, loader *ntpl.Loader, logger *zap.Logger) (*TelegramNotifier, error) {
	if cfg.BotToken == "" || len(cfg.ChatIDs) == 0 {
		return nil, fmt.Errorf("telegram bot token and chat IDs are required")
	}

	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultTelegramAPIURL
	}

	return &TelegramNotifier{
		config:    cfg,
		logger:    logger,
		client:    newHTTPClient(10 * time.Second),
		tplLoader: loader,
		apiURL:    apiURL,
	}, nil
}

// NotifyDeviceIncrease sends a device increase notification to every chat
func (n *TelegramNotifier) NotifyDeviceIncrease(ctx context.Context, event *types.DeviceEvent) error {
	tplType, parseMode := ntpl.Telegram, "HTML"
	if f := strings.ToLower(n.config.Format); f != "" && f != "html" {
		tplType, parseMode = ntpl.Text, ""
	}

	text, err := n.tplLoader.Render(tplType, ntpl.DeviceIncrease, ntpl.NewData(event))
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	return n.sendToAll(ctx, text, parseMode)
}

// sendToAll sends the message to all configured chats
func (n *TelegramNotifier) sendToAll(ctx context.Context, text, parseMode string) error {
	var errs []error
	for _, chatID := range n.config.ChatIDs {
		if err := n.send(ctx, TelegramMessage{ChatID: chatID, Text: text, ParseMode: parseMode}); err != nil {
			n.logger.Error("Failed to send telegram message", zap.String("chat_id", chatID), zap.Error(err))
			errs = append(errs, fmt.Errorf("chat %s: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// send sends a single message and checks the Bot API reply
func (n *TelegramNotifier) send(ctx context.Context, msg TelegramMessage) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiURL, n.config.BotToken)

	body, err := postJSON(ctx, n.client, n.logger, "telegram", url, msg)
	if err != nil {
		return err
	}

	reply := gjson.ParseBytes(body)
	if !reply.Get("ok").Bool() {
		return retry.Permanent(fmt.Errorf("telegram api error: %s", reply.Get("description").String()))
	}
	return nil
}

// Health checks the health of the notifier
func (n *TelegramNotifier) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/bot%s/getMe", n.apiURL, n.config.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram api unreachable: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus("telegram", resp)
}
