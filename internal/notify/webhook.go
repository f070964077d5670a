package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"wifiwatch/internal/config"
	"wifiwatch/internal/retry"
	"wifiwatch/internal/types"
	"wifiwatch/internal/version"
)

// Webhook headers
const (
	HeaderEvent     = "X-Wifiwatch-Event"
	HeaderDelivery  = "X-Wifiwatch-Delivery"
	HeaderSignature = "X-Wifiwatch-Signature"
)

// WebhookNotifier posts a signed JSON payload to a URL
type WebhookNotifier struct {
	config *config.WebhookConfig
	logger *zap.Logger
	client *http.Client
}

// WebhookPayload represents the standard webhook payload structure
type WebhookPayload struct {
	EventType string         `json:"event_type"`
	EventID   string         `json:"event_id"`
	Timestamp time.Time      `json:"timestamp"`
	Hostname  string         `json:"hostname,omitempty"`
	Data      map[string]any `json:"data"`
}

// NewWebhookNotifier creates new webhook notifier
func NewWebhookNotifier(cfg *config.WebhookConfig, logger *zap.Logger) (*WebhookNotifier, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  true,
			MaxIdleConnsPerHost: 2,
		},
	}

	return &WebhookNotifier{
		config: cfg,
		logger: logger,
		client: client,
	}, nil
}

// NotifyDeviceIncrease sends a device increase notification
func (n *WebhookNotifier) NotifyDeviceIncrease(ctx context.Context, event *types.DeviceEvent) error {
	data := map[string]any{
		"interface":             event.Interface.Name,
		"address":               event.Interface.Address.String(),
		"gateway":               event.Interface.Gateway.String(),
		"subnet":                event.Subnet.String(),
		"previous_count":        event.PreviousCount,
		"current_count":         event.CurrentCount,
		"count_without_gateway": event.CountWithoutGateway,
		"devices":               event.Devices,
		"detected_at":           event.DetectedAt,
	}

	// Add common data from config
	for k, v := range n.config.CommonData {
		if _, exists := data[k]; !exists {
			data[k] = v
		}
	}

	return n.sendWebhook(ctx, WebhookPayload{
		EventType: EventDeviceIncrease,
		EventID:   event.ID,
		Timestamp: event.DetectedAt,
		Hostname:  event.Hostname,
		Data:      data,
	})
}

// sendWebhook sends a single webhook request
func (n *WebhookNotifier) sendWebhook(ctx context.Context, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to marshal payload: %w", err))
	}

	method := strings.ToUpper(n.config.Method)
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, n.config.URL, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent("webhook"))
	req.Header.Set(HeaderEvent, payload.EventType)
	req.Header.Set(HeaderDelivery, payload.EventID)
	if n.config.Secret != "" {
		req.Header.Set(HeaderSignature, calculateSignature(body, []byte(n.config.Secret)))
	}

	// Add custom headers from config
	for k, v := range n.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			n.logger.Error("Failed to close response body", zap.Error(err))
		}
	}(resp.Body)

	return checkStatus("webhook", resp)
}

// calculateSignature returns the hex HMAC-SHA256 of payload
func calculateSignature(payload []byte, secret []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// checkStatus turns a non-2xx response into an error; client errors are not retried
func checkStatus(name string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := fmt.Errorf("%s request failed with status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(body)))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return retry.Permanent(err)
	}
	return err
}

// Health checks the health of the notifier
func (n *WebhookNotifier) Health(_ context.Context) error {
	if n.config.URL == "" {
		return fmt.Errorf("webhook url is not configured")
	}
	return nil
}
