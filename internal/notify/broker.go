package notify

import (
	"encoding/json"
	"fmt"

	"wifiwatch/internal/types"
)

// BrokerMessage is the JSON body published to message brokers
type BrokerMessage struct {
	EventType string             `json:"event_type"`
	Event     *types.DeviceEvent `json:"event"`
}

// encodeEvent serializes an event for the broker notifiers
func encodeEvent(event *types.DeviceEvent) ([]byte, error) {
	data, err := json.Marshal(BrokerMessage{EventType: EventDeviceIncrease, Event: event})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}
