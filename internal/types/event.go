package types

import "time"

// DeviceEvent describes an increase in the number of reachable devices
type DeviceEvent struct {
	ID                  string         `json:"id"`
	Hostname            string         `json:"hostname"`
	Interface           InterfaceState `json:"interface"`
	Subnet              Subnet         `json:"subnet"`
	PreviousCount       int            `json:"previous_count"`
	CurrentCount        int            `json:"current_count"`
	CountWithoutGateway int            `json:"count_without_gateway"`
	Devices             []Device       `json:"devices"`
	DetectedAt          time.Time      `json:"detected_at"`
}

// Device is the display form of a responding host
type Device struct {
	IP  string `json:"ip"`
	MAC string `json:"mac,omitempty"`
}

// Delta returns how many devices joined since the previous cycle
func (e *DeviceEvent) Delta() int {
	return e.CurrentCount - e.PreviousCount
}

// DevicesFromHosts converts hosts to their display form
func DevicesFromHosts(hosts []Host) []Device {
	out := make([]Device, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, Device{IP: h.Address.String(), MAC: h.MAC()})
	}
	return out
}
