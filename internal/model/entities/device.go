package entities

import (
	"regexp"
	"strings"
	"time"
)

// DeviceStatus is the connectivity state of a device.
type DeviceStatus string

const (
	DeviceConnected DeviceStatus = "connected"
	DeviceOffline   DeviceStatus = "offline"
)

var macPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}$`)

// Device is a physical unit (e.g. an M5Stack core) hosting one or more sensors.
type Device struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	MACAddress   string       `json:"macAddress"`
	MQTTClientID string       `json:"mqttClientId"`
	Location     string       `json:"location,omitempty"`
	WifiStrength *int         `json:"wifiStrength"` // dBm, nil when offline
	Status       DeviceStatus `json:"status"`
	LastSeen     time.Time    `json:"lastSeen"`
	BatteryLevel *int         `json:"batteryLevel"` // nil when mains powered
}

// Validate checks the device form rules.
func (d Device) Validate() error {
	verr := NewValidationError("device")
	if strings.TrimSpace(d.Name) == "" {
		verr.Add("name", "Device name is required")
	}
	switch {
	case strings.TrimSpace(d.MACAddress) == "":
		verr.Add("macAddress", "MAC address is required")
	case !ValidMAC(d.MACAddress):
		verr.Add("macAddress", "Invalid MAC address format (use XX:XX:XX:XX:XX:XX)")
	}
	if strings.TrimSpace(d.MQTTClientID) == "" {
		verr.Add("mqttClientId", "MQTT client ID is required")
	}
	return verr.OrNil()
}

// ValidMAC reports whether mac is six hex octets separated by ':' or '-'.
func ValidMAC(mac string) bool {
	return macPattern.MatchString(mac)
}

// NormalizeMAC upper-cases mac and uses ':' as separator.
// It assumes mac already passed ValidMAC.
func NormalizeMAC(mac string) string {
	return strings.ToUpper(strings.ReplaceAll(mac, "-", ":"))
}

// DefaultClientID derives the MQTT client id from a device name.
func DefaultClientID(name string) string {
	return Slug(name)
}

// Slug lower-cases s, turns whitespace runs into '_' and drops anything outside [a-z0-9_].
func Slug(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
		inSpace = false
	}
	return b.String()
}
