// Package telemetry publishes capture statistics over MQTT. It lives
// outside the core capture library: sessions know nothing about the
// network.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/thesis09/pseyepy/internal/debug"
)

const (
	connectTimeout = 5 * time.Second
	publishQoS     = 1
)

// Report is one capture status snapshot.
type Report struct {
	Devices     []int          `json:"devices"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	FrameRate   int            `json:"frame_rate"`
	MeasuredFPS float64        `json:"measured_fps"`
	Frames      int            `json:"frames"`
	Controls    map[string]int `json:"controls,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// NewClient connects to the broker. An empty clientID gets a generated
// one, so several rigs can report to the same broker without clashing.
func NewClient(broker, clientID string) (mqtt.Client, error) {
	if clientID == "" {
		clientID = "pseyecap-" + uuid.NewString()[:8]
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout)

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, token.Error())
	}
	debug.Info("Telemetry connected to %s as %s", broker, clientID)
	return c, nil
}

// PublishJSON marshals obj and publishes it on topic.
func PublishJSON(c mqtt.Client, topic string, obj interface{}) error {
	msg, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}
	token := c.Publish(topic, publishQoS, false, msg)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}
	debug.Live("published %d bytes to %s", len(msg), topic)
	return nil
}
