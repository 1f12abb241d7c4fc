package model

import "time"

// InboundMessage is one message observed on a session's event stream. The
// Payload is kept opaque: the gateway records and replays what the driver
// delivered without interpreting the content shape.
type InboundMessage struct {
	ID        string         `json:"id"`
	From      string         `json:"from"`
	PushName  string         `json:"push_name,omitempty"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"message,omitempty"`
}
