// Package loopback provides an in-process driver implementation. It
// performs no network I/O: pairing succeeds immediately, every action is
// acknowledged with a synthesized result, and sent text messages are
// echoed back as inbound messages. It backs development setups and
// integration tests; production deployments plug a real protocol binding
// into driver.Factory instead.
package loopback

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Fatihur/api-baru/internal/driver"
	"github.com/Fatihur/api-baru/internal/model"
	"github.com/google/uuid"
)

// ErrClosed is returned by Execute after the driver released its
// transport.
var ErrClosed = errors.New("loopback: driver closed")

type credentials struct {
	DeviceID string `json:"device_id"`
	PairedAt string `json:"paired_at"`
}

// Factory constructs loopback drivers.
type Factory struct{}

// NewFactory creates a loopback driver factory.
func NewFactory() *Factory { return &Factory{} }

// New satisfies driver.Factory. A nil credentials blob triggers the
// pairing flow before the connection opens; a stored blob resumes
// directly.
func (f *Factory) New(ctx context.Context, creds []byte, onCredentials func([]byte)) (driver.Driver, error) {
	d := &Driver{
		events: make(chan driver.Event, 16),
	}

	if len(creds) == 0 {
		code := uuid.NewString()
		d.events <- driver.Event{Type: driver.EventPairing, PairingCode: code}

		blob, err := json.Marshal(credentials{
			DeviceID: uuid.NewString(),
			PairedAt: time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
		if onCredentials != nil {
			onCredentials(blob)
		}
	}

	d.events <- driver.Event{Type: driver.EventOpen}
	return d, nil
}

// Driver is one loopback connection.
type Driver struct {
	events chan driver.Event

	mu     sync.Mutex
	closed bool
}

// Events returns the lifecycle event channel.
func (d *Driver) Events() <-chan driver.Event {
	return d.events
}

// Execute acknowledges the action with a synthesized result. SendText is
// echoed back through the event channel so inbound handling can be
// exercised without a network.
func (d *Driver) Execute(ctx context.Context, action driver.Action) (*driver.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}

	result := &driver.Result{}

	switch a := action.(type) {
	case driver.SendText:
		result.MessageID = uuid.NewString()
		d.echoLocked(a)
	case driver.GroupCreate:
		result.GroupID = uuid.NewString() + "@g.us"
	case driver.GroupInviteLink:
		result.InviteLink = "https://chat.example.com/" + uuid.NewString()
	case driver.GroupAcceptInvite:
		result.GroupID = uuid.NewString() + "@g.us"
	case driver.CheckNumber:
		result.Exists = true
		result.Address = a.Target
	case driver.ProfilePicture:
		result.URL = "https://cdn.example.com/" + uuid.NewString() + ".jpg"
	case driver.GroupInfo, driver.BusinessProfile:
		result.Info = map[string]any{}
	default:
		result.MessageID = uuid.NewString()
	}

	return result, nil
}

// echoLocked reflects a sent text back as an inbound message. Callers
// hold mu.
func (d *Driver) echoLocked(a driver.SendText) {
	ev := driver.Event{
		Type: driver.EventMessage,
		Message: model.InboundMessage{
			ID:        uuid.NewString(),
			From:      a.To,
			PushName:  "loopback",
			Type:      "text",
			Timestamp: time.Now().UTC(),
			Payload:   map[string]any{"text": a.Text},
		},
	}
	select {
	case d.events <- ev:
	default:
		// Echo is best effort; a full buffer drops it.
	}
}

// Logout emits the logout close event.
func (d *Driver) Logout(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.events <- driver.Event{Type: driver.EventClosed, Logout: true}
	return nil
}

// Close releases the transport and closes the event channel.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	close(d.events)
	return nil
}
