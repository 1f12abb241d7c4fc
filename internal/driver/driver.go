// Package driver defines the boundary to the external messaging-protocol
// library. The gateway never implements the wire protocol itself: it
// constructs a Driver per session from persisted credential material,
// consumes the driver's lifecycle events, and executes protocol actions
// through it. Everything behind this interface is treated as correct.
package driver

import (
	"context"

	"github.com/Fatihur/api-baru/internal/model"
)

// Event is one connection-lifecycle event emitted by a driver. Exactly one
// field group is meaningful per event, selected by Type.
type Event struct {
	Type EventType

	// PairingCode carries the raw pairing challenge for EventPairing.
	PairingCode string

	// Err and Logout describe EventClosed. Logout marks an explicit
	// logout; every other close reason is considered recoverable.
	Err    error
	Logout bool

	// Message carries the inbound message for EventMessage.
	Message model.InboundMessage
}

type EventType int

const (
	// EventPairing reports that the network issued a pairing challenge
	// which must be presented to authorize the session.
	EventPairing EventType = iota
	// EventOpen reports that the transport is established and usable.
	EventOpen
	// EventClosed reports that the transport dropped.
	EventClosed
	// EventMessage reports an inbound message.
	EventMessage
)

// Driver is one live transport connection to the messaging network.
//
// Events returns a channel that yields lifecycle events in the order the
// network produced them; the channel is closed when the driver releases
// its transport. Execute performs one protocol action and must only be
// called while the connection is open.
type Driver interface {
	Events() <-chan Event
	Execute(ctx context.Context, action Action) (*Result, error)
	Logout(ctx context.Context) error
	Close() error
}

// Factory constructs drivers. The credentials blob is the opaque material
// loaded from the session's credential namespace; a nil blob starts a
// fresh pairing flow. OnCredentials is invoked whenever the driver rotates
// its credential material so the namespace can be updated.
type Factory interface {
	New(ctx context.Context, creds []byte, onCredentials func(blob []byte)) (Driver, error)
}
