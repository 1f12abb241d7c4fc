// Package session owns the per-connection state machine and the registry
// of live sessions. Each Session drives one external-network connection
// through pairing, connect, reconnect-with-backoff and logout, and is the
// single entry point for protocol actions on that connection.
package session

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/Fatihur/api-baru/internal/buffer"
	"github.com/Fatihur/api-baru/internal/driver"
	"github.com/Fatihur/api-baru/internal/metrics"
	"github.com/Fatihur/api-baru/internal/model"
	"github.com/Fatihur/api-baru/internal/store"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// Config holds the reconnect policy and inbox sizing for sessions.
type Config struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
	BufferSize  int
}

// DefaultConfig returns the default session configuration
func DefaultConfig() Config {
	return Config{
		BaseDelay:   2 * time.Second,
		MaxDelay:    60 * time.Second,
		MaxAttempts: 10,
		BufferSize:  100,
	}
}

// Observer receives every inbound message recorded on a session. Observers
// run on the session's event goroutine; a panicking observer is isolated
// and logged without disturbing the inbox or other observers.
type Observer func(msg model.InboundMessage)

// Session is the state machine for one (tenant, session name) connection.
// All mutable state is guarded by mu; driver events for one session are
// consumed by a single goroutine, so they are applied in emission order.
type Session struct {
	key     model.SessionKey
	factory driver.Factory
	creds   store.CredentialStore
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu             sync.Mutex
	state          model.SessionState
	challenge      string
	attempts       int
	initializing   bool
	drv            driver.Driver
	inbox          *buffer.Ring[model.InboundMessage]
	observers      []Observer
	reconnectTimer *time.Timer
}

// NewSession creates a session in the disconnected state. It owns no
// driver until Connect is called.
func NewSession(
	key model.SessionKey,
	factory driver.Factory,
	creds store.CredentialStore,
	cfg Config,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Session {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	s := &Session{
		key:     key,
		factory: factory,
		creds:   creds,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		state:   model.StateDisconnected,
		inbox:   buffer.NewRing[model.InboundMessage](cfg.BufferSize),
	}
	if m != nil {
		m.SessionsByState.WithLabelValues(string(model.StateDisconnected)).Inc()
	}
	return s
}

// Key returns the session's composite key.
func (s *Session) Key() model.SessionKey { return s.key }

// Status returns a point-in-time snapshot. Never blocks on I/O.
func (s *Session) Status() model.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.SessionStatus{
		Connected:        s.state == model.StateConnected,
		State:            s.state,
		PairingChallenge: s.challenge,
	}
}

// Connect resolves the credential namespace, constructs a driver and
// starts consuming its events. It is idempotent per session: a call
// arriving while another initialization is in flight is a no-op that
// relies on the in-flight attempt's outcome.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.initializing || s.drv != nil {
		s.mu.Unlock()
		return nil
	}
	s.initializing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.initializing = false
		s.mu.Unlock()
	}()

	blob, err := s.creds.Namespace(ctx, s.key)
	if err != nil {
		return &InitializationError{Key: s.key, Err: err}
	}

	drv, err := s.factory.New(ctx, blob, s.saveCredentials)
	if err != nil {
		return &InitializationError{Key: s.key, Err: err}
	}

	s.mu.Lock()
	if s.state.Terminal() {
		// Deleted while we were constructing the driver.
		s.mu.Unlock()
		_ = drv.Close()
		return nil
	}
	s.drv = drv
	s.mu.Unlock()

	go s.consume(drv)

	s.logger.Info("Session driver started",
		zap.String("tenant_id", s.key.TenantID),
		zap.String("session", s.key.Name))
	return nil
}

// saveCredentials persists rotated credential material. Called by the
// driver whenever the network updates the session's keys.
func (s *Session) saveCredentials(blob []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.creds.Save(ctx, s.key, blob); err != nil {
		s.logger.Error("Failed to persist credentials",
			zap.String("tenant_id", s.key.TenantID),
			zap.String("session", s.key.Name),
			zap.Error(err))
	}
}

// consume applies one driver's event stream in order. The loop exits when
// the driver closes its channel or reports the transport closed.
func (s *Session) consume(drv driver.Driver) {
	for ev := range drv.Events() {
		s.mu.Lock()
		if s.drv != drv {
			// A logout or reconnect replaced this driver; its remaining
			// events are stale.
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		switch ev.Type {
		case driver.EventPairing:
			s.onPairing(ev.PairingCode)
		case driver.EventOpen:
			s.onOpen()
		case driver.EventMessage:
			s.recordInbound(ev.Message)
		case driver.EventClosed:
			s.onClosed(ev)
			return
		}
	}
}

func (s *Session) onPairing(code string) {
	rendered := renderChallenge(code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() || s.state == model.StateConnected {
		return
	}
	s.challenge = rendered
	s.setStateLocked(model.StatePairingReady)

	s.logger.Info("Pairing challenge issued",
		zap.String("tenant_id", s.key.TenantID),
		zap.String("session", s.key.Name))
}

func (s *Session) onOpen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return
	}
	s.challenge = ""
	s.attempts = 0
	s.setStateLocked(model.StateConnected)

	s.logger.Info("Session connected",
		zap.String("tenant_id", s.key.TenantID),
		zap.String("session", s.key.Name))
}

func (s *Session) onClosed(ev driver.Event) {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return
	}

	closing := s.drv
	s.drv = nil

	if ev.Logout {
		s.attempts = 0
		s.setStateLocked(model.StateLoggedOut)
		s.mu.Unlock()

		if closing != nil {
			_ = closing.Close()
		}
		s.logger.Info("Session logged out by network",
			zap.String("tenant_id", s.key.TenantID),
			zap.String("session", s.key.Name))
		return
	}

	s.attempts++
	attempt := s.attempts

	if attempt > s.cfg.MaxAttempts {
		s.setStateLocked(model.StateFailed)
		s.mu.Unlock()

		if closing != nil {
			_ = closing.Close()
		}
		if s.metrics != nil {
			s.metrics.ReconnectExhausted.Inc()
		}
		s.logger.Error("Session failed: reconnect attempts exhausted",
			zap.String("tenant_id", s.key.TenantID),
			zap.String("session", s.key.Name),
			zap.Int("attempts", attempt-1),
			zap.Error(ErrReconnectExhausted))
		return
	}

	delay := BackoffDelay(s.cfg.BaseDelay, s.cfg.MaxDelay, attempt)
	s.setStateLocked(model.StateReconnecting)
	s.reconnectTimer = time.AfterFunc(delay, s.retry)
	s.mu.Unlock()

	if closing != nil {
		_ = closing.Close()
	}
	if s.metrics != nil {
		s.metrics.ReconnectAttempts.Inc()
	}
	s.logger.Warn("Session disconnected, reconnect scheduled",
		zap.String("tenant_id", s.key.TenantID),
		zap.String("session", s.key.Name),
		zap.Int("attempt", attempt),
		zap.Duration("delay", delay),
		zap.Error(ev.Err))
}

// retry fires from the reconnect timer. The state is re-validated before
// any work starts so a retry racing a logout or delete is a no-op.
func (s *Session) retry() {
	s.mu.Lock()
	if s.state != model.StateReconnecting {
		s.mu.Unlock()
		return
	}
	s.reconnectTimer = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Connect(ctx); err != nil {
		s.logger.Warn("Reconnect attempt failed",
			zap.String("tenant_id", s.key.TenantID),
			zap.String("session", s.key.Name),
			zap.Error(err))
		// Feed the failure back through the close path so the next
		// attempt is scheduled with the grown delay, or the session
		// fails once the ceiling is hit.
		s.onClosed(driver.Event{Type: driver.EventClosed, Err: err})
	}
}

// Do executes one protocol action on the live connection. Destinations
// are normalized into the network's canonical address form first.
func (s *Session) Do(ctx context.Context, action driver.Action) (*driver.Result, error) {
	kind := driver.Kind(action)

	s.mu.Lock()
	if s.state != model.StateConnected || s.drv == nil {
		err := &NotConnectedError{State: s.state, PairingChallenge: s.challenge}
		s.mu.Unlock()
		s.countAction(kind, "not_connected")
		return nil, err
	}
	drv := s.drv
	s.mu.Unlock()

	result, err := drv.Execute(ctx, normalizeAction(action))
	if err != nil {
		s.countAction(kind, "error")
		return nil, &ProtocolError{Action: kind, Err: err}
	}

	s.countAction(kind, "ok")
	return result, nil
}

func (s *Session) countAction(kind, outcome string) {
	if s.metrics != nil {
		s.metrics.ActionsTotal.WithLabelValues(kind, outcome).Inc()
	}
}

// recordInbound appends a message to the bounded inbox and fans it out to
// observers. A panicking observer cannot affect the inbox or its peers.
func (s *Session) recordInbound(msg model.InboundMessage) {
	s.mu.Lock()
	s.inbox.Add(msg)
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		s.invokeObserver(fn, msg)
	}
}

func (s *Session) invokeObserver(fn Observer, msg model.InboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Message observer panicked",
				zap.String("tenant_id", s.key.TenantID),
				zap.String("session", s.key.Name),
				zap.Any("panic", r))
		}
	}()
	fn(msg)
}

// AddObserver registers a message observer.
func (s *Session) AddObserver(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Recent returns up to limit of the most recently observed inbound
// messages, oldest first.
func (s *Session) Recent(limit int) []model.InboundMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inbox.Tail(limit)
}

// ClearRecent drops all retained inbound messages.
func (s *Session) ClearRecent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox.Clear()
}

// Logout requests a graceful driver logout and forces the logged_out
// state. Any pending reconnect is cancelled. Idempotent.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.state == model.StateLoggedOut {
		s.mu.Unlock()
		return nil
	}
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	drv := s.drv
	s.drv = nil
	s.attempts = 0
	s.setStateLocked(model.StateLoggedOut)
	s.mu.Unlock()

	if drv != nil {
		if err := drv.Logout(ctx); err != nil {
			s.logger.Warn("Graceful logout failed",
				zap.String("tenant_id", s.key.TenantID),
				zap.String("session", s.key.Name),
				zap.Error(err))
		}
		_ = drv.Close()
	}

	s.logger.Info("Session logged out",
		zap.String("tenant_id", s.key.TenantID),
		zap.String("session", s.key.Name))
	return nil
}

// release retires the session's metrics gauge entry. Called by the
// registry once the session leaves the map.
func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SessionsByState.WithLabelValues(string(s.state)).Dec()
		s.metrics = nil
	}
}

// setStateLocked transitions the state and keeps the per-state gauge
// consistent. Callers hold mu.
func (s *Session) setStateLocked(next model.SessionState) {
	if s.metrics != nil && next != s.state {
		s.metrics.SessionsByState.WithLabelValues(string(s.state)).Dec()
		s.metrics.SessionsByState.WithLabelValues(string(next)).Inc()
	}
	s.state = next
}

// renderChallenge turns a raw pairing code into a scannable PNG data URL.
// Falls back to the raw code if encoding fails.
func renderChallenge(code string) string {
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return code
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
