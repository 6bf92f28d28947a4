package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/quickcollab/quickcollab/internal/domain"
)

// SessionState is the lifecycle state of a live connection.
type SessionState int

const (
	StateConnected SessionState = iota
	StateAuthenticated
	StateDisconnected
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Envelope is one outbound event destined for a client connection.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Session is one live client connection and its room membership state. The
// transport (WebSocket handler or a test) drains Outbound and writes each
// envelope to the wire.
type Session struct {
	id       uuid.UUID
	registry *Registry
	out      chan Envelope

	mu     sync.Mutex
	state  SessionState
	userID uuid.UUID // valid only in StateAuthenticated

	closeOnce sync.Once
}

// NewSession registers a fresh session in the Connected state. buffer bounds
// the outbound queue; a slow client whose queue fills up misses events and is
// expected to re-sync on reconnect.
func NewSession(registry *Registry, buffer int) *Session {
	return &Session{
		id:       uuid.New(),
		registry: registry,
		out:      make(chan Envelope, buffer),
		state:    StateConnected,
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authenticate attaches the authenticated principal to the session.
func (s *Session) Authenticate(userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDisconnected {
		return fmt.Errorf("session %s: authenticate after disconnect: %w", s.id, domain.ErrConflict)
	}
	s.state = StateAuthenticated
	s.userID = userID
	return nil
}

// Principal returns the authenticated user id, if any. Anonymous sessions may
// subscribe to rooms but cannot originate mutations.
func (s *Session) Principal() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAuthenticated {
		return uuid.Nil, false
	}
	return s.userID, true
}

// Join subscribes the session to a room. Valid while connected.
func (s *Session) Join(room string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDisconnected {
		return fmt.Errorf("session %s: join after disconnect: %w", s.id, domain.ErrConflict)
	}
	s.registry.Join(s, room)
	return nil
}

// Leave unsubscribes the session from a room. Idempotent.
func (s *Session) Leave(room string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDisconnected {
		return fmt.Errorf("session %s: leave after disconnect: %w", s.id, domain.ErrConflict)
	}
	s.registry.Leave(s, room)
	return nil
}

// Deliver enqueues an envelope for the transport to send. Returns false if
// the session has disconnected or its outbound queue is full; the dispatcher
// treats both as a skipped best-effort delivery, never a fault.
func (s *Session) Deliver(env Envelope) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDisconnected {
		return false
	}
	select {
	case s.out <- env:
		return true
	default:
		return false
	}
}

// Outbound is the queue of envelopes awaiting transmission. Closed when the
// session disconnects.
func (s *Session) Outbound() <-chan Envelope {
	return s.out
}

// Close transitions the session to Disconnected and removes it from every
// room. Safe to call more than once; the registry removal and channel close
// happen exactly once. Holding the session mutex through the removal keeps
// Deliver from racing the close: once Close begins, no broadcast can reach
// the outbound channel.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateDisconnected
		s.registry.RemoveSession(s)
		close(s.out)
		s.mu.Unlock()
	})
}
