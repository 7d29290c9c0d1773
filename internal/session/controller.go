// Package session binds a trip identifier to one chat stream connection
// and owns the state reduced from its events.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/0SRAF0/TravelPlaner/internal/domain"
	"github.com/0SRAF0/TravelPlaner/internal/state"
	"github.com/0SRAF0/TravelPlaner/internal/stream"
)

// Controller owns at most one live connection and the projections
// reduced from its event stream. Re-binding to another trip closes the
// old connection and starts from empty state; events still in flight
// from a superseded connection are discarded by the conn-tag check.
type Controller struct {
	backendURL string
	profile    domain.Profile

	mu         sync.Mutex
	tripID     string
	conn       *stream.Conn
	transcript []domain.ChatEvent
	agents     map[string]domain.AgentStatusRecord
	connected  bool
}

// Snapshot is a point-in-time copy of session state, safe to hand to
// the presentation layer.
type Snapshot struct {
	TripID     string
	Connected  bool
	Transcript []domain.ChatEvent
	Agents     map[string]domain.AgentStatusRecord
}

// NewController creates a controller for the given backend and local
// user profile. No connection is opened until Switch is called.
func NewController(backendURL string, profile domain.Profile) *Controller {
	return &Controller{
		backendURL: backendURL,
		profile:    profile,
		agents:     make(map[string]domain.AgentStatusRecord),
	}
}

// Switch connects to tripID's chat stream. Any prior connection is
// closed and all session-scoped state is reset before the new dial, so
// no carry-over is possible across trips.
func (c *Controller) Switch(ctx context.Context, tripID string) error {
	conn := stream.New(c.backendURL, tripID, c.profile, c)

	c.mu.Lock()
	old := c.conn
	c.tripID = tripID
	c.conn = conn
	c.connected = false
	c.transcript = nil
	c.agents = make(map[string]domain.AgentStatusRecord)
	c.mu.Unlock()

	if old != nil {
		old.Close()
	}

	slog.Info("Session switched", "trip_id", tripID, "conn_id", conn.ID)
	if err := conn.Connect(ctx); err != nil {
		return fmt.Errorf("connect trip %s: %w", tripID, err)
	}
	return nil
}

// Close tears down the active connection and discards session state.
func (c *Controller) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.tripID = ""
	c.connected = false
	c.transcript = nil
	c.agents = make(map[string]domain.AgentStatusRecord)
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Send transmits a user message on the active connection. Gate failures
// from the connection pass through unchanged.
func (c *Controller) Send(ctx context.Context, content string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return stream.ErrNotConnected
	}
	return conn.Send(ctx, content)
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	transcript := make([]domain.ChatEvent, len(c.transcript))
	copy(transcript, c.transcript)
	agents := make(map[string]domain.AgentStatusRecord, len(c.agents))
	for name, rec := range c.agents {
		agents[name] = rec
	}
	return Snapshot{
		TripID:     c.tripID,
		Connected:  c.connected,
		Transcript: transcript,
		Agents:     agents,
	}
}

// HandleChat implements stream.Handler.
func (c *Controller) HandleChat(connID string, ev domain.ChatEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isCurrent(connID) {
		return
	}
	c.transcript = state.AppendMessage(c.transcript, ev)
}

// HandleAgentStatus implements stream.Handler.
func (c *Controller) HandleAgentStatus(connID string, ev domain.AgentStatusEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isCurrent(connID) {
		return
	}
	c.agents = state.ApplyStatus(c.agents, ev)
}

// HandleStateChange implements stream.Handler.
func (c *Controller) HandleStateChange(connID string, s stream.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isCurrent(connID) {
		return
	}
	c.connected = s == stream.StateOpen
}

// isCurrent reports whether connID tags the connection this controller
// currently owns. Callers must hold mu.
func (c *Controller) isCurrent(connID string) bool {
	return c.conn != nil && c.conn.ID == connID
}
