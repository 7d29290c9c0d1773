// Package stream manages the websocket connection to the TravelPlaner
// chat backend and demultiplexes its event stream.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/0SRAF0/TravelPlaner/internal/domain"
)

// Send gate failures. Both are local no-ops: nothing is written to the
// transport and the connection state is unchanged.
var (
	ErrNotConnected = errors.New("stream: not connected")
	ErrEmptyMessage = errors.New("stream: empty message")
)

// State is the lifecycle state of a connection. Errors transition
// straight to Closed; there is no automatic reconnect.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosed     State = "closed"
)

// Handler receives demultiplexed events from a connection. Calls arrive
// sequentially from the connection's read loop and carry the id of the
// connection that produced them, so a handler shared across connections
// can discard events from a superseded one.
type Handler interface {
	HandleChat(connID string, ev domain.ChatEvent)
	HandleAgentStatus(connID string, ev domain.AgentStatusEvent)
	HandleStateChange(connID string, state State)
}

// Conn is one logical connection to a trip's chat stream.
type Conn struct {
	// ID tags every event this connection delivers.
	ID     string
	TripID string

	backendURL string
	profile    domain.Profile
	handler    Handler

	mu     sync.Mutex
	state  State
	ws     *websocket.Conn
	cancel context.CancelFunc
}

// New creates a connection for a trip in the Idle state. Connect must
// be called to open it.
func New(backendURL, tripID string, profile domain.Profile, handler Handler) *Conn {
	return &Conn{
		ID:         uuid.NewString(),
		TripID:     tripID,
		backendURL: backendURL,
		profile:    profile,
		handler:    handler,
		state:      StateIdle,
	}
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the backend chat endpoint for the trip and starts the
// read loop. A dial failure leaves the connection Closed.
func (c *Conn) Connect(ctx context.Context) error {
	c.setState(StateConnecting)

	endpoint, err := chatEndpoint(c.backendURL, c.TripID)
	if err != nil {
		c.Close()
		return err
	}

	ws, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		c.Close()
		return fmt.Errorf("dial chat stream: %w", err)
	}

	c.mu.Lock()
	if c.state == StateClosed {
		// Superseded while dialing.
		c.mu.Unlock()
		_ = ws.Close(websocket.StatusNormalClosure, "connection superseded")
		return ErrNotConnected
	}
	readCtx, cancel := context.WithCancel(context.Background())
	c.ws = ws
	c.cancel = cancel
	c.mu.Unlock()

	c.setState(StateOpen)
	go c.readLoop(readCtx, ws)
	return nil
}

// readLoop reads one JSON event per frame until the transport fails or
// the connection is closed. Events are dispatched in arrival order from
// this single goroutine, so reducers never run concurrently for a
// connection.
func (c *Conn) readLoop(ctx context.Context, ws *websocket.Conn) {
	defer c.Close()
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if c.State() == StateOpen {
				slog.Info("Chat stream ended by transport",
					"conn_id", c.ID, "trip_id", c.TripID, "error", err)
			}
			return
		}
		c.dispatch(data)
	}
}

// dispatch routes one inbound frame. The "agent_status" discriminant
// selects the agent status path; anything else must carry a sender to
// count as a chat event. A malformed frame is logged and dropped, the
// stream continues with the next one.
func (c *Conn) dispatch(data []byte) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		slog.Warn("Dropping undecodable frame", "conn_id", c.ID, "trip_id", c.TripID, "error", err)
		return
	}

	if probe.Type == domain.TypeAgentStatus {
		var ev domain.AgentStatusEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			slog.Warn("Dropping malformed agent status event", "conn_id", c.ID, "error", err)
			return
		}
		if ev.AgentName == "" {
			slog.Warn("Dropping agent status event without agentName", "conn_id", c.ID)
			return
		}
		c.handler.HandleAgentStatus(c.ID, ev)
		return
	}

	var ev domain.ChatEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		slog.Warn("Dropping malformed chat event", "conn_id", c.ID, "error", err)
		return
	}
	if ev.SenderID == "" && ev.SenderName == "" {
		slog.Warn("Dropping chat event without sender", "conn_id", c.ID)
		return
	}
	c.handler.HandleChat(c.ID, ev)
}

// Send composes an outbound user message from the local profile and
// transmits it. Whitespace-only content and a connection that is not
// Open both fail the gate without touching the transport. The content
// itself is sent verbatim.
func (c *Conn) Send(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	ws := c.ws
	open := c.state == StateOpen
	c.mu.Unlock()
	if !open || ws == nil {
		return ErrNotConnected
	}

	ev := domain.ChatEvent{
		SenderID:   c.profile.UserID,
		SenderName: c.profile.Name,
		Content:    content,
		Kind:       domain.KindUser,
		Timestamp:  time.Now().UTC(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode outbound message: %w", err)
	}
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write outbound message: %w", err)
	}
	return nil
}

// Close transitions the connection to Closed and releases the
// transport. Closing twice has no additional effect.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	ws := c.ws
	cancel := c.cancel
	c.ws = nil
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if ws != nil {
		_ = ws.Close(websocket.StatusNormalClosure, "session ended")
	}
	slog.Info("Chat stream state change", "conn_id", c.ID, "trip_id", c.TripID, "state", string(StateClosed))
	c.handler.HandleStateChange(c.ID, StateClosed)
}

// setState records a non-Closed transition and notifies the handler.
// Close owns the transition to Closed so teardown stays idempotent.
func (c *Conn) setState(s State) {
	c.mu.Lock()
	if c.state == s || c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()

	slog.Info("Chat stream state change", "conn_id", c.ID, "trip_id", c.TripID, "state", string(s))
	c.handler.HandleStateChange(c.ID, s)
}

// chatEndpoint converts the backend base URL into the websocket chat
// endpoint for a trip.
func chatEndpoint(base, tripID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported backend scheme %q", u.Scheme)
	}
	// u.String escapes the path, so the trip id joins unescaped here.
	u.Path = strings.TrimRight(u.Path, "/") + "/chat/" + tripID
	return u.String(), nil
}
