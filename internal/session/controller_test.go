package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/0SRAF0/TravelPlaner/internal/domain"
	"github.com/0SRAF0/TravelPlaner/internal/stream"
)

// chatBackend serves a websocket chat endpoint that pushes the given
// frames to every connection and then holds it open.
func chatBackend(t *testing.T, frames [][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			return
		}
		ctx := context.Background()
		for _, f := range frames {
			if err := ws.Write(ctx, websocket.MessageText, f); err != nil {
				return
			}
		}
		for {
			if _, _, err := ws.Read(ctx); err != nil {
				return
			}
		}
	}))
}

// waitSnapshot polls until cond holds for the controller snapshot.
func waitSnapshot(t *testing.T, c *Controller, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := c.Snapshot()
		if cond(snap) {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for snapshot, last: %+v", snap)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (c *Controller) currentConnID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ""
	}
	return c.conn.ID
}

func TestSwitchConnectsAndReduces(t *testing.T) {
	srv := chatBackend(t, [][]byte{
		[]byte(`{"senderId":"u2","senderName":"Ben","content":"first","kind":"user"}`),
		[]byte(`{"type":"agent_status","agentName":"flights","status":"running","step":"searching"}`),
		[]byte(`{"senderId":"agent","senderName":"Planner","content":"second","kind":"ai"}`),
	})
	defer srv.Close()

	c := NewController(srv.URL, domain.Profile{UserID: "u1", Name: "Ann"})
	defer c.Close()

	if err := c.Switch(context.Background(), "trip-a"); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}

	snap := waitSnapshot(t, c, func(s Snapshot) bool {
		return len(s.Transcript) == 2 && len(s.Agents) == 1
	})

	if snap.TripID != "trip-a" || !snap.Connected {
		t.Errorf("Unexpected session: trip=%q connected=%v", snap.TripID, snap.Connected)
	}
	if snap.Transcript[0].Content != "first" || snap.Transcript[1].Content != "second" {
		t.Errorf("Transcript out of order: %+v", snap.Transcript)
	}
	if _, ok := snap.Agents["flights"]; !ok {
		t.Errorf("Expected flights agent record, got %+v", snap.Agents)
	}
}

func TestSwitchDiscardsStaleEvents(t *testing.T) {
	srv := chatBackend(t, nil)
	defer srv.Close()

	c := NewController(srv.URL, domain.Profile{UserID: "u1"})
	defer c.Close()

	if err := c.Switch(context.Background(), "trip-a"); err != nil {
		t.Fatalf("Switch to trip-a failed: %v", err)
	}
	staleID := c.currentConnID()

	if err := c.Switch(context.Background(), "trip-b"); err != nil {
		t.Fatalf("Switch to trip-b failed: %v", err)
	}

	// A late event from trip-a's connection must not touch trip-b state.
	c.HandleChat(staleID, domain.ChatEvent{SenderID: "u9", Content: "late", Kind: domain.KindUser})
	c.HandleAgentStatus(staleID, domain.AgentStatusEvent{AgentName: "ghost", Status: domain.StatusRunning})
	c.HandleStateChange(staleID, stream.StateClosed)

	snap := c.Snapshot()
	if snap.TripID != "trip-b" {
		t.Fatalf("Expected trip-b session, got %q", snap.TripID)
	}
	if len(snap.Transcript) != 0 || len(snap.Agents) != 0 {
		t.Errorf("Stale events leaked into new session: %+v", snap)
	}
	if !snap.Connected {
		t.Error("Stale close notification flipped connectivity of new session")
	}

	// The current connection's events still apply.
	c.HandleChat(c.currentConnID(), domain.ChatEvent{SenderID: "u2", Content: "fresh", Kind: domain.KindUser})
	if got := c.Snapshot(); len(got.Transcript) != 1 || got.Transcript[0].Content != "fresh" {
		t.Errorf("Current connection events not applied: %+v", got.Transcript)
	}
}

func TestSendWithoutSession(t *testing.T) {
	c := NewController("http://localhost:8060", domain.Profile{UserID: "u1"})

	if err := c.Send(context.Background(), "hi"); !errors.Is(err, stream.ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestCloseDiscardsState(t *testing.T) {
	srv := chatBackend(t, [][]byte{
		[]byte(`{"senderId":"u2","senderName":"Ben","content":"hello","kind":"user"}`),
	})
	defer srv.Close()

	c := NewController(srv.URL, domain.Profile{UserID: "u1"})
	if err := c.Switch(context.Background(), "trip-a"); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}
	waitSnapshot(t, c, func(s Snapshot) bool { return len(s.Transcript) == 1 })

	c.Close()

	snap := c.Snapshot()
	if snap.Connected || snap.TripID != "" || len(snap.Transcript) != 0 || len(snap.Agents) != 0 {
		t.Errorf("Expected empty state after close, got %+v", snap)
	}
	if err := c.Send(context.Background(), "hi"); !errors.Is(err, stream.ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected after close, got %v", err)
	}
}

func TestTransportDropFlipsConnectivity(t *testing.T) {
	srv := chatBackend(t, [][]byte{
		[]byte(`{"senderId":"u2","senderName":"Ben","content":"hello","kind":"user"}`),
	})

	c := NewController(srv.URL, domain.Profile{UserID: "u1"})
	defer c.Close()

	if err := c.Switch(context.Background(), "trip-a"); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}
	waitSnapshot(t, c, func(s Snapshot) bool { return len(s.Transcript) == 1 })

	// Backend goes away mid-session.
	srv.CloseClientConnections()
	srv.Close()

	snap := waitSnapshot(t, c, func(s Snapshot) bool { return !s.Connected })
	if len(snap.Transcript) != 1 {
		t.Errorf("Expected applied state retained after drop, got %+v", snap.Transcript)
	}
}
