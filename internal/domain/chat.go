// Package domain contains core domain types for the TravelPlaner chat daemon.
package domain

import (
	"time"
)

// Message kinds carried on a trip's chat stream.
const (
	KindUser = "user"
	KindAI   = "ai"
)

// TypeAgentStatus is the wire discriminant that routes a frame to the
// agent status path instead of the transcript.
const TypeAgentStatus = "agent_status"

// ChatEvent is a single chat message on a trip's stream. Events are
// immutable once received; the transcript keeps them in arrival order.
type ChatEvent struct {
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	Kind       string    `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`
}
