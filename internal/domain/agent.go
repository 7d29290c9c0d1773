package domain

import (
	"time"
)

// Known agent status vocabulary. The reducer stores unknown values
// verbatim for forward compatibility; this list exists for consumers
// that want to special-case the known ones.
const (
	StatusStarting  = "starting"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// IndeterminateProgressPercent is the placeholder shown for a running
// agent that has not reported progress.
const IndeterminateProgressPercent = 50

// AgentStatusEvent is one status update from a background agent,
// decoded from an "agent_status" frame on the chat stream.
type AgentStatusEvent struct {
	Type           string    `json:"type"`
	AgentName      string    `json:"agentName"`
	Status         string    `json:"status"`
	Step           string    `json:"step"`
	Timestamp      time.Time `json:"timestamp"`
	Progress       *Progress `json:"progress,omitempty"`
	ElapsedSeconds int       `json:"elapsedSeconds,omitempty"`
}

// StepEntry is one completed step in an agent's history.
type StepEntry struct {
	Step      string    `json:"step"`
	Timestamp time.Time `json:"timestamp"`
}

// AgentStatusRecord is the latest known status of one background agent
// plus a bounded history of its previous steps. The current step is
// never part of its own history.
type AgentStatusRecord struct {
	AgentName      string      `json:"agentName"`
	Status         string      `json:"status"`
	Step           string      `json:"step"`
	Timestamp      time.Time   `json:"timestamp"`
	Progress       *Progress   `json:"progress,omitempty"`
	ElapsedSeconds int         `json:"elapsedSeconds,omitempty"`
	StepHistory    []StepEntry `json:"stepHistory"`
}

// ProgressPercent returns the displayable percent-complete for the
// record. Agents that never reported progress show a completed bar
// when done and an indeterminate placeholder while running.
func (r AgentStatusRecord) ProgressPercent() int {
	if r.Progress != nil {
		return r.Progress.Percent()
	}
	switch r.Status {
	case StatusCompleted:
		return 100
	case StatusRunning:
		return IndeterminateProgressPercent
	default:
		return 0
	}
}
