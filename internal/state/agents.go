package state

import (
	"github.com/0SRAF0/TravelPlaner/internal/domain"
)

// MaxStepHistory bounds the per-agent step history. The oldest entry is
// evicted first once the cap is reached.
const MaxStepHistory = 10

// ApplyStatus returns a new agent collection in which the record for
// ev.AgentName is replaced. For a known agent the prior record's
// current step is pushed onto the new record's history before the cap
// is enforced; every other field comes from the incoming event. Status
// strings outside the known vocabulary are stored verbatim, vocabulary
// policing belongs to the stream decoder.
func ApplyStatus(agents map[string]domain.AgentStatusRecord, ev domain.AgentStatusEvent) map[string]domain.AgentStatusRecord {
	next := make(map[string]domain.AgentStatusRecord, len(agents)+1)
	for name, rec := range agents {
		next[name] = rec
	}

	rec := domain.AgentStatusRecord{
		AgentName:      ev.AgentName,
		Status:         ev.Status,
		Step:           ev.Step,
		Timestamp:      ev.Timestamp,
		Progress:       ev.Progress,
		ElapsedSeconds: ev.ElapsedSeconds,
	}

	if prior, ok := agents[ev.AgentName]; ok {
		history := make([]domain.StepEntry, 0, len(prior.StepHistory)+1)
		history = append(history, prior.StepHistory...)
		history = append(history, domain.StepEntry{Step: prior.Step, Timestamp: prior.Timestamp})
		if len(history) > MaxStepHistory {
			history = history[len(history)-MaxStepHistory:]
		}
		rec.StepHistory = history
	}

	next[ev.AgentName] = rec
	return next
}
