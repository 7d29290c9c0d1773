// Package state holds the pure reducers that project a trip's inbound
// event stream into session state. Each reducer returns a new value and
// never mutates its input, so callers can hand out snapshots freely.
package state

import (
	"github.com/0SRAF0/TravelPlaner/internal/domain"
)

// AppendMessage returns a new transcript with ev appended. Arrival
// order is authoritative: events are never reordered by their embedded
// timestamp and never deduplicated.
func AppendMessage(transcript []domain.ChatEvent, ev domain.ChatEvent) []domain.ChatEvent {
	next := make([]domain.ChatEvent, len(transcript)+1)
	copy(next, transcript)
	next[len(transcript)] = ev
	return next
}
