// Package store provides local persistence for the chat daemon: the
// user profile consumed by the identity bootstrap and a cache of the
// backend activity list. Chat messages are deliberately not persisted.
package store

import (
	"context"

	"github.com/0SRAF0/TravelPlaner/internal/domain"
)

// Repository defines the persistence interface.
type Repository interface {
	// GetProfile returns the stored local profile, or nil when none
	// has been created yet.
	GetProfile(ctx context.Context) (*domain.Profile, error)

	// SaveProfile creates or replaces the local profile.
	SaveProfile(ctx context.Context, p *domain.Profile) error

	// ReplaceActivities swaps the cached activity list for a trip.
	ReplaceActivities(ctx context.Context, tripID string, activities []domain.Activity) error

	// ListActivities returns cached activities matching the query,
	// sorted by score descending.
	ListActivities(ctx context.Context, q ActivityQuery) ([]domain.Activity, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

// ActivityQuery filters the cached activity list. Zero values disable
// the corresponding filter.
type ActivityQuery struct {
	TripID   string
	Category string
	MinScore float64
	Limit    int
}
