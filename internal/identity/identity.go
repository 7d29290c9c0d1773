// Package identity bootstraps the local user profile consumed when
// composing outbound chat messages.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/0SRAF0/TravelPlaner/internal/domain"
	"github.com/0SRAF0/TravelPlaner/internal/store"
)

var anonIDPattern = regexp.MustCompile(`^anon_[a-f0-9]{32}$`)

func generateAnonID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate anonymous id: %w", err)
	}
	return "anon_" + hex.EncodeToString(buf), nil
}

// IsValidAnonID reports whether id matches the generated form.
func IsValidAnonID(id string) bool {
	return anonIDPattern.MatchString(id)
}

func deriveName(userID string) string {
	if len(userID) > 13 {
		return "traveler-" + userID[len(userID)-8:]
	}
	return "traveler"
}

// Bootstrap returns the stored profile, creating and persisting an
// anonymous one on first run. A non-empty preferredName overrides the
// stored display name.
func Bootstrap(ctx context.Context, repo store.Repository, preferredName string) (domain.Profile, error) {
	p, err := repo.GetProfile(ctx)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load profile: %w", err)
	}

	if p == nil {
		id, err := generateAnonID()
		if err != nil {
			return domain.Profile{}, err
		}
		now := time.Now()
		p = &domain.Profile{
			UserID:    id,
			Name:      deriveName(id),
			CreatedAt: now,
			UpdatedAt: now,
		}
		slog.Info("Created local profile", "user_id", p.UserID, "name", p.Name)
	}

	if preferredName != "" && p.Name != preferredName {
		p.Name = preferredName
		p.UpdatedAt = time.Now()
	}

	if err := repo.SaveProfile(ctx, p); err != nil {
		return domain.Profile{}, fmt.Errorf("persist profile: %w", err)
	}
	return *p, nil
}
