package domain

import (
	"time"
)

// Profile identifies the local user when composing outbound chat
// messages. It is read once at connect time.
type Profile struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
