package models

import (
	"time"

	"github.com/google/uuid"
)

// User is referenced by id throughout the stores; no mutation paths exist
// beyond initial creation (used by the seeder).
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
