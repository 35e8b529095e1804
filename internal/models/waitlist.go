package models

import (
	"time"

	"github.com/google/uuid"
)

// WaitlistEntry is a signup captured before general availability
type WaitlistEntry struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
