package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	StatusOpen    = "open"
	StatusMatched = "matched"
	StatusClosed  = "closed"
)

// ValidStatus reports whether status is a known help request status.
// Transitions between valid statuses are unconstrained.
func ValidStatus(status string) bool {
	return status == StatusOpen || status == StatusMatched || status == StatusClosed
}

// HelpRequest is a student's ask for tutoring. StudentID never changes after
// creation; status is mutated in place by the owner or any tutor.
type HelpRequest struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID      uuid.UUID                   `gorm:"type:uuid;not null;index" json:"student_id"`
	Subject        string                      `gorm:"size:255;not null;index" json:"subject"`
	Description    string                      `gorm:"type:text" json:"description"`
	PreferredTimes datatypes.JSONSlice[string] `json:"preferred_times"`
	Status         string                      `gorm:"size:20;not null;default:'open';index" json:"status"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}
