package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TutorProfile is the public card a tutor maintains, one per user.
// Subjects and availability are ordered string lists stored as JSON columns.
type TutorProfile struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Bio          string                      `gorm:"type:text" json:"bio"`
	Subjects     datatypes.JSONSlice[string] `json:"subjects"`
	Availability datatypes.JSONSlice[string] `json:"availability"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}
