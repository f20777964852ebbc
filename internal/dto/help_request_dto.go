package dto

import "github.com/google/uuid"

type CreateHelpRequestRequest struct {
	Subject        string   `json:"subject"`
	Description    string   `json:"description"`
	PreferredTimes []string `json:"preferred_times"`
}

type CreateHelpRequestResponse struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type UpdateHelpRequestRequest struct {
	Status string `json:"status"`
}

// HelpRequestItem is a list row. StudentName is nil when the owning user
// record no longer exists.
type HelpRequestItem struct {
	ID             uuid.UUID `json:"id"`
	Subject        string    `json:"subject"`
	Status         string    `json:"status"`
	PreferredTimes []string  `json:"preferred_times"`
	StudentID      uuid.UUID `json:"student_id"`
	StudentName    *string   `json:"student_name"`
}
