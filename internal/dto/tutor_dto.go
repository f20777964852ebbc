package dto

import "github.com/google/uuid"

type TutorProfileRequest struct {
	Bio          string   `json:"bio"`
	Subjects     []string `json:"subjects"`
	Availability []string `json:"availability"`
}

// TutorSummary is the public search result row. Availability is deliberately
// withheld; subjects come back deduplicated and sorted.
type TutorSummary struct {
	TutorID  uuid.UUID `json:"tutor_id"`
	Name     string    `json:"name"`
	Bio      string    `json:"bio"`
	Subjects []string  `json:"subjects"`
}
