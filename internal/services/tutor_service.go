package services

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/tutorlink/tutorlink-api/internal/dto"
	"github.com/tutorlink/tutorlink-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TutorService handles tutor profile upserts and public search.
type TutorService struct {
	db *gorm.DB
}

func NewTutorService(db *gorm.DB) *TutorService {
	return &TutorService{db: db}
}

// UpsertProfile replaces the caller's profile wholesale. Omitted fields reset
// to empty; partial updates are not supported.
func (s *TutorService) UpsertProfile(caller *models.User, req *dto.TutorProfileRequest) error {
	if caller.Role != models.RoleTutor {
		return ErrForbidden
	}

	subjects := datatypes.NewJSONSlice(emptyIfNil(req.Subjects))
	availability := datatypes.NewJSONSlice(emptyIfNil(req.Availability))

	return s.db.Transaction(func(tx *gorm.DB) error {
		var profile models.TutorProfile
		err := tx.Where("user_id = ?", caller.ID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.TutorProfile{
				ID:           uuid.New(),
				UserID:       caller.ID,
				Bio:          req.Bio,
				Subjects:     subjects,
				Availability: availability,
			}
			return tx.Create(&profile).Error
		}
		if err != nil {
			return err
		}

		// Updates via map so empty values still overwrite.
		return tx.Model(&profile).Updates(map[string]interface{}{
			"bio":          req.Bio,
			"subjects":     subjects,
			"availability": availability,
		}).Error
	})
}

// Search returns all tutor profiles joined with the owner's name, optionally
// narrowed to profiles whose subject set contains subject. Subject matching
// happens in Go since subjects live in a JSON column.
func (s *TutorService) Search(subject string) ([]dto.TutorSummary, error) {
	var profiles []models.TutorProfile
	if err := s.db.Order("created_at ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}

	names, err := s.userNames(profileUserIDs(profiles))
	if err != nil {
		return nil, err
	}

	results := make([]dto.TutorSummary, 0, len(profiles))
	for _, p := range profiles {
		subjects := dedupeSorted(p.Subjects)
		if subject != "" && !contains(subjects, subject) {
			continue
		}

		name := ""
		if n, ok := names[p.UserID]; ok {
			name = n
		}

		results = append(results, dto.TutorSummary{
			TutorID:  p.UserID,
			Name:     name,
			Bio:      p.Bio,
			Subjects: subjects,
		})
	}
	return results, nil
}

func (s *TutorService) userNames(ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var users []models.User
	if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

func profileUserIDs(profiles []models.TutorProfile) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	return ids
}

func dedupeSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
