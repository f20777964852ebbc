package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tutorlink/tutorlink-api/internal/dto"
	"github.com/tutorlink/tutorlink-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HelpRequestService owns the help request ledger: creation, role-scoped
// listing and ownership-gated status updates.
type HelpRequestService struct {
	db *gorm.DB
}

func NewHelpRequestService(db *gorm.DB) *HelpRequestService {
	return &HelpRequestService{db: db}
}

// Create opens a new request owned by the caller. Only students may post.
func (s *HelpRequestService) Create(caller *models.User, req *dto.CreateHelpRequestRequest) (*models.HelpRequest, error) {
	if caller.Role != models.RoleStudent {
		return nil, ErrForbidden
	}

	hr := models.HelpRequest{
		ID:             uuid.New(),
		StudentID:      caller.ID,
		Subject:        req.Subject,
		Description:    req.Description,
		PreferredTimes: datatypes.NewJSONSlice(emptyIfNil(req.PreferredTimes)),
		Status:         models.StatusOpen,
	}

	if err := s.db.Create(&hr).Error; err != nil {
		return nil, fmt.Errorf("failed to create help request: %w", err)
	}
	return &hr, nil
}

// List returns requests newest first. Students only ever see their own rows,
// whatever the mine flag says; tutors see everything (mine is a no-op).
func (s *HelpRequestService) List(caller *models.User, status string, mine bool) ([]dto.HelpRequestItem, error) {
	query := s.db.Order("created_at DESC, id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if caller.Role == models.RoleStudent {
		query = query.Where("student_id = ?", caller.ID)
	}

	var requests []models.HelpRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}

	names, err := s.studentNames(requests)
	if err != nil {
		return nil, err
	}

	items := make([]dto.HelpRequestItem, 0, len(requests))
	for _, hr := range requests {
		var studentName *string
		if name, ok := names[hr.StudentID]; ok {
			studentName = &name
		}

		items = append(items, dto.HelpRequestItem{
			ID:             hr.ID,
			Subject:        hr.Subject,
			Status:         hr.Status,
			PreferredTimes: emptyIfNil(hr.PreferredTimes),
			StudentID:      hr.StudentID,
			StudentName:    studentName,
		})
	}
	return items, nil
}

// UpdateStatus sets any valid status on a request; transitions are
// unconstrained. Students may only touch their own requests, tutors any.
func (s *HelpRequestService) UpdateStatus(caller *models.User, requestID uuid.UUID, status string) (string, error) {
	var hr models.HelpRequest
	if err := s.db.First(&hr, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	if !models.ValidStatus(status) {
		return "", ErrInvalidStatus
	}

	if caller.Role == models.RoleStudent && hr.StudentID != caller.ID {
		return "", ErrForbidden
	}

	if err := s.db.Model(&hr).Update("status", status).Error; err != nil {
		return "", fmt.Errorf("failed to update status: %w", err)
	}
	return status, nil
}

func (s *HelpRequestService) studentNames(requests []models.HelpRequest) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(requests))
	seen := make(map[uuid.UUID]struct{}, len(requests))
	for _, hr := range requests {
		if _, ok := seen[hr.StudentID]; ok {
			continue
		}
		seen[hr.StudentID] = struct{}{}
		ids = append(ids, hr.StudentID)
	}

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
