package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tutorlink/tutorlink-api/internal/dto"
	"github.com/tutorlink/tutorlink-api/internal/middleware"
	"github.com/tutorlink/tutorlink-api/internal/services"
)

type TutorHandler struct {
	tutorService *services.TutorService
}

func NewTutorHandler(tutorService *services.TutorService) *TutorHandler {
	return &TutorHandler{tutorService: tutorService}
}

func (h *TutorHandler) UpsertProfile(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.TutorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.tutorService.UpsertProfile(user, &req); err != nil {
		if errors.Is(err, services.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Only tutors can edit their profile",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (h *TutorHandler) Search(c *fiber.Ctx) error {
	results, err := h.tutorService.Search(c.Query("subject"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(results)
}
