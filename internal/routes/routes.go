package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tutorlink/tutorlink-api/internal/config"
	"github.com/tutorlink/tutorlink-api/internal/handlers"
	"github.com/tutorlink/tutorlink-api/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	tutorHandler *handlers.TutorHandler,
	requestHandler *handlers.HelpRequestHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Check)

	// Public routes
	app.Post("/auth/register", authHandler.Register)
	app.Post("/auth/login", authHandler.Login)
	app.Get("/tutors/search", tutorHandler.Search)

	// Protected routes: validate the token, then resolve the stored user
	// record so handlers never act on stale token claims.
	jwt := middleware.JWTProtected(cfg)
	loadUser := middleware.LoadUser(db)

	app.Get("/auth/me", jwt, loadUser, authHandler.Me)
	app.Post("/tutors/profile", jwt, loadUser, tutorHandler.UpsertProfile)
	app.Post("/help-requests", jwt, loadUser, requestHandler.Create)
	app.Get("/help-requests", jwt, loadUser, requestHandler.List)
	app.Patch("/help-requests/:id", jwt, loadUser, requestHandler.UpdateStatus)
}
