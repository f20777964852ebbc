package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tutorlink/tutorlink-api/internal/config"
	"github.com/tutorlink/tutorlink-api/internal/dto"
	"github.com/tutorlink/tutorlink-api/internal/models"
	"gorm.io/gorm"
)

// JWTProtected validates the bearer token signature and expiry. It only
// proves the token is genuine; LoadUser decides whether the subject still
// exists.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	message := "Invalid token"
	switch {
	case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
		message = "Missing token"
	case errors.Is(err, jwt.ErrTokenExpired):
		message = "Token expired"
	}
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

// LoadUser resolves the token subject to its stored user record and places it
// in ctx locals. The role embedded in the token may be stale relative to the
// database, so downstream code only ever sees the current row. Every
// protected route chains JWTProtected then LoadUser.
func LoadUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := tokenSubject(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid token",
			})
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unknown user",
			})
		}

		c.Locals("currentUser", &user)
		return c.Next()
	}
}

// CurrentUser returns the user record resolved by LoadUser.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals("currentUser").(*models.User)
	if !ok || user == nil {
		return nil, errors.New("no authenticated user in context")
	}
	return user, nil
}

func tokenSubject(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}
