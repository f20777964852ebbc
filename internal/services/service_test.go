package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tutorlink/tutorlink-api/internal/config"
	"github.com/tutorlink/tutorlink-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a uniquely named in-memory SQLite database so tests stay
// isolated from each other while sharing one schema definition.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.TutorProfile{},
		&models.HelpRequest{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "test-secret",
		TokenExpiry: 168 * time.Hour,
	}
}

func createUser(t *testing.T, db *gorm.DB, role, email, name string) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "$2a$10$placeholderplaceholderplaceholderplaceh",
		Role:     role,
		Name:     name,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
