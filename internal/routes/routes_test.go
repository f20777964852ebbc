package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutorlink/tutorlink-api/internal/config"
	"github.com/tutorlink/tutorlink-api/internal/handlers"
	"github.com/tutorlink/tutorlink-api/internal/models"
	"github.com/tutorlink/tutorlink-api/internal/routes"
	"github.com/tutorlink/tutorlink-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
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

	cfg := &config.Config{JWTSecret: testSecret, TokenExpiry: 168 * time.Hour}

	authHandler := handlers.NewAuthHandler(services.NewAuthService(db, cfg))
	tutorHandler := handlers.NewTutorHandler(services.NewTutorService(db))
	requestHandler := handlers.NewHelpRequestHandler(services.NewHelpRequestService(db))
	healthHandler := handlers.NewHealthHandler(db)

	app := fiber.New()
	routes.Setup(app, cfg, db, authHandler, tutorHandler, requestHandler, healthHandler)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	status, raw := doRaw(t, app, method, path, token, body)

	var parsed map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return status, parsed
}

func doList(t *testing.T, app *fiber.App, method, path, token string) (int, []map[string]interface{}) {
	status, raw := doRaw(t, app, method, path, token, nil)

	var parsed []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return status, parsed
}

func doRaw(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func register(t *testing.T, app *fiber.App, email, role, name string) (string, string) {
	t.Helper()

	status, resp := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"email": email, "password": "secret123", "role": role, "name": name,
	})
	require.Equal(t, http.StatusCreated, status)

	token := resp["token"].(string)
	user := resp["user"].(map[string]interface{})
	return token, user["id"].(string)
}

func TestRegisterLoginMe(t *testing.T) {
	app, _ := newTestApp(t)

	token, userID := register(t, app, "a@x.com", "student", "Alice")

	status, resp := doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email": "a@x.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, resp["token"])

	status, me := doJSON(t, app, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, userID, me["id"])
	assert.Equal(t, "student", me["role"])
}

func TestRegisterDuplicateEmailIsBadRequest(t *testing.T) {
	app, _ := newTestApp(t)

	register(t, app, "a@x.com", "student", "Alice")
	status, _ := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"email": "a@x.com", "password": "secret123", "role": "student", "name": "Alice",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLoginInvalidCredentialsIsUnauthorized(t *testing.T) {
	app, _ := newTestApp(t)

	register(t, app, "a@x.com", "student", "Alice")
	status, _ := doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	app, _ := newTestApp(t)

	status, resp := doJSON(t, app, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Missing token", resp["message"])
}

func TestExpiredTokenIsUnauthorized(t *testing.T) {
	app, _ := newTestApp(t)
	_, userID := register(t, app, "a@x.com", "student", "Alice")

	expired := signToken(t, userID, "student", time.Now().Add(-time.Hour))
	status, resp := doJSON(t, app, http.MethodGet, "/auth/me", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token expired", resp["message"])
}

func TestUnknownSubjectIsUnauthorized(t *testing.T) {
	app, _ := newTestApp(t)

	// Valid signature but the subject was never registered.
	ghost := signToken(t, uuid.NewString(), "student", time.Now().Add(time.Hour))
	status, resp := doJSON(t, app, http.MethodGet, "/auth/me", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unknown user", resp["message"])
}

func TestStaleTokenRoleResolvedFromStore(t *testing.T) {
	app, db := newTestApp(t)
	token, _ := register(t, app, "a@x.com", "student", "Alice")

	// Role changes directly in storage; the old token must not win.
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "a@x.com").Update("role", models.RoleTutor).Error)

	status, me := doJSON(t, app, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "tutor", me["role"])
}

func TestTutorProfileAndPublicSearch(t *testing.T) {
	app, _ := newTestApp(t)
	tutorToken, tutorID := register(t, app, "t@x.com", "tutor", "Tina")
	studentToken, _ := register(t, app, "s@x.com", "student", "Sam")

	status, _ := doJSON(t, app, http.MethodPost, "/tutors/profile", studentToken, map[string]interface{}{
		"bio": "nope",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, resp := doJSON(t, app, http.MethodPost, "/tutors/profile", tutorToken, map[string]interface{}{
		"bio":          "numbers person",
		"subjects":     []string{"physics", "math", "math"},
		"availability": []string{"mon"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, resp["ok"])

	// Search needs no auth; availability stays private.
	status, results := doList(t, app, http.MethodGet, "/tutors/search?subject=math", "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, results, 1)
	assert.Equal(t, tutorID, results[0]["tutor_id"])
	assert.Equal(t, "Tina", results[0]["name"])
	assert.Equal(t, []interface{}{"math", "physics"}, results[0]["subjects"])
	assert.NotContains(t, results[0], "availability")

	status, results = doList(t, app, http.MethodGet, "/tutors/search?subject=latin", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, results)
}

func TestHelpRequestFlow(t *testing.T) {
	app, _ := newTestApp(t)
	studentToken, studentID := register(t, app, "a@x.com", "student", "Alice")
	tutorToken, _ := register(t, app, "t@x.com", "tutor", "Tina")

	// Tutors cannot post requests.
	status, _ := doJSON(t, app, http.MethodPost, "/help-requests", tutorToken, map[string]interface{}{
		"subject": "Algebra",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, created := doJSON(t, app, http.MethodPost, "/help-requests", studentToken, map[string]interface{}{
		"subject":         "Algebra",
		"description":     "quadratics",
		"preferred_times": []string{"sat am"},
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "open", created["status"])
	requestID := created["id"].(string)

	// Tutor sees the request with the student's name resolved.
	status, items := doList(t, app, http.MethodGet, "/help-requests", tutorToken)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, items, 1)
	assert.Equal(t, studentID, items[0]["student_id"])
	assert.Equal(t, "Alice", items[0]["student_name"])

	status, patched := doJSON(t, app, http.MethodPatch, "/help-requests/"+requestID, tutorToken, map[string]interface{}{
		"status": "matched",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "matched", patched["status"])

	// Student's own listing reflects the new status, mine=false included.
	status, items = doList(t, app, http.MethodGet, "/help-requests?mine=false", studentToken)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, items, 1)
	assert.Equal(t, "matched", items[0]["status"])
}

func TestUpdateStatusFailureCodes(t *testing.T) {
	app, _ := newTestApp(t)
	aliceToken, _ := register(t, app, "a@x.com", "student", "Alice")
	bobToken, _ := register(t, app, "b@x.com", "student", "Bob")

	status, created := doJSON(t, app, http.MethodPost, "/help-requests", aliceToken, map[string]interface{}{
		"subject": "Algebra",
	})
	require.Equal(t, http.StatusCreated, status)
	requestID := created["id"].(string)

	status, _ = doJSON(t, app, http.MethodPatch, "/help-requests/"+uuid.NewString(), aliceToken, map[string]interface{}{
		"status": "closed",
	})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodPatch, "/help-requests/"+requestID, aliceToken, map[string]interface{}{
		"status": "resolved",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPatch, "/help-requests/"+requestID, bobToken, map[string]interface{}{
		"status": "closed",
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func signToken(t *testing.T, sub, role string, expiry time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"iat":  time.Now().Add(-2 * time.Hour).Unix(),
		"exp":  expiry.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}
