package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"hostadmin-backend/internal/config"
	"hostadmin-backend/internal/database"
	"hostadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Property{},
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.AuditLog{},
	))
	require.NoError(t, database.SeedRBAC(db))

	database.DB = db
	return db
}

func testCfg() *config.Config {
	return &config.Config{
		Environment:     "test",
		JWTSecret:       testSecret,
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}
}

func newTestApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"success": false,
					"message": e.Message,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Unexpected server error",
			})
		},
	})

	api := app.Group("/api")
	api.Post("/auth/register", OptionalJWTMiddleware(cfg), RegisterHandler(cfg))
	api.Post("/auth/login", LoginHandler(cfg))
	api.Post("/auth/refresh-token", RefreshTokenHandler(cfg))

	protected := api.Group("", JWTMiddleware(cfg))
	protected.Post("/auth/logout", LogoutHandler())
	protected.Get("/auth/profile", ProfileHandler())

	return app
}

func createAccount(t *testing.T, db *gorm.DB, email string, userType models.UserType, propertyID *uint) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("Secret@123"), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)

	user := models.User{
		FullName:     "Test Account",
		Email:        &email,
		UserType:     userType,
		PropertyID:   propertyID,
		PasswordHash: &hashStr,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func doJSON(t *testing.T, app *fiber.App, method, path, bearer string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func TestRefreshRotationInvalidatesOldToken(t *testing.T) {
	db := setupTestDB(t)
	cfg := testCfg()
	user := createAccount(t, db, "rotate@example.com", models.UserTypeMasterAdmin, nil)

	pair1, err := IssueTokens(cfg, user)
	require.NoError(t, err)

	pair2, refreshed, err := Refresh(cfg, pair1.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.ID)

	// Round trip: the rotated access token still identifies the same user.
	claims, err := ParseAccessToken(cfg.JWTSecret, pair2.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// The rotated-out token must be unusable.
	_, _, err = Refresh(cfg, pair1.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// The new token keeps working.
	_, _, err = Refresh(cfg, pair2.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshHandlerRejectsRotatedToken(t *testing.T) {
	db := setupTestDB(t)
	cfg := testCfg()
	app := newTestApp(cfg)
	user := createAccount(t, db, "rotate-http@example.com", models.UserTypeMasterAdmin, nil)

	pair1, err := IssueTokens(cfg, user)
	require.NoError(t, err)

	resp, payload := doJSON(t, app, http.MethodPost, "/api/auth/refresh-token", "",
		map[string]string{"refreshToken": pair1.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["success"])

	resp, payload = doJSON(t, app, http.MethodPost, "/api/auth/refresh-token", "",
		map[string]string{"refreshToken": pair1.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid refresh token", payload["message"])
}

func TestLogoutIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	cfg := testCfg()
	app := newTestApp(cfg)
	user := createAccount(t, db, "logout@example.com", models.UserTypeStaff, nil)

	pair, err := IssueTokens(cfg, user)
	require.NoError(t, err)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/logout", pair.AccessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Nil(t, stored.RefreshToken, "logout must clear the stored refresh token")

	// Second logout has nothing to revoke and still succeeds.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/logout", pair.AccessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The revoked refresh token is gone for good.
	_, _, err = Refresh(cfg, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRegistrationLocksAfterFirstMasterAdmin(t *testing.T) {
	setupTestDB(t)
	cfg := testCfg()
	app := newTestApp(cfg)

	masterType := string(models.UserTypeMasterAdmin)

	// Open: an anonymous caller may create the first master admin.
	resp, payload := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"full_name": "First Admin",
		"email":     "first@example.com",
		"password":  "Secret@123",
		"user_type": masterType,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tokens := payload["tokens"].(map[string]any)
	adminAccess := tokens["accessToken"].(string)

	// Locked: the same anonymous call now fails and points at the admin.
	resp, payload = doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"full_name": "Second Admin",
		"email":     "second@example.com",
		"password":  "Secret@123",
		"user_type": masterType,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	existing, ok := payload["existing_admin"].(map[string]any)
	require.True(t, ok, "locked response must point at the existing admin")
	assert.Equal(t, "first@example.com", existing["email"])

	// The authenticated master admin may keep registering.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/register", adminAccess, map[string]any{
		"full_name": "Second Admin",
		"email":     "second@example.com",
		"password":  "Secret@123",
		"user_type": masterType,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// A non-admin caller gets 403, not 401.
	property := models.Property{Code: "HTL1", Name: "Harbor Hotel", PropertyType: models.PropertyTypeHotel, IsActive: true}
	require.NoError(t, database.DB.Create(&property).Error)

	resp, payload = doJSON(t, app, http.MethodPost, "/api/auth/register", adminAccess, map[string]any{
		"full_name":   "Front Desk",
		"email":       "staff@example.com",
		"password":    "Secret@123",
		"user_type":   string(models.UserTypeStaff),
		"property_id": property.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	staffTokens := payload["tokens"].(map[string]any)
	staffAccess := staffTokens["accessToken"].(string)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/register", staffAccess, map[string]any{
		"full_name": "Another Staff",
		"email":     "staff2@example.com",
		"password":  "Secret@123",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLoginSeededMasterAdmin(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, database.SeedDevAdmin(db))

	cfg := testCfg()
	app := newTestApp(cfg)

	resp, payload := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "admin@admin.com",
		"password": "Admin@123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	user := payload["user"].(map[string]any)
	assert.Equal(t, string(models.UserTypeMasterAdmin), user["user_type"])

	roles, ok := user["roles"].([]any)
	require.True(t, ok, "login response must include roles")
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.(map[string]any)["name"].(string))
	}
	assert.Contains(t, names, models.RoleNameMasterAdmin)

	// Wrong password and unknown email share one message.
	resp, payload = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "admin@admin.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", payload["message"])

	resp, payload = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@admin.com",
		"password": "Admin@123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", payload["message"])
}
