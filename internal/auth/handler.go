package auth

import (
	"errors"
	"strings"
	"time"

	"hostadmin-backend/internal/audit"
	"hostadmin-backend/internal/cache"
	"hostadmin-backend/internal/config"
	"hostadmin-backend/internal/database"
	"hostadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Advisory lock key serializing first-master-admin creation. Arbitrary but
// must stay stable across instances.
const bootstrapLockKey = 7734001

type RegisterRequest struct {
	FullName   string           `json:"full_name"`
	Email      string           `json:"email"`
	Phone      *string          `json:"phone"`
	Password   string           `json:"password"`
	UserType   *models.UserType `json:"user_type"`
	PropertyID *uint            `json:"property_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ResetSystemRequest struct {
	ConfirmReset string `json:"confirm_reset"`
}

// RegisterHandler implements the bootstrap gate: open to anonymous callers
// until the first master admin exists, master-admin-only afterwards.
func RegisterHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.FullName = strings.TrimSpace(body.FullName)
		if body.FullName == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Full name, email and password are required")
		}

		userType := models.UserTypeStaff
		if body.UserType != nil {
			if !body.UserType.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Unknown user type")
			}
			userType = *body.UserType
		}

		var adminCount int64
		if err := database.DB.Model(&models.User{}).
			Where("user_type = ?", models.UserTypeMasterAdmin).
			Count(&adminCount).Error; err != nil {
			return err
		}

		if adminCount > 0 {
			actor := CurrentUser(c)
			if actor == nil {
				return lockedRegistrationError(c, fiber.StatusUnauthorized,
					"Registration is locked, sign in as a master admin")
			}
			if !actor.IsMasterAdmin() {
				return lockedRegistrationError(c, fiber.StatusForbidden,
					"Only a master admin can register new users")
			}
		}

		if userType != models.UserTypeMasterAdmin && body.PropertyID == nil {
			return fiber.NewError(fiber.StatusBadRequest, "A property is required for this user type")
		}
		if body.PropertyID != nil {
			var property models.Property
			if err := database.DB.First(&property, "id = ?", *body.PropertyID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Unknown property")
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hashStr := string(hash)

		user := models.User{
			FullName:     body.FullName,
			Email:        &body.Email,
			Phone:        body.Phone,
			UserType:     userType,
			PropertyID:   body.PropertyID,
			PasswordHash: &hashStr,
			IsActive:     true,
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if userType == models.UserTypeMasterAdmin && adminCount == 0 {
				// Serialize the bootstrap: two racing anonymous requests
				// must not both become "the first admin". Advisory locks
				// exist on Postgres only; other dialects rely on the
				// re-count below.
				if tx.Dialector.Name() == "postgres" {
					if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", bootstrapLockKey).Error; err != nil {
						return err
					}
				}
				var recheck int64
				if err := tx.Model(&models.User{}).
					Where("user_type = ?", models.UserTypeMasterAdmin).
					Count(&recheck).Error; err != nil {
					return err
				}
				if recheck > 0 {
					return fiber.NewError(fiber.StatusForbidden, "A master admin already exists")
				}
			}

			if err := tx.Create(&user).Error; err != nil {
				if isDuplicateKey(err) {
					return fiber.NewError(fiber.StatusBadRequest, "Email is already registered")
				}
				return err
			}

			var role models.Role
			if err := tx.Where("name = ?", defaultRoleName(userType)).First(&role).Error; err != nil {
				return err
			}
			return tx.Model(&user).Association("Roles").Append(&role)
		})
		if err != nil {
			return err
		}

		tokens, err := IssueTokens(cfg, &user)
		if err != nil {
			return err
		}

		actorID, actorName := actorIdentity(c, &user)
		audit.WriteLog(audit.LogOptions{
			PropertyID:  user.PropertyID,
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionCreate,
			Description: "User registered",
			After:       user,
		})

		database.DB.Preload("Roles").First(&user, user.ID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"user":    user,
			"tokens":  tokens,
		})
	}
}

func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Email and password are required")
		}

		// Unknown email and wrong password produce the same message so the
		// endpoint cannot be used to enumerate accounts.
		var user models.User
		if err := database.DB.Preload("Roles.Permissions").Preload("Property").
			Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}
		if user.PasswordHash == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}
		if !user.IsActive {
			return fiber.NewError(fiber.StatusUnauthorized, "Account is inactive")
		}

		tokens, err := IssueTokens(cfg, &user)
		if err != nil {
			return err
		}

		now := time.Now()
		database.DB.Model(&user).Update("last_login", now)
		user.LastLogin = &now

		audit.WriteLog(audit.LogOptions{
			PropertyID:  user.PropertyID,
			UserID:      user.ID,
			UserName:    user.FullName,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionLogin,
			Description: "User logged in",
		})

		return c.JSON(fiber.Map{
			"success": true,
			"user":    user,
			"tokens":  tokens,
		})
	}
}

func RefreshTokenHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RefreshRequest
		if err := c.BodyParser(&body); err != nil || body.RefreshToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Refresh token is required")
		}

		tokens, _, err := Refresh(cfg, body.RefreshToken)
		if err != nil {
			if errors.Is(err, ErrInvalidRefreshToken) {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid refresh token")
			}
			return err
		}

		return c.JSON(fiber.Map{
			"success": true,
			"tokens":  tokens,
		})
	}
}

// LogoutHandler revokes the stored refresh token. Always returns 200: a
// second logout has nothing to revoke and is a harmless no-op.
func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if err := Revoke(user.ID); err != nil {
			return err
		}
		cache.InvalidateUser(c.Context(), user.ID)

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Logged out",
		})
	}
}

func ProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"user":    CurrentUser(c),
		})
	}
}

// ChangePasswordHandler re-hashes the password and revokes the refresh token,
// forcing a fresh login everywhere.
func ChangePasswordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)

		var body ChangePasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.CurrentPassword == "" || body.NewPassword == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Current and new password are required")
		}

		// The cached copy has no password hash, reload the row.
		var stored models.User
		if err := database.DB.First(&stored, "id = ?", user.ID).Error; err != nil {
			return err
		}
		if stored.PasswordHash == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Account has no password set")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte(body.CurrentPassword)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Current password is incorrect")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		if err := database.DB.Model(&stored).Updates(map[string]interface{}{
			"password_hash": string(hash),
			"refresh_token": nil,
		}).Error; err != nil {
			return err
		}
		cache.InvalidateUser(c.Context(), user.ID)

		audit.WriteLog(audit.LogOptions{
			PropertyID:  user.PropertyID,
			UserID:      user.ID,
			UserName:    user.FullName,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionUpdate,
			Description: "Password changed",
		})

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Password updated, please sign in again",
		})
	}
}

// ResetSystemHandler wipes every user. Development helper only, hard-disabled
// in production.
func ResetSystemHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.IsProduction() {
			return fiber.NewError(fiber.StatusForbidden, "System reset is disabled in production")
		}

		var body ResetSystemRequest
		if err := c.BodyParser(&body); err != nil || body.ConfirmReset != "YES_DELETE_ALL_USERS" {
			return fiber.NewError(fiber.StatusBadRequest, "Confirmation phrase missing or wrong")
		}

		var count int64
		database.DB.Model(&models.User{}).Count(&count)

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("DELETE FROM user_roles").Error; err != nil {
				return err
			}
			return tx.Exec("DELETE FROM users").Error
		})
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"success":       true,
			"message":       "All users deleted, registration is open again",
			"deleted_count": count,
		})
	}
}

func defaultRoleName(t models.UserType) string {
	switch t {
	case models.UserTypeMasterAdmin:
		return models.RoleNameMasterAdmin
	case models.UserTypePropertyAdmin:
		return models.RoleNamePropertyAdmin
	default:
		return models.RoleNameStaff
	}
}

// lockedRegistrationError points the caller at the existing admin so recovery
// flows know who to contact.
func lockedRegistrationError(c *fiber.Ctx, status int, message string) error {
	var admin models.User
	payload := fiber.Map{
		"success": false,
		"message": message,
	}
	if err := database.DB.
		Where("user_type = ?", models.UserTypeMasterAdmin).
		Order("created_at ASC").First(&admin).Error; err == nil {
		payload["existing_admin"] = fiber.Map{
			"email":      admin.Email,
			"created_at": admin.CreatedAt,
		}
	}
	return c.Status(status).JSON(payload)
}

func actorIdentity(c *fiber.Ctx, fallback *models.User) (uint, string) {
	if actor := CurrentUser(c); actor != nil {
		return actor.ID, actor.FullName
	}
	return fallback.ID, fallback.FullName
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key")
}
