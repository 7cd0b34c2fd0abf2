package admin

import (
	"strings"

	"hostadmin-backend/internal/audit"
	"hostadmin-backend/internal/auth"
	"hostadmin-backend/internal/cache"
	"hostadmin-backend/internal/database"
	"hostadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`

	// Privileged fields: silently stripped unless the actor is a master
	// admin. Self-service profile edits must keep working without errors
	// when a client echoes these back.
	UserType   *models.UserType `json:"user_type"`
	PropertyID *uint            `json:"property_id"`
	IsActive   *bool            `json:"is_active"`
}

type AssignRolesRequest struct {
	RoleIDs []uint `json:"role_ids"`
}

// GET /api/users: master admin sees all, others only users of their property.
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := auth.CurrentUser(c)

		dbq := database.DB.Model(&models.User{}).Preload("Roles").Preload("Property")
		if !actor.IsMasterAdmin() {
			if actor.PropertyID == nil {
				return c.JSON(fiber.Map{"success": true, "users": []models.User{}})
			}
			dbq = dbq.Where("property_id = ?", *actor.PropertyID)
		}
		if v := c.Query("property_id"); v != "" && actor.IsMasterAdmin() {
			dbq = dbq.Where("property_id = ?", v)
		}

		var users []models.User
		if err := dbq.Order("created_at DESC").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Users could not be listed")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"users":   users,
		})
	}
}

// GET /api/users/:id
func GetUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.Preload("Roles").Preload("Property").
			First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		actor := auth.CurrentUser(c)
		if actor.ID != user.ID {
			if err := auth.Authorize(actor, auth.ActionView, user.PropertyID); err != nil {
				return fiber.NewError(fiber.StatusForbidden, "You do not have access to this user")
			}
		}

		return c.JSON(fiber.Map{
			"success": true,
			"user":    user,
		})
	}
}

// PUT /api/users/:id: self-edit or tenant-scoped admin edit.
func UpdateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		before := user

		actor := auth.CurrentUser(c)
		if !auth.CanEditUser(actor, &user) {
			return fiber.NewError(fiber.StatusForbidden, "You do not have access to this user")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.FullName != nil {
			name := strings.TrimSpace(*body.FullName)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Full name cannot be empty")
			}
			user.FullName = name
		}
		if body.Email != nil {
			email := strings.TrimSpace(strings.ToLower(*body.Email))
			if email == "" {
				user.Email = nil
			} else {
				user.Email = &email
			}
		}
		if body.Phone != nil {
			user.Phone = body.Phone
		}

		// Non-master actors lose the privileged fields without an error.
		if actor.IsMasterAdmin() {
			if body.UserType != nil {
				if !body.UserType.Valid() {
					return fiber.NewError(fiber.StatusBadRequest, "Unknown user type")
				}
				user.UserType = *body.UserType
			}
			if body.PropertyID != nil {
				var property models.Property
				if err := database.DB.First(&property, "id = ?", *body.PropertyID).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Unknown property")
				}
				user.PropertyID = body.PropertyID
			}
			if body.IsActive != nil {
				user.IsActive = *body.IsActive
			}
		}

		if err := database.DB.Save(&user).Error; err != nil {
			if isDuplicateKey(err) {
				return fiber.NewError(fiber.StatusBadRequest, "Email is already registered")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "User could not be updated")
		}
		cache.InvalidateUser(c.Context(), user.ID)

		audit.WriteLog(audit.LogOptions{
			PropertyID:  user.PropertyID,
			UserID:      actor.ID,
			UserName:    actor.FullName,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionUpdate,
			Description: "User updated",
			Before:      before,
			After:       user,
		})

		database.DB.Preload("Roles").Preload("Property").First(&user, user.ID)
		return c.JSON(fiber.Map{
			"success": true,
			"user":    user,
		})
	}
}

// DELETE /api/users/:id: master admin anywhere, property admin within the
// own property.
func DeleteUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		actor := auth.CurrentUser(c)
		if actor.ID == user.ID {
			return fiber.NewError(fiber.StatusBadRequest, "You cannot delete your own account")
		}
		if err := auth.Authorize(actor, auth.ActionManage, user.PropertyID); err != nil {
			return fiber.NewError(fiber.StatusForbidden, "You do not have access to this user")
		}

		if err := database.DB.Select("Roles").Delete(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "User could not be deleted")
		}
		cache.InvalidateUser(c.Context(), user.ID)

		audit.WriteLog(audit.LogOptions{
			PropertyID:  user.PropertyID,
			UserID:      actor.ID,
			UserName:    actor.FullName,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionDelete,
			Description: "User deleted",
			Before:      user,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/users/:id/roles: master admin only (route-level). Replaces
// the user's role set.
func AssignRolesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.Preload("Roles").First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		before := user.Roles

		var body AssignRolesRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var roles []models.Role
		if len(body.RoleIDs) > 0 {
			if err := database.DB.Find(&roles, "id IN ?", body.RoleIDs).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Roles could not be loaded")
			}
			if len(roles) != len(body.RoleIDs) {
				return fiber.NewError(fiber.StatusBadRequest, "One or more roles do not exist")
			}
		}

		if err := database.DB.Model(&user).Association("Roles").Replace(roles); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Roles could not be assigned")
		}
		cache.InvalidateUser(c.Context(), user.ID)

		actor := auth.CurrentUser(c)
		audit.WriteLog(audit.LogOptions{
			PropertyID:  user.PropertyID,
			UserID:      actor.ID,
			UserName:    actor.FullName,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionUpdate,
			Description: "User roles changed",
			Before:      before,
			After:       roles,
		})

		database.DB.Preload("Roles.Permissions").First(&user, user.ID)
		return c.JSON(fiber.Map{
			"success": true,
			"user":    user,
		})
	}
}
