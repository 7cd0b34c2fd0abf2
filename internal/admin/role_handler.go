package admin

import (
	"strings"

	"hostadmin-backend/internal/audit"
	"hostadmin-backend/internal/auth"
	"hostadmin-backend/internal/database"
	"hostadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type PermissionRequest struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type AssignPermissionsRequest struct {
	PermissionIDs []uint `json:"permission_ids"`
}

// GET /api/admin/roles
func ListRolesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var roles []models.Role
		if err := database.DB.Preload("Permissions").Order("name ASC").Find(&roles).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Roles could not be listed")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"roles":   roles,
		})
	}
}

// POST /api/admin/roles
func CreateRoleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RoleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Role name is required")
		}

		role := models.Role{Name: body.Name, Description: body.Description}
		if err := database.DB.Create(&role).Error; err != nil {
			if isDuplicateKey(err) {
				return fiber.NewError(fiber.StatusBadRequest, "Role name is already in use")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Role could not be created")
		}

		actor := auth.CurrentUser(c)
		audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.FullName,
			EntityType:  "role",
			EntityID:    role.ID,
			Action:      models.AuditActionCreate,
			Description: "Role created",
			After:       role,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"role":    role,
		})
	}
}

// PUT /api/admin/roles/:id
func UpdateRoleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var role models.Role
		if err := database.DB.First(&role, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Role not found")
		}
		before := role

		var body UpdateRoleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Role name cannot be empty")
			}
			role.Name = name
		}
		if body.Description != nil {
			role.Description = *body.Description
		}

		if err := database.DB.Save(&role).Error; err != nil {
			if isDuplicateKey(err) {
				return fiber.NewError(fiber.StatusBadRequest, "Role name is already in use")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Role could not be updated")
		}

		actor := auth.CurrentUser(c)
		audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.FullName,
			EntityType:  "role",
			EntityID:    role.ID,
			Action:      models.AuditActionUpdate,
			Description: "Role updated",
			Before:      before,
			After:       role,
		})

		return c.JSON(fiber.Map{
			"success": true,
			"role":    role,
		})
	}
}

// DELETE /api/admin/roles/:id: refused while users still hold the role.
func DeleteRoleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var role models.Role
		if err := database.DB.First(&role, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Role not found")
		}

		userCount := database.DB.Model(&role).Association("Users").Count()
		if userCount > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success":    false,
				"message":    "Role is still assigned to users",
				"user_count": userCount,
			})
		}

		if err := database.DB.Select("Permissions").Delete(&role).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Role could not be deleted")
		}

		actor := auth.CurrentUser(c)
		audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.FullName,
			EntityType:  "role",
			EntityID:    role.ID,
			Action:      models.AuditActionDelete,
			Description: "Role deleted",
			Before:      role,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/roles/:id/permissions: replaces the role's permission set.
func AssignPermissionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var role models.Role
		if err := database.DB.Preload("Permissions").First(&role, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Role not found")
		}
		before := role.Permissions

		var body AssignPermissionsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var perms []models.Permission
		if len(body.PermissionIDs) > 0 {
			if err := database.DB.Find(&perms, "id IN ?", body.PermissionIDs).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Permissions could not be loaded")
			}
			if len(perms) != len(body.PermissionIDs) {
				return fiber.NewError(fiber.StatusBadRequest, "One or more permissions do not exist")
			}
		}

		if err := database.DB.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Permissions could not be assigned")
		}

		actor := auth.CurrentUser(c)
		audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.FullName,
			EntityType:  "role",
			EntityID:    role.ID,
			Action:      models.AuditActionUpdate,
			Description: "Role permissions changed",
			Before:      before,
			After:       perms,
		})

		database.DB.Preload("Permissions").First(&role, role.ID)
		return c.JSON(fiber.Map{
			"success": true,
			"role":    role,
		})
	}
}

// GET /api/admin/permissions
func ListPermissionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var perms []models.Permission
		if err := database.DB.Order("code ASC").Find(&perms).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Permissions could not be listed")
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"permissions": perms,
		})
	}
}

// POST /api/admin/permissions
func CreatePermissionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PermissionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Code = strings.TrimSpace(strings.ToLower(body.Code))
		if body.Code == "" || !strings.Contains(body.Code, ".") {
			return fiber.NewError(fiber.StatusBadRequest, "Permission code must use a dotted namespace, e.g. hotel.rooms.manage")
		}

		perm := models.Permission{Code: body.Code, Description: body.Description}
		if err := database.DB.Create(&perm).Error; err != nil {
			if isDuplicateKey(err) {
				return fiber.NewError(fiber.StatusBadRequest, "Permission code is already in use")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Permission could not be created")
		}

		actor := auth.CurrentUser(c)
		audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.FullName,
			EntityType:  "permission",
			EntityID:    perm.ID,
			Action:      models.AuditActionCreate,
			Description: "Permission created",
			After:       perm,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":    true,
			"permission": perm,
		})
	}
}
