package admin

import (
	"strings"

	"hostadmin-backend/internal/audit"
	"hostadmin-backend/internal/auth"
	"hostadmin-backend/internal/database"
	"hostadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreatePropertyRequest struct {
	Code         string              `json:"code"`
	Name         string              `json:"name"`
	PropertyType models.PropertyType `json:"property_type"`
	AddressLine  string              `json:"address_line"`
	City         string              `json:"city"`
	State        string              `json:"state"`
	Country      string              `json:"country"`
	PostalCode   string              `json:"postal_code"`
	Timezone     string              `json:"timezone"`
	ContactEmail string              `json:"contact_email"`
	ContactPhone string              `json:"contact_phone"`
}

type UpdatePropertyRequest struct {
	Code         *string              `json:"code"`
	Name         *string              `json:"name"`
	PropertyType *models.PropertyType `json:"property_type"`
	AddressLine  *string              `json:"address_line"`
	City         *string              `json:"city"`
	State        *string              `json:"state"`
	Country      *string              `json:"country"`
	PostalCode   *string              `json:"postal_code"`
	Timezone     *string              `json:"timezone"`
	ContactEmail *string              `json:"contact_email"`
	ContactPhone *string              `json:"contact_phone"`
	IsActive     *bool                `json:"is_active"`
}

// POST /api/admin/properties: master admin only (route-level).
func CreatePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePropertyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Code = strings.ToUpper(strings.TrimSpace(body.Code))
		body.Name = strings.TrimSpace(body.Name)
		if body.Code == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Code and name are required")
		}
		if !body.PropertyType.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Property type must be HOTEL or RESTAURANT")
		}

		property := models.Property{
			Code:         body.Code,
			Name:         body.Name,
			PropertyType: body.PropertyType,
			AddressLine:  body.AddressLine,
			City:         body.City,
			State:        body.State,
			Country:      body.Country,
			PostalCode:   body.PostalCode,
			Timezone:     body.Timezone,
			ContactEmail: strings.TrimSpace(strings.ToLower(body.ContactEmail)),
			ContactPhone: strings.TrimSpace(body.ContactPhone),
			IsActive:     true,
		}
		if property.Timezone == "" {
			property.Timezone = "UTC"
		}

		if err := database.DB.Create(&property).Error; err != nil {
			if isDuplicateKey(err) {
				return fiber.NewError(fiber.StatusBadRequest, "Property code is already in use")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Property could not be created")
		}

		actor := auth.CurrentUser(c)
		audit.WriteLog(audit.LogOptions{
			PropertyID:  &property.ID,
			UserID:      actor.ID,
			UserName:    actor.FullName,
			EntityType:  "property",
			EntityID:    property.ID,
			Action:      models.AuditActionCreate,
			Description: "Property created",
			After:       property,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":  true,
			"property": property,
		})
	}
}

// GET /api/properties: master admin sees all, everyone else only their own.
func ListPropertiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := auth.CurrentUser(c)

		dbq := database.DB.Model(&models.Property{})
		if !actor.IsMasterAdmin() {
			if actor.PropertyID == nil {
				return c.JSON(fiber.Map{"success": true, "properties": []models.Property{}})
			}
			dbq = dbq.Where("id = ?", *actor.PropertyID)
		}

		var properties []models.Property
		if err := dbq.Order("name ASC").Find(&properties).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Properties could not be listed")
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"properties": properties,
		})
	}
}

// GET /api/properties/:id
func GetPropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var property models.Property
		if err := database.DB.First(&property, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Property not found")
		}

		if err := auth.Authorize(auth.CurrentUser(c), auth.ActionView, &property.ID); err != nil {
			return fiber.NewError(fiber.StatusForbidden, "You do not have access to this property")
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"property": property,
		})
	}
}

// PUT /api/admin/properties/:id: master admin only (route-level).
func UpdatePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var property models.Property
		if err := database.DB.First(&property, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Property not found")
		}
		before := property

		var body UpdatePropertyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Code != nil {
			code := strings.ToUpper(strings.TrimSpace(*body.Code))
			if code == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Code cannot be empty")
			}
			property.Code = code
		}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			property.Name = name
		}
		if body.PropertyType != nil {
			if !body.PropertyType.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Property type must be HOTEL or RESTAURANT")
			}
			property.PropertyType = *body.PropertyType
		}
		if body.AddressLine != nil {
			property.AddressLine = *body.AddressLine
		}
		if body.City != nil {
			property.City = *body.City
		}
		if body.State != nil {
			property.State = *body.State
		}
		if body.Country != nil {
			property.Country = *body.Country
		}
		if body.PostalCode != nil {
			property.PostalCode = *body.PostalCode
		}
		if body.Timezone != nil && *body.Timezone != "" {
			property.Timezone = *body.Timezone
		}
		if body.ContactEmail != nil {
			property.ContactEmail = strings.TrimSpace(strings.ToLower(*body.ContactEmail))
		}
		if body.ContactPhone != nil {
			property.ContactPhone = strings.TrimSpace(*body.ContactPhone)
		}
		if body.IsActive != nil {
			property.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&property).Error; err != nil {
			if isDuplicateKey(err) {
				return fiber.NewError(fiber.StatusBadRequest, "Property code is already in use")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Property could not be updated")
		}

		actor := auth.CurrentUser(c)
		audit.WriteLog(audit.LogOptions{
			PropertyID:  &property.ID,
			UserID:      actor.ID,
			UserName:    actor.FullName,
			EntityType:  "property",
			EntityID:    property.ID,
			Action:      models.AuditActionUpdate,
			Description: "Property updated",
			Before:      before,
			After:       property,
		})

		return c.JSON(fiber.Map{
			"success":  true,
			"property": property,
		})
	}
}

// DELETE /api/admin/properties/:id: refused while users reference the
// property; the payload carries the blocking user count.
func DeletePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var property models.Property
		if err := database.DB.First(&property, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Property not found")
		}

		var userCount int64
		if err := database.DB.Model(&models.User{}).
			Where("property_id = ?", property.ID).
			Count(&userCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Property could not be deleted")
		}
		if userCount > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success":    false,
				"message":    "Property still has users assigned to it",
				"user_count": userCount,
			})
		}

		if err := database.DB.Delete(&property).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Property could not be deleted")
		}

		actor := auth.CurrentUser(c)
		audit.WriteLog(audit.LogOptions{
			PropertyID:  &property.ID,
			UserID:      actor.ID,
			UserName:    actor.FullName,
			EntityType:  "property",
			EntityID:    property.ID,
			Action:      models.AuditActionDelete,
			Description: "Property deleted",
			Before:      property,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
