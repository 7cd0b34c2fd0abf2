package audit

import (
	"fmt"

	"hostadmin-backend/internal/database"
	"hostadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/admin/audit-logs?entity_type=user&entity_id=1&user_id=1&property_id=1
// Master admin only (enforced at the route).
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.AuditLog{})

		if v := c.Query("property_id"); v != "" {
			var id uint
			if _, err := fmt.Sscan(v, &id); err == nil && id > 0 {
				dbq = dbq.Where("property_id = ?", id)
			}
		}
		if v := c.Query("user_id"); v != "" {
			var id uint
			if _, err := fmt.Sscan(v, &id); err == nil && id > 0 {
				dbq = dbq.Where("user_id = ?", id)
			}
		}
		if v := c.Query("entity_type"); v != "" {
			dbq = dbq.Where("entity_type = ?", v)
		}
		if v := c.Query("entity_id"); v != "" {
			var id uint
			if _, err := fmt.Sscan(v, &id); err == nil && id > 0 {
				dbq = dbq.Where("entity_id = ?", id)
			}
		}

		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}
		offset := c.QueryInt("offset", 0)
		if offset < 0 {
			offset = 0
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Audit logs could not be listed")
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC").
			Limit(limit).Offset(offset).
			Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Audit logs could not be listed")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"total":   total,
			"logs":    logs,
		})
	}
}
