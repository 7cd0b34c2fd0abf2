package audit

import (
	"encoding/json"

	"hostadmin-backend/internal/database"
	"hostadmin-backend/internal/models"

	"github.com/rs/zerolog/log"
)

type LogOptions struct {
	PropertyID  *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog appends an audit row. Failures are logged and swallowed: the
// audit trail must never fail the mutation it describes.
func WriteLog(opts LogOptions) {
	// jsonb columns need the JSON null literal, not an empty string
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		PropertyID:  opts.PropertyID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		log.Error().Err(err).
			Str("entity_type", opts.EntityType).
			Uint("entity_id", opts.EntityID).
			Msg("audit log write failed")
	}
}
