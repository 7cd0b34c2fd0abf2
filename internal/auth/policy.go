package auth

import (
	"errors"

	"hostadmin-backend/internal/models"
)

// Action classifies what the caller wants to do with a tenant-owned resource.
type Action string

const (
	// ActionView covers reads of tenant rows.
	ActionView Action = "view"
	// ActionManage covers writes to tenant rows (create, update, delete).
	ActionManage Action = "manage"
	// ActionAdminister covers system-level mutations: user types, property
	// bindings, active flags, roles, permissions, properties themselves.
	ActionAdminister Action = "administer"
)

var ErrDenied = errors.New("insufficient privileges for this resource")

// Authorize decides whether actor may perform action on a resource belonging
// to the property identified by propertyID (nil means the resource has no
// tenant, e.g. global roles). Master admins pass everything; everyone else is
// confined to their own property, and staff never write.
func Authorize(actor *models.User, action Action, propertyID *uint) error {
	if actor == nil || !actor.IsActive {
		return ErrDenied
	}

	if actor.UserType == models.UserTypeMasterAdmin {
		return nil
	}

	if action == ActionAdminister {
		return ErrDenied
	}

	// Untenanted resources are master-admin territory.
	if propertyID == nil {
		return ErrDenied
	}
	if actor.PropertyID == nil || *actor.PropertyID != *propertyID {
		return ErrDenied
	}

	if action == ActionManage && actor.UserType == models.UserTypeStaff {
		return ErrDenied
	}

	return nil
}

// CanEditUser reports whether actor may edit the target user at all. Field
// level restrictions (user_type, property_id, is_active) are handled by the
// handler, which strips them for non-master actors.
func CanEditUser(actor, target *models.User) bool {
	if actor == nil || target == nil {
		return false
	}
	if actor.IsMasterAdmin() {
		return true
	}
	if actor.ID == target.ID {
		return true
	}
	// Property admins manage users of their own property.
	if actor.UserType == models.UserTypePropertyAdmin &&
		actor.PropertyID != nil && target.PropertyID != nil &&
		*actor.PropertyID == *target.PropertyID {
		return true
	}
	return false
}
