package models

import "time"

// Default role names. Registration resolves the default role for a user type
// by name, never by id: ids depend on insertion order and are not stable
// across environments.
const (
	RoleNameMasterAdmin   = "Master Admin"
	RoleNamePropertyAdmin = "Property Admin"
	RoleNameStaff         = "Staff"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
	Users       []User       `gorm:"many2many:user_roles;" json:"users,omitempty"`
}

// Permission is an atomic capability. Codes use a dotted namespace, e.g.
// "hotel.rooms.manage" or "system.audit.view".
type Permission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:100;uniqueIndex;not null" json:"code"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Roles []Role `gorm:"many2many:role_permissions;" json:"roles,omitempty"`
}
