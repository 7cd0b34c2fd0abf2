package models

import "time"

type UserType string

const (
	UserTypeMasterAdmin   UserType = "MASTER_ADMIN"
	UserTypePropertyAdmin UserType = "PROPERTY_ADMIN"
	UserTypeStaff         UserType = "STAFF"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeMasterAdmin, UserTypePropertyAdmin, UserTypeStaff:
		return true
	}
	return false
}

type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FullName   string    `gorm:"size:100;not null" json:"full_name"`
	Email      *string   `gorm:"size:100;uniqueIndex" json:"email"`
	Phone      *string   `gorm:"size:30" json:"phone"`
	UserType   UserType  `gorm:"size:20;not null;default:STAFF" json:"user_type"`
	PropertyID *uint     `gorm:"index" json:"property_id"`
	Property   *Property `json:"property,omitempty"`

	// Nullable: staff accounts may be created without a password and can
	// therefore never log in directly.
	PasswordHash *string `gorm:"size:255" json:"-"`

	// Single active refresh token per user. Rotated on every refresh,
	// cleared on logout and password change.
	RefreshToken *string `gorm:"size:512" json:"-"`

	IsActive  bool       `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Roles []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

func (u *User) IsMasterAdmin() bool {
	return u.UserType == UserTypeMasterAdmin
}

// HasPermission reports whether any of the user's roles carries the given
// permission code. Roles.Permissions must be preloaded.
func (u *User) HasPermission(code string) bool {
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if p.Code == code {
				return true
			}
		}
	}
	return false
}

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
