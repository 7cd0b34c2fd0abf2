package auth

import (
	"testing"

	"hostadmin-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func actor(t models.UserType, propertyID *uint) *models.User {
	return &models.User{
		ID:         1,
		UserType:   t,
		PropertyID: propertyID,
		IsActive:   true,
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name       string
		actor      *models.User
		action     Action
		propertyID *uint
		allowed    bool
	}{
		{"nil actor denied", nil, ActionView, uintPtr(1), false},
		{"inactive actor denied", &models.User{UserType: models.UserTypeMasterAdmin}, ActionView, uintPtr(1), false},

		{"master views any tenant", actor(models.UserTypeMasterAdmin, nil), ActionView, uintPtr(9), true},
		{"master manages any tenant", actor(models.UserTypeMasterAdmin, nil), ActionManage, uintPtr(9), true},
		{"master administers", actor(models.UserTypeMasterAdmin, nil), ActionAdminister, nil, true},

		{"property admin views own property", actor(models.UserTypePropertyAdmin, uintPtr(3)), ActionView, uintPtr(3), true},
		{"property admin manages own property", actor(models.UserTypePropertyAdmin, uintPtr(3)), ActionManage, uintPtr(3), true},
		{"property admin cross-tenant view denied", actor(models.UserTypePropertyAdmin, uintPtr(3)), ActionView, uintPtr(4), false},
		{"property admin cross-tenant manage denied", actor(models.UserTypePropertyAdmin, uintPtr(3)), ActionManage, uintPtr(4), false},
		{"property admin cannot administer", actor(models.UserTypePropertyAdmin, uintPtr(3)), ActionAdminister, uintPtr(3), false},
		{"property admin without binding denied", actor(models.UserTypePropertyAdmin, nil), ActionView, uintPtr(3), false},
		{"untenanted resource denied to property admin", actor(models.UserTypePropertyAdmin, uintPtr(3)), ActionView, nil, false},

		{"staff views own property", actor(models.UserTypeStaff, uintPtr(3)), ActionView, uintPtr(3), true},
		{"staff cannot manage", actor(models.UserTypeStaff, uintPtr(3)), ActionManage, uintPtr(3), false},
		{"staff cross-tenant denied", actor(models.UserTypeStaff, uintPtr(3)), ActionView, uintPtr(4), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, tt.action, tt.propertyID)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrDenied)
			}
		})
	}
}

func TestCanEditUser(t *testing.T) {
	master := actor(models.UserTypeMasterAdmin, nil)
	padmin := actor(models.UserTypePropertyAdmin, uintPtr(3))
	padmin.ID = 10
	staff := actor(models.UserTypeStaff, uintPtr(3))
	staff.ID = 20

	otherTenant := actor(models.UserTypeStaff, uintPtr(4))
	otherTenant.ID = 30

	assert.True(t, CanEditUser(master, staff))
	assert.True(t, CanEditUser(master, otherTenant))

	assert.True(t, CanEditUser(staff, staff), "self edit allowed")
	assert.True(t, CanEditUser(padmin, staff), "property admin edits own tenant")
	assert.False(t, CanEditUser(padmin, otherTenant), "cross tenant edit denied")
	assert.False(t, CanEditUser(staff, padmin), "staff cannot edit others")

	assert.False(t, CanEditUser(nil, staff))
	assert.False(t, CanEditUser(staff, nil))
}
