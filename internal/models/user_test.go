package models

import "testing"

func TestHasPermission(t *testing.T) {
	user := User{
		Roles: []Role{
			{
				Name: RoleNamePropertyAdmin,
				Permissions: []Permission{
					{Code: "hotel.rooms.manage"},
					{Code: "property.users.view"},
				},
			},
			{
				Name:        "Night Auditor",
				Permissions: []Permission{{Code: "hotel.bookings.manage"}},
			},
		},
	}

	if !user.HasPermission("hotel.rooms.manage") {
		t.Error("expected permission from first role")
	}
	if !user.HasPermission("hotel.bookings.manage") {
		t.Error("expected permission from second role")
	}
	if user.HasPermission("system.roles.manage") {
		t.Error("unexpected permission")
	}

	var empty User
	if empty.HasPermission("hotel.rooms.manage") {
		t.Error("user without roles must have no permissions")
	}
}

func TestHasRole(t *testing.T) {
	user := User{Roles: []Role{{Name: RoleNameMasterAdmin}}}

	if !user.HasRole(RoleNameMasterAdmin) {
		t.Errorf("HasRole(%q) = false, want true", RoleNameMasterAdmin)
	}
	if user.HasRole(RoleNameStaff) {
		t.Errorf("HasRole(%q) = true, want false", RoleNameStaff)
	}
}

func TestUserTypeValid(t *testing.T) {
	for _, typ := range []UserType{UserTypeMasterAdmin, UserTypePropertyAdmin, UserTypeStaff} {
		if !typ.Valid() {
			t.Errorf("UserType(%q).Valid() = false, want true", typ)
		}
	}
	if UserType("SUPER_USER").Valid() {
		t.Error("unknown user type must not validate")
	}
}

func TestPropertyTypeValid(t *testing.T) {
	if !PropertyTypeHotel.Valid() || !PropertyTypeRestaurant.Valid() {
		t.Error("known property types must validate")
	}
	if PropertyType("HOSTEL").Valid() {
		t.Error("unknown property type must not validate")
	}
}
