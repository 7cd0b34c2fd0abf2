package database

import (
	"fmt"

	"hostadmin-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Permission catalog. Codes are stable identifiers, descriptions are for the
// admin console only.
var permissionSeed = []models.Permission{
	{Code: "system.users.manage", Description: "Create, update and delete users"},
	{Code: "system.properties.manage", Description: "Create, update and delete properties"},
	{Code: "system.roles.manage", Description: "Manage roles and permission assignments"},
	{Code: "system.audit.view", Description: "View the audit trail"},
	{Code: "property.users.view", Description: "View users of the own property"},
	{Code: "property.settings.manage", Description: "Edit settings of the own property"},
	{Code: "hotel.rooms.manage", Description: "Manage hotel rooms"},
	{Code: "hotel.bookings.manage", Description: "Manage hotel bookings"},
	{Code: "restaurant.menu.manage", Description: "Manage restaurant menus"},
	{Code: "restaurant.orders.manage", Description: "Manage restaurant orders"},
}

var roleSeed = map[string]struct {
	description string
	permissions []string
}{
	models.RoleNameMasterAdmin: {
		description: "Full access across all properties",
		permissions: []string{
			"system.users.manage", "system.properties.manage",
			"system.roles.manage", "system.audit.view",
			"property.users.view", "property.settings.manage",
			"hotel.rooms.manage", "hotel.bookings.manage",
			"restaurant.menu.manage", "restaurant.orders.manage",
		},
	},
	models.RoleNamePropertyAdmin: {
		description: "Administers a single property",
		permissions: []string{
			"property.users.view", "property.settings.manage",
			"hotel.rooms.manage", "hotel.bookings.manage",
			"restaurant.menu.manage", "restaurant.orders.manage",
		},
	},
	models.RoleNameStaff: {
		description: "Day-to-day operations within a single property",
		permissions: []string{
			"hotel.rooms.manage", "hotel.bookings.manage",
			"restaurant.menu.manage", "restaurant.orders.manage",
		},
	},
}

// SeedRBAC inserts the role and permission catalog. Idempotent: existing rows
// are matched by their unique code/name, never by id.
func SeedRBAC(db *gorm.DB) error {
	byCode := make(map[string]models.Permission, len(permissionSeed))
	for _, p := range permissionSeed {
		perm := models.Permission{Code: p.Code}
		if err := db.Where("code = ?", p.Code).
			Attrs(models.Permission{Description: p.Description}).
			FirstOrCreate(&perm).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", p.Code, err)
		}
		byCode[p.Code] = perm
	}

	for name, def := range roleSeed {
		role := models.Role{Name: name}
		if err := db.Where("name = ?", name).
			Attrs(models.Role{Description: def.description}).
			FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}

		perms := make([]models.Permission, 0, len(def.permissions))
		for _, code := range def.permissions {
			perms = append(perms, byCode[code])
		}
		if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("assign permissions to role %s: %w", name, err)
		}
	}

	return nil
}

// SeedDevAdmin creates the well-known development master admin when no user
// exists yet. Never runs in production.
func SeedDevAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Admin@123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	email := "admin@admin.com"
	hashStr := string(hash)
	admin := models.User{
		FullName:     "System Administrator",
		Email:        &email,
		UserType:     models.UserTypeMasterAdmin,
		PasswordHash: &hashStr,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	var role models.Role
	if err := db.Where("name = ?", models.RoleNameMasterAdmin).First(&role).Error; err != nil {
		return err
	}
	return db.Model(&admin).Association("Roles").Append(&role)
}
