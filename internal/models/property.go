package models

import "time"

type PropertyType string

const (
	PropertyTypeHotel      PropertyType = "HOTEL"
	PropertyTypeRestaurant PropertyType = "RESTAURANT"
)

func (t PropertyType) Valid() bool {
	return t == PropertyTypeHotel || t == PropertyTypeRestaurant
}

// Property is the tenant unit. Every non-master user belongs to exactly one
// property and is scoped to its rows.
type Property struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Code         string       `gorm:"size:30;uniqueIndex;not null" json:"code"`
	Name         string       `gorm:"size:200;not null" json:"name"`
	PropertyType PropertyType `gorm:"size:20;not null" json:"property_type"`

	AddressLine string `gorm:"size:255" json:"address_line"`
	City        string `gorm:"size:100" json:"city"`
	State       string `gorm:"size:100" json:"state"`
	Country     string `gorm:"size:100" json:"country"`
	PostalCode  string `gorm:"size:20" json:"postal_code"`
	Timezone    string `gorm:"size:64;default:UTC" json:"timezone"`

	ContactEmail string `gorm:"size:100" json:"contact_email"`
	ContactPhone string `gorm:"size:30" json:"contact_phone"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Users []User `json:"users,omitempty"`
}
