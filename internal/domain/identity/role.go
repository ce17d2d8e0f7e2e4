package identity

import "github.com/google/uuid"

// Well-known role names. Matching is exact and case-sensitive.
const (
	RoleCustomer = "Customer"
	RoleVendor   = "Vendor"
)

// Role classifies a user account
type Role struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
}

// TableName returns the table name for GORM
func (Role) TableName() string {
	return "roles"
}

// City is the location attached to a user's address
type City struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"type:varchar(100);not null" json:"name"`
}

// TableName returns the table name for GORM
func (City) TableName() string {
	return "cities"
}
