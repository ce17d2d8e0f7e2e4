package identity

import (
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// User is a customer or vendor account. Accounts are managed by the
// identity service; this backend only reads them.
type User struct {
	shared.BaseEntity
	DNI            string     `gorm:"column:dni;type:varchar(20);not null;uniqueIndex"`
	FirstName      string     `gorm:"type:varchar(100);not null"`
	MiddleName     string     `gorm:"type:varchar(100)"`
	LastName       string     `gorm:"type:varchar(100);not null"`
	SecondLastName string     `gorm:"type:varchar(100)"`
	Email          string     `gorm:"type:varchar(200);not null"`
	Prefix         string     `gorm:"type:varchar(8)"`
	Phone          string     `gorm:"type:varchar(20)"`
	RoleID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Role           *Role      `gorm:"foreignKey:RoleID"`
	CityID         *uuid.UUID `gorm:"type:uuid"`
	City           *City      `gorm:"foreignKey:CityID"`
	StoreID        *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// FullName joins first and last name with a single space, verbatim
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// PhoneNumber returns the dialling prefix followed by the number
func (u *User) PhoneNumber() string {
	return u.Prefix + u.Phone
}

// CityName returns the city name, or "" when the user has none
func (u *User) CityName() string {
	if u.City == nil {
		return ""
	}
	return u.City.Name
}

// RoleName returns the role name, or "" when the role was not loaded
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}
