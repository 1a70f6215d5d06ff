package models

import (
	"time"

	"github.com/google/uuid"
)

// Role controls which dashboards and donation operations a user may reach.
type Role string

const (
	RoleDonor Role = "donor"
	RoleNGO   Role = "ngo"
	RoleRider Role = "rider"
	// RoleSystem is never stored on a user; it is the actor of the expiry sweeper.
	RoleSystem Role = "system"
)

// ValidSignupRole reports whether a role may be chosen at registration.
func ValidSignupRole(r Role) bool {
	switch r {
	case RoleDonor, RoleNGO, RoleRider:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-"` // empty for Google-authenticated accounts
	Role      Role      `json:"role" gorm:"type:varchar(16);not null;default:'donor'"`
	GoogleID  string    `json:"-" gorm:"index"`
	Picture   string    `json:"picture,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
	LastLogin time.Time `json:"lastLoginAt"`

	// Password reset flow: a short-lived OTP emailed to the user.
	ResetOTP       string     `json:"-"`
	ResetOTPExpiry *time.Time `json:"-"`
}
