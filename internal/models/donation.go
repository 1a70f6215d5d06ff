package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a donation. Transitions only ever move
// forward: available -> claimed -> picked_up -> completed, with expired as
// the alternative terminal state for listings nobody claimed in time.
type Status string

const (
	StatusAvailable Status = "available"
	StatusClaimed   Status = "claimed"
	StatusPickedUp  Status = "picked_up"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// Valid reports whether s is one of the defined lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusClaimed, StatusPickedUp, StatusCompleted, StatusExpired:
		return true
	}
	return false
}

// Terminal reports whether a donation in this state is immutable.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusExpired
}

func (s Status) String() string {
	return string(s)
}

// Donation is a single surplus-food listing. ExpiryDateTime is derived from
// CookedTime and ShelfLifeHours at creation and never recomputed; the
// composite index on (status, expiry_date_time) backs the sweeper's scan.
type Donation struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	DonorID       uuid.UUID `json:"donorId" gorm:"type:uuid;index;not null"`
	DonorName     string    `json:"donorName" gorm:"not null"`
	ContactNumber string    `json:"contactNumber"`
	Address       string    `json:"address" gorm:"not null"`
	FoodType      string    `json:"foodType" gorm:"not null"`
	Quantity      string    `json:"quantity" gorm:"not null"`
	Notes         string    `json:"notes"`

	CookedTime     time.Time `json:"cookedTime" gorm:"not null"`
	ShelfLifeHours float64   `json:"shelfLifeHours" gorm:"not null"`
	ExpiryDateTime time.Time `json:"expiryDateTime" gorm:"not null;index:idx_donations_status_expiry,priority:2"`

	Status        Status     `json:"status" gorm:"type:varchar(16);not null;default:'available';index:idx_donations_status_expiry,priority:1"`
	AssignedRider *uuid.UUID `json:"assignedRider,omitempty" gorm:"type:uuid;index"`

	CreatedAt   time.Time  `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Photos []DonationPhoto `json:"photos,omitempty" gorm:"foreignKey:DonationID"`
}
