package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityEntry records a donation lifecycle event for the dashboards'
// activity feed. Writing one is best effort; a lost entry never fails the
// transition it describes.
type ActivityEntry struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	DonationID uuid.UUID `json:"donationId" gorm:"type:uuid;index;not null"`
	Actor      Role      `json:"actor" gorm:"type:varchar(16);not null"`
	FromStatus Status    `json:"fromStatus" gorm:"type:varchar(16)"`
	ToStatus   Status    `json:"toStatus" gorm:"type:varchar(16);not null"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
