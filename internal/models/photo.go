package models

import (
	"time"

	"github.com/google/uuid"
)

// DonationPhoto is an image attached to a listing, stored in the R2 bucket
// under Key and uploaded by the donor through a presigned URL.
type DonationPhoto struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	DonationID uuid.UUID `json:"donationId" gorm:"type:uuid;index;not null"`
	Key        string    `json:"-" gorm:"not null"` // object key in the bucket
	Filename   string    `json:"filename" gorm:"not null"`
	Size       int64     `json:"size"` // bytes, reported by the client
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
