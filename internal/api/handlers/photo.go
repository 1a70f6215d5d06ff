package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/foodlink/internal/api/middleware"
	"github.com/rohits-web03/foodlink/internal/models"
	"github.com/rohits-web03/foodlink/internal/repositories"
	"github.com/rohits-web03/foodlink/internal/utils"
)

const presignTTL = 15 * time.Minute

// loadOwnDonation fetches the donation and checks the caller may attach
// photos to it: the donor who listed it, or any NGO.
func loadOwnDonation(w http.ResponseWriter, r *http.Request) *models.Donation {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid donation id")
		return nil
	}

	d, err := Donations.Get(r.Context(), id)
	if err != nil {
		writeDonationError(w, err)
		return nil
	}

	if middleware.Role(r) != models.RoleNGO && d.DonorID.String() != middleware.UserID(r) {
		utils.Fail(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
		return nil
	}
	return d
}

// POST /api/v1/donations/{id}/photos/presign
// PresignPhotoUpload godoc
// @Summary Get a presigned URL for uploading a listing photo
// @Tags Photos
// @Accept json
// @Produce json
// @Param id path string true "Donation id"
// @Success 200 {object} utils.Payload
// @Failure 403 {object} utils.Payload
// @Router /api/v1/donations/{id}/photos/presign [post]
func PresignPhotoUpload(w http.ResponseWriter, r *http.Request) {
	d := loadOwnDonation(w, r)
	if d == nil {
		return
	}

	var input struct {
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Filename == "" {
		utils.Fail(w, http.StatusBadRequest, "A filename is required")
		return
	}

	photoID := uuid.New()
	key := repositories.PhotoKey(d.ID, photoID, input.Filename)
	url, err := repositories.Photos.PresignPut(r.Context(), key, presignTTL)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to generate upload URL")
		return
	}

	utils.OK(w, http.StatusOK, "Presigned upload URL generated successfully", map[string]any{
		"photoId":   photoID,
		"key":       key,
		"url":       url,
		"expiresIn": presignTTL.String(),
	})
}

// POST /api/v1/donations/{id}/photos/complete
// CompletePhotoUpload godoc
// @Summary Record a photo after its upload finished
// @Tags Photos
// @Accept json
// @Produce json
// @Param id path string true "Donation id"
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/donations/{id}/photos/complete [post]
func CompletePhotoUpload(w http.ResponseWriter, r *http.Request) {
	d := loadOwnDonation(w, r)
	if d == nil {
		return
	}

	var input struct {
		PhotoID  string `json:"photoId"`
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.PhotoID == "" || input.Filename == "" {
		utils.Fail(w, http.StatusBadRequest, "photoId and filename are required")
		return
	}
	photoID, err := uuid.Parse(input.PhotoID)
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid photoId")
		return
	}

	key := repositories.PhotoKey(d.ID, photoID, input.Filename)
	exists, err := repositories.Photos.Exists(r.Context(), key)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Failed to verify upload")
		return
	}
	if !exists {
		utils.Fail(w, http.StatusBadRequest, "No uploaded object found for this photo")
		return
	}

	photo := models.DonationPhoto{
		ID:         photoID,
		DonationID: d.ID,
		Key:        key,
		Filename:   input.Filename,
		Size:       input.Size,
	}
	if err := repositories.DB.WithContext(r.Context()).Create(&photo).Error; err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Database insert failed")
		return
	}

	utils.OK(w, http.StatusCreated, "Photo recorded successfully", photo)
}

// GET /api/v1/donations/{id}/photos
// ListDonationPhotos godoc
// @Summary List a donation's photos with temporary view URLs
// @Tags Photos
// @Produce json
// @Param id path string true "Donation id"
// @Success 200 {object} utils.Payload
// @Router /api/v1/donations/{id}/photos [get]
func ListDonationPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid donation id")
		return
	}

	var photos []models.DonationPhoto
	err = repositories.DB.WithContext(r.Context()).
		Where("donation_id = ?", id).
		Order("created_at ASC").
		Find(&photos).Error
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Database query failed")
		return
	}

	out := make([]map[string]any, 0, len(photos))
	for _, p := range photos {
		url, err := repositories.Photos.PresignGet(r.Context(), p.Key, presignTTL)
		if err != nil {
			utils.Fail(w, http.StatusInternalServerError, "Failed to generate view URL")
			return
		}
		out = append(out, map[string]any{
			"id":       p.ID,
			"filename": p.Filename,
			"size":     p.Size,
			"url":      url,
		})
	}

	utils.OK(w, http.StatusOK, "Photos retrieved successfully", out)
}
