package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rohits-web03/foodlink/internal/api/middleware"
	"github.com/rohits-web03/foodlink/internal/models"
	"github.com/rohits-web03/foodlink/internal/repositories"
	"github.com/rohits-web03/foodlink/internal/utils"
	"gorm.io/gorm"
)

// GET /api/v1/profile
// GetProfile godoc
// @Summary Fetch the caller's profile
// @Tags Profile
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/profile [get]
func GetProfile(w http.ResponseWriter, r *http.Request) {
	var user models.User
	err := repositories.DB.WithContext(r.Context()).
		First(&user, "id = ?", middleware.UserID(r)).Error
	if err == gorm.ErrRecordNotFound {
		utils.Fail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.OK(w, http.StatusOK, "Profile retrieved successfully", user)
}

// PUT /api/v1/profile
// UpdateProfile godoc
// @Summary Update the caller's name, phone, or address
// @Tags Profile
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/profile [put]
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	err := repositories.DB.WithContext(r.Context()).
		First(&user, "id = ?", middleware.UserID(r)).Error
	if err == gorm.ErrRecordNotFound {
		utils.Fail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.Address != "" {
		user.Address = input.Address
	}
	if err := repositories.DB.WithContext(r.Context()).Save(&user).Error; err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.OK(w, http.StatusOK, "Profile updated successfully!", user)
}
