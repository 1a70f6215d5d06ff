package handlers

import (
	"net/http"

	"github.com/rohits-web03/foodlink/internal/api/middleware"
	"github.com/rohits-web03/foodlink/internal/models"
	"github.com/rohits-web03/foodlink/internal/repositories"
	"github.com/rohits-web03/foodlink/internal/utils"
)

func statusCounts(r *http.Request, scope func(q map[string]any)) (map[models.Status]int64, error) {
	counts := make(map[models.Status]int64)
	for _, st := range []models.Status{
		models.StatusAvailable, models.StatusClaimed, models.StatusPickedUp,
		models.StatusCompleted, models.StatusExpired,
	} {
		where := map[string]any{"status": st}
		if scope != nil {
			scope(where)
		}
		var n int64
		err := repositories.DB.WithContext(r.Context()).
			Model(&models.Donation{}).
			Where(where).
			Count(&n).Error
		if err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, nil
}

// GET /api/v1/dashboard
// Dashboard godoc
// @Summary Role-specific dashboard summary
// @Description Donors get their own listing counts, NGOs the operative queue plus recent activity, riders their pickup queue and completions.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} utils.Payload
// @Router /api/v1/dashboard [get]
func Dashboard(w http.ResponseWriter, r *http.Request) {
	role := middleware.Role(r)
	userID := middleware.UserID(r)

	switch role {
	case models.RoleDonor:
		counts, err := statusCounts(r, func(q map[string]any) { q["donor_id"] = userID })
		if err != nil {
			utils.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		utils.OK(w, http.StatusOK, "Welcome to the Donor Dashboard!", map[string]any{
			"statusCounts": counts,
		})

	case models.RoleNGO:
		counts, err := statusCounts(r, nil)
		if err != nil {
			utils.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		var recent []models.ActivityEntry
		err = repositories.DB.WithContext(r.Context()).
			Order("created_at DESC").
			Limit(10).
			Find(&recent).Error
		if err != nil {
			utils.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		utils.OK(w, http.StatusOK, "Welcome to the NGO Dashboard!", map[string]any{
			"statusCounts":   counts,
			"recentActivity": recent,
		})

	case models.RoleRider:
		var open int64
		err := repositories.DB.WithContext(r.Context()).
			Model(&models.Donation{}).
			Where("status = ?", models.StatusAvailable).
			Count(&open).Error
		if err != nil {
			utils.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		var mine int64
		err = repositories.DB.WithContext(r.Context()).
			Model(&models.Donation{}).
			Where("assigned_rider = ? AND status IN ?", userID,
				[]models.Status{models.StatusClaimed, models.StatusPickedUp}).
			Count(&mine).Error
		if err != nil {
			utils.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		var completed int64
		err = repositories.DB.WithContext(r.Context()).
			Model(&models.Donation{}).
			Where("assigned_rider = ? AND status = ?", userID, models.StatusCompleted).
			Count(&completed).Error
		if err != nil {
			utils.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		utils.OK(w, http.StatusOK, "Welcome to the Rider Dashboard!", map[string]any{
			"openPickups":      open,
			"activeDeliveries": mine,
			"completed":        completed,
		})

	default:
		utils.Fail(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
	}
}
