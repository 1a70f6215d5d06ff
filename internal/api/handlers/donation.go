package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/foodlink/internal/api/middleware"
	"github.com/rohits-web03/foodlink/internal/donation"
	"github.com/rohits-web03/foodlink/internal/models"
	"github.com/rohits-web03/foodlink/internal/repositories"
	"github.com/rohits-web03/foodlink/internal/utils"
)

// Donations is the lifecycle manager behind the donation endpoints; main
// wires it up once the database connection exists.
var Donations *donation.Manager

// writeDonationError maps the core's error kinds onto HTTP statuses. Illegal
// transitions come back as descriptive conflicts, never generic 500s.
func writeDonationError(w http.ResponseWriter, err error) {
	var verr *donation.ValidationError
	var terr *donation.InvalidTransitionError
	switch {
	case errors.Is(err, donation.ErrNotFound):
		utils.Fail(w, http.StatusNotFound, "Donation not found")
	case errors.As(err, &verr):
		utils.Fail(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &terr):
		utils.Fail(w, http.StatusConflict, terr.Error())
	default:
		log.Printf("donation operation failed: %v", err)
		utils.Fail(w, http.StatusInternalServerError, "A server error occurred")
	}
}

// POST /api/v1/donations
// CreateDonation godoc
// @Summary List surplus food for pickup
// @Description Creates a donation in the available state. The expiry deadline is computed server-side from cookedTime and shelfLifeHours.
// @Tags Donations
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/donations [post]
func CreateDonation(w http.ResponseWriter, r *http.Request) {
	donorID, err := uuid.Parse(middleware.UserID(r))
	if err != nil {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		DonorName      string  `json:"donorName"`
		ContactNumber  string  `json:"contactNumber"`
		Address        string  `json:"address"`
		FoodType       string  `json:"foodType"`
		Quantity       string  `json:"quantity"`
		Notes          string  `json:"notes"`
		CookedTime     string  `json:"cookedTime"`
		ShelfLifeHours float64 `json:"shelfLifeHours"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid input")
		return
	}

	cooked, err := time.Parse(time.RFC3339, input.CookedTime)
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "cookedTime must be an RFC 3339 timestamp")
		return
	}

	d, err := Donations.Create(r.Context(), donation.CreateInput{
		DonorID:        donorID,
		DonorName:      input.DonorName,
		ContactNumber:  input.ContactNumber,
		Address:        input.Address,
		FoodType:       input.FoodType,
		Quantity:       input.Quantity,
		Notes:          input.Notes,
		CookedTime:     cooked,
		ShelfLifeHours: input.ShelfLifeHours,
	})
	if err != nil {
		writeDonationError(w, err)
		return
	}

	log.Printf("New donation %s listed by %s", d.ID, donorID)
	utils.OK(w, http.StatusCreated, "Donation listed successfully!", d)
}

// GET /api/v1/donations
// ListDonations godoc
// @Summary List donations visible to the caller
// @Description Donors see their own listings, NGOs see everything, riders see the operative queue. Most recent first.
// @Tags Donations
// @Produce json
// @Param status query string false "Comma-separated status filter"
// @Success 200 {object} utils.Payload
// @Router /api/v1/donations [get]
func ListDonations(w http.ResponseWriter, r *http.Request) {
	actorID, err := uuid.Parse(middleware.UserID(r))
	if err != nil {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var f donation.Filter
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st := models.Status(strings.TrimSpace(part))
			if !st.Valid() {
				utils.Fail(w, http.StatusBadRequest, "Unknown status "+string(st))
				return
			}
			f.Statuses = append(f.Statuses, st)
		}
	}

	ds, err := Donations.List(r.Context(), middleware.Role(r), actorID, f)
	if err != nil {
		writeDonationError(w, err)
		return
	}

	utils.OK(w, http.StatusOK, "Donations retrieved successfully", ds)
}

// PATCH /api/v1/donations/{id}/status
// TransitionDonation godoc
// @Summary Move a donation along its lifecycle
// @Description Legal edges: available->claimed (ngo/rider), claimed->picked_up (rider), picked_up->completed (rider/ngo). Conflicting or stale transitions return 409.
// @Tags Donations
// @Accept json
// @Produce json
// @Param id path string true "Donation id"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /api/v1/donations/{id}/status [patch]
func TransitionDonation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid donation id")
		return
	}
	actorID, err := uuid.Parse(middleware.UserID(r))
	if err != nil {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	role := middleware.Role(r)

	var input struct {
		Status  models.Status `json:"status"`
		RiderID string        `json:"riderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Status == "" {
		utils.Fail(w, http.StatusBadRequest, "A target status is required")
		return
	}

	// A rider claims for themselves; an NGO may assign a specific rider.
	var riderID *uuid.UUID
	switch {
	case role == models.RoleRider && input.Status == models.StatusClaimed:
		riderID = &actorID
	case input.RiderID != "":
		parsed, err := uuid.Parse(input.RiderID)
		if err != nil {
			utils.Fail(w, http.StatusBadRequest, "Invalid riderId")
			return
		}
		riderID = &parsed
	}

	d, from, err := Donations.Transition(r.Context(), id, role, input.Status, riderID)
	if err != nil {
		writeDonationError(w, err)
		return
	}

	recordActivity(r, d, role, from)
	utils.OK(w, http.StatusOK, fmt.Sprintf("Donation is now %s", d.Status), d)
}

func recordActivity(r *http.Request, d *models.Donation, actor models.Role, from models.Status) {
	entry := &models.ActivityEntry{
		ID:         uuid.New(),
		DonationID: d.ID,
		Actor:      actor,
		FromStatus: from,
		ToStatus:   d.Status,
		Message:    fmt.Sprintf("%s marked %q as %s", actor, d.FoodType, d.Status),
	}
	if err := repositories.RecordActivity(r.Context(), entry); err != nil {
		log.Printf("failed to record activity for donation %s: %v", d.ID, err)
	}
}
