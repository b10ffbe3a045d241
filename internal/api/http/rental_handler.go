package http

import (
	"net/http"

	"boxrental-backend/internal/service"
	"boxrental-backend/internal/validation"
)

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

type openRentalRequest struct {
	ClientID int32 `json:"clientId" validate:"gt=0"`
	BoxID    int32 `json:"boxId" validate:"gt=0"`
}

func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.rentalSvc.ListRentals(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rentals)
}

func (h *RentalHandler) OpenRental(w http.ResponseWriter, r *http.Request) {
	var req openRentalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, err)
		return
	}

	actor := PrincipalFrom(r.Context())
	rental, err := h.rentalSvc.OpenRental(r.Context(), actor.ID, req.ClientID, req.BoxID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, rental)
}

func (h *RentalHandler) CloseRental(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	actor := PrincipalFrom(r.Context())
	rental, err := h.rentalSvc.CloseRental(r.Context(), actor.ID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) DeleteRental(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	actor := PrincipalFrom(r.Context())
	if err := h.rentalSvc.DeleteRental(r.Context(), actor.ID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "rental deleted"})
}
