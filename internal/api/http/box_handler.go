package http

import (
	"net/http"

	"boxrental-backend/internal/service"
	"boxrental-backend/internal/validation"
)

type BoxHandler struct {
	boxSvc service.BoxService
}

func NewBoxHandler(boxSvc service.BoxService) *BoxHandler {
	return &BoxHandler{boxSvc: boxSvc}
}

type boxRequest struct {
	Number            int32 `json:"number" validate:"gt=0"`
	MonthlyPriceCents int64 `json:"monthlyPriceCents" validate:"gt=0"`
}

func (h *BoxHandler) ListBoxes(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.boxSvc.ListBoxes(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, boxes)
}

func (h *BoxHandler) CreateBox(w http.ResponseWriter, r *http.Request) {
	var req boxRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, err)
		return
	}
	box, err := h.boxSvc.CreateBox(r.Context(), req.Number, req.MonthlyPriceCents)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, box)
}

func (h *BoxHandler) UpdateBox(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req boxRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, err)
		return
	}
	box, err := h.boxSvc.UpdateBox(r.Context(), id, req.Number, req.MonthlyPriceCents)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, box)
}

func (h *BoxHandler) DeleteBox(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	box, err := h.boxSvc.DeleteBox(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, box)
}
