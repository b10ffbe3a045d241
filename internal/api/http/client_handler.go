package http

import (
	"net/http"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/service"
	"boxrental-backend/internal/validation"
)

type ClientHandler struct {
	clientSvc service.ClientService
}

func NewClientHandler(clientSvc service.ClientService) *ClientHandler {
	return &ClientHandler{clientSvc: clientSvc}
}

type clientRequest struct {
	Name  string `json:"name" validate:"required,min=5"`
	Phone string `json:"phone" validate:"required,min=10"`
	Email string `json:"email" validate:"required,email"`
	Plate string `json:"plate" validate:"required,min=6"`
}

func (req clientRequest) toDomain(id int32) *domain.Client {
	return &domain.Client{
		ID:    id,
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Plate: req.Plate,
	}
}

func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientSvc.ListClients(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, err)
		return
	}
	client := req.toDomain(0)
	if err := h.clientSvc.CreateClient(r.Context(), PrincipalFrom(r.Context()), client); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, err)
		return
	}
	client := req.toDomain(id)
	if err := h.clientSvc.UpdateClient(r.Context(), PrincipalFrom(r.Context()), client); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	client, err := h.clientSvc.DeleteClient(r.Context(), PrincipalFrom(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) SendRentalReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.clientSvc.SendRentalReport(r.Context(), PrincipalFrom(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "rental report sent"})
}
