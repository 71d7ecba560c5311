package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teamates/cafe-api/internal/domain/menu"
)

// menuItemResponse is the JSON shape of a catalog entry.
type menuItemResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Available   bool            `json:"available"`
	Image       string          `json:"image,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (h *Handler) menuItemToResponse(item menu.Item) menuItemResponse {
	image := item.Image
	if image != "" && h.cfg.ImageBaseURL != "" {
		image = h.cfg.ImageBaseURL + image
	}
	return menuItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Category:    item.Category,
		Available:   item.Available,
		Image:       image,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request, onlyAvailable bool) {
	items, err := h.catalog.List(r.Context(), onlyAvailable)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]menuItemResponse, len(items))
	for i, item := range items {
		out[i] = h.menuItemToResponse(item)
	}
	writeJSON(w, http.StatusOK, out)
}

// ListMenu returns the customer-facing catalog: available items only.
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	h.listMenu(w, r, true)
}

// ListMenuAdmin returns the full catalog including unavailable items.
func (h *Handler) ListMenuAdmin(w http.ResponseWriter, r *http.Request) {
	h.listMenu(w, r, false)
}

// menuItemRequest is the JSON body for creating or updating a catalog entry.
type menuItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Available   *bool           `json:"available"`
	Image       string          `json:"image"`
}

func (req menuItemRequest) validate() string {
	switch {
	case req.Name == "":
		return "name is required"
	case req.Category == "":
		return "category is required"
	case req.Price.IsNegative():
		return "price must not be negative"
	}
	return ""
}

// CreateMenuItem adds a catalog entry. New items default to available.
func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	item := &menu.Item{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Available:   available,
		Image:       req.Image,
	}
	if err := h.catalog.Create(r.Context(), item); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.menuItemToResponse(*item))
}

// UpdateMenuItem replaces a catalog entry's fields.
func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req menuItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	existing, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	item := &menu.Item{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Available:   existing.Available,
		Image:       req.Image,
	}
	if req.Available != nil {
		item.Available = *req.Available
	}
	if err := h.catalog.Update(r.Context(), item); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.menuItemToResponse(*item))
}

// SetMenuAvailability toggles a catalog entry on or off.
func (h *Handler) SetMenuAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Available bool `json:"available"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.catalog.SetAvailability(r.Context(), id, req.Available); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "available": req.Available})
}

// DeleteMenuItem removes a catalog entry.
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
