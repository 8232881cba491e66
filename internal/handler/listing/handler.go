package listing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marketloop/negotiator/internal/model/listing"
	"github.com/marketloop/negotiator/pkg/utils"
)

// Handler serves the listing catalog.
type Handler struct {
	store listing.Store
}

// New creates the listing handler.
func New(store listing.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the listing routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/listings", h.handleList)
	r.Get("/listings/{listingID}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.List())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "listingID")
	item, ok := h.store.FindByID(id)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "listing not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}
