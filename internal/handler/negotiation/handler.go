package negotiation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marketloop/negotiator/internal/config"
	listingModel "github.com/marketloop/negotiator/internal/model/listing"
	negotiationService "github.com/marketloop/negotiator/internal/service/negotiation"
	"github.com/marketloop/negotiator/pkg/utils"
)

// Handler exposes negotiation sessions over HTTP.
type Handler struct {
	svc      *negotiationService.Service
	listings listingModel.Store
	defaults config.NegotiationConfig
}

// New creates the negotiation handler.
func New(svc *negotiationService.Service, listings listingModel.Store, defaults config.NegotiationConfig) *Handler {
	return &Handler{svc: svc, listings: listings, defaults: defaults}
}

// RegisterRoutes mounts the negotiation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/negotiations", h.handleStart)
	r.Get("/negotiations/stream", h.handleStream)
	r.Get("/negotiations/live", h.handleLive)
	r.Get("/negotiations/{sessionID}", h.handleGetSession)
	r.Get("/negotiations/{sessionID}/transcript", h.handleTranscript)
}

type startRequest struct {
	ListingID string                `json:"listingId"`
	Item      *listingModel.Listing `json:"item,omitempty"`
	BuyerMax  int                   `json:"buyerMaxBudget"`
	SellerMin int                   `json:"sellerMinPrice"`
	MaxRounds int                   `json:"maxRounds,omitempty"`
	Concern   string                `json:"concern,omitempty"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload startRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := h.buildConfig(payload)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Negotiate(r.Context(), cfg, nil)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "negotiation failed")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.svc.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	turns, err := h.svc.GetTranscript(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, negotiationService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}
	utils.RespondJSON(w, http.StatusOK, turns)
}

// buildConfig resolves the listing (by catalog ID or inline item) and applies
// session defaults.
func (h *Handler) buildConfig(payload startRequest) (negotiationService.Config, error) {
	var item listingModel.Listing
	switch {
	case payload.ListingID != "":
		found, ok := h.listings.FindByID(payload.ListingID)
		if !ok {
			return negotiationService.Config{}, errors.New("listing not found")
		}
		item = found
	case payload.Item != nil:
		item = *payload.Item
	default:
		return negotiationService.Config{}, errors.New("listingId or item is required")
	}

	if payload.BuyerMax <= 0 || payload.SellerMin <= 0 {
		return negotiationService.Config{}, errors.New("buyerMaxBudget and sellerMinPrice are required")
	}

	maxRounds := payload.MaxRounds
	if maxRounds <= 0 {
		maxRounds = h.defaults.MaxRounds
	}

	return negotiationService.Config{
		Listing:     item,
		BuyerBudget: payload.BuyerMax,
		SellerMin:   payload.SellerMin,
		MaxRounds:   maxRounds,
		Concern:     payload.Concern,
	}, nil
}

// queryConfig builds a session config from URL query parameters, used by the
// SSE and websocket feeds.
func (h *Handler) queryConfig(r *http.Request) (negotiationService.Config, error) {
	payload := startRequest{ListingID: r.URL.Query().Get("listingId")}

	var err error
	if payload.BuyerMax, err = queryInt(r, "buyerMaxBudget"); err != nil {
		return negotiationService.Config{}, err
	}
	if payload.SellerMin, err = queryInt(r, "sellerMinPrice"); err != nil {
		return negotiationService.Config{}, err
	}
	if raw := r.URL.Query().Get("maxRounds"); raw != "" {
		if payload.MaxRounds, err = strconv.Atoi(raw); err != nil {
			return negotiationService.Config{}, errors.New("invalid maxRounds")
		}
	}
	payload.Concern = r.URL.Query().Get("concern")

	return h.buildConfig(payload)
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, errors.New(key + " is required")
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return value, nil
}
