package negotiation

import (
	"log"
	"net/http"

	model "github.com/marketloop/negotiator/internal/model/negotiation"
	"github.com/marketloop/negotiator/pkg/utils"
)

// handleStream runs a session and publishes each turn over Server-Sent
// Events as it is appended, followed by a final outcome event. The session
// runs on the request goroutine, so event writes need no synchronization.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	cfg, err := h.queryConfig(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.SetupSSEHeaders(w)

	result, err := h.svc.Negotiate(r.Context(), cfg, func(turn model.Turn) {
		utils.SendSSEEvent(w, flusher, "turn", turn)
	})
	if err != nil {
		log.Printf("[stream] negotiation failed: %v", err)
		utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": "negotiation failed"})
		return
	}

	utils.SendSSEEvent(w, flusher, "outcome", map[string]any{
		"sessionId": result.Session.ID,
		"status":    result.Session.Status,
		"outcome":   result.Outcome,
	})
}
