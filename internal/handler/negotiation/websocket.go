package negotiation

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	model "github.com/marketloop/negotiator/internal/model/negotiation"
	"github.com/marketloop/negotiator/pkg/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type liveMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleLive runs a session and pushes each turn over a websocket as it
// happens, then an outcome frame, then closes. All writes happen on the
// request goroutine.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.queryConfig(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	result, err := h.svc.Negotiate(r.Context(), cfg, func(turn model.Turn) {
		writeLive(conn, liveMessage{
			Type:      "turn",
			SessionID: turn.SessionID,
			Data:      turn,
			Timestamp: time.Now().UnixMilli(),
		})
	})
	if err != nil {
		writeLive(conn, liveMessage{
			Type:      "error",
			Data:      map[string]string{"error": "negotiation failed"},
			Timestamp: time.Now().UnixMilli(),
		})
		return
	}

	writeLive(conn, liveMessage{
		Type:      "outcome",
		SessionID: result.Session.ID,
		Data: map[string]any{
			"status":  result.Session.Status,
			"outcome": result.Outcome,
		},
		Timestamp: time.Now().UnixMilli(),
	})

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session finished")
	_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
}

func writeLive(conn *websocket.Conn, msg liveMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}
