package events

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
)

// WSHandler streams a shoot's assessment events over a websocket.
type WSHandler struct {
	hub *Hub
}

// NewWSHandler creates a websocket handler backed by the given hub.
func NewWSHandler(hub *Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// ServeHTTP upgrades the connection and relays events until the client
// disconnects.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	shootID := chi.URLParam(r, "shootID")
	if decoded, err := url.PathUnescape(shootID); err == nil {
		shootID = decoded
	}
	if shootID == "" {
		http.Error(w, "shoot ID required", http.StatusBadRequest)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept websocket", "error", err, "shoot_id", shootID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "feed closed"); closeErr != nil {
			slog.Debug("websocket close", "error", closeErr)
		}
	}()

	events, cancel := h.hub.Subscribe(shootID)
	defer cancel()

	slog.Info("Assessment feed connected", "shoot_id", shootID, "ip", r.RemoteAddr)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := wsjson.Write(ctx, ws, evt); err != nil {
				slog.Debug("websocket write failed", "error", err, "shoot_id", shootID)
				return
			}
		}
	}
}
