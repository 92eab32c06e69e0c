package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleLive streams candidate statistics over a websocket while an
// evaluation runs, then sends the final snapshot and closes.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	g, ok := h.getGame(w, r)
	if !ok {
		return
	}

	visits := queryInt(r, "visits", 1600)
	timelimit := time.Duration(queryInt(r, "timelimit", 60)) * time.Second

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	g.Player.StartEvaluation(false, false, 0, 1.0, 0.0)

	deadline := time.Now().Add(timelimit)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		done, _ := g.Player.SearchCounts()

		if err := conn.WriteJSON(h.candidatesResponse(g)); err != nil {
			h.log.Debug().Err(err).Str("game", g.ID).Msg("live client gone")
			break
		}

		if done >= visits || time.Now().After(deadline) {
			break
		}
	}

	g.Player.WaitEvaluation(0, 0, time.Second, true)

	if err := conn.WriteJSON(h.candidatesResponse(g)); err == nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
	}
}
