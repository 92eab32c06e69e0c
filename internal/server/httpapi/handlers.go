// Package httpapi exposes game sessions over a small JSON API plus a
// websocket streaming live analysis.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"maru/internal/goban"
	"maru/internal/search"
	"maru/internal/server/game"
)

// Handler serves the game API.
type Handler struct {
	manager *game.Manager
	log     zerolog.Logger
}

func NewHandler(manager *game.Manager, log zerolog.Logger) *Handler {
	return &Handler{manager: manager, log: log}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (h *Handler) getGame(w http.ResponseWriter, r *http.Request) (*game.State, bool) {
	g, err := h.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, game.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, err)
		} else {
			h.writeError(w, http.StatusInternalServerError, err)
		}
		return nil, false
	}
	return g, true
}

func (h *Handler) handleNewGame(w http.ResponseWriter, r *http.Request) {
	req := NewGameRequest{
		Width:   19,
		Height:  19,
		Komi:    7.5,
		Rule:    goban.RuleCH,
		Threads: 2,
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	g := h.manager.NewGame(game.Settings{
		Width:    req.Width,
		Height:   req.Height,
		Komi:     req.Komi,
		Rule:     req.Rule,
		Superko:  req.Superko,
		Threads:  req.Threads,
		Handicap: req.Handicap,
	})

	h.log.Info().Str("game", g.ID).Int("width", g.Width).Int("height", g.Height).Msg("new game")
	h.writeJSON(w, http.StatusCreated, NewGameResponse{ID: g.ID})
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	g, ok := h.getGame(w, r)
	if !ok {
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	captured := g.Player.Play(req.X, req.Y)
	if captured < 0 {
		h.writeError(w, http.StatusUnprocessableEntity, errors.New("illegal move"))
		return
	}

	h.manager.Touch(g.ID)

	h.writeJSON(w, http.StatusOK, MoveResponse{
		Captured:  captured,
		NextColor: g.Player.GetColor(),
		Board:     h.boardDTO(g),
	})
}

func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	g, ok := h.getGame(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.boardDTO(g))
}

func (h *Handler) handleCandidates(w http.ResponseWriter, r *http.Request) {
	g, ok := h.getGame(w, r)
	if !ok {
		return
	}

	visits := queryInt(r, "visits", 400)
	timelimit := time.Duration(queryInt(r, "timelimit", 30)) * time.Second

	g.Player.StartEvaluation(false, false, 0, 1.0, 0.0)
	g.Player.WaitEvaluation(visits, 0, timelimit, true)

	h.writeJSON(w, http.StatusOK, h.candidatesResponse(g))
}

func (h *Handler) boardDTO(g *game.State) BoardDTO {
	board := g.Player.Board()
	koX, koY := board.GetKo(g.Player.GetColor())

	return BoardDTO{
		Width:       board.Width(),
		Height:      board.Height(),
		Colors:      board.GetColors(goban.Black),
		Territories: board.GetTerritories(goban.Black),
		KoX:         koX,
		KoY:         koY,
	}
}

func (h *Handler) candidatesResponse(g *game.State) CandidatesResponse {
	visits, playouts := g.Player.SearchCounts()

	resp := CandidatesResponse{Visits: visits, Playouts: playouts}
	for _, c := range g.Player.GetCandidates() {
		resp.Candidates = append(resp.Candidates, candidateDTO(c))
	}
	return resp
}

func candidateDTO(c search.Candidate) CandidateDTO {
	return CandidateDTO{
		X:            c.X,
		Y:            c.Y,
		Color:        c.Color,
		Visits:       c.Visits,
		Playouts:     c.Playouts,
		Policy:       c.Policy,
		Value:        c.Value,
		WinChance:    c.WinChance(),
		WinChanceLCB: c.WinChanceLCB(),
		Variations:   c.Variations,
	}
}

func queryInt(r *http.Request, key string, def int) int {
	if s := r.URL.Query().Get(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}
