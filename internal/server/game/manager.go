// Package game manages the live game sessions served over the HTTP API.
package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"maru/internal/infer"
	"maru/internal/search"
)

// ErrNotFound reports an unknown game id.
var ErrNotFound = errors.New("game not found")

// Settings configures a new game session.
type Settings struct {
	Width    int
	Height   int
	Komi     float64
	Rule     int
	Superko  bool
	Threads  int
	Handicap int
}

// Manager owns the game sessions, all searching through one shared
// Processor.
type Manager struct {
	mu        sync.RWMutex
	processor *infer.Processor
	games     map[string]*State
}

func NewManager(processor *infer.Processor) *Manager {
	return &Manager{
		processor: processor,
		games:     make(map[string]*State),
	}
}

// NewGame creates a session and returns its state.
func (m *Manager) NewGame(settings Settings) *State {
	player := search.NewPlayer(m.processor, search.Options{
		Threads: settings.Threads,
		Width:   settings.Width,
		Height:  settings.Height,
		Komi:    settings.Komi,
		Rule:    settings.Rule,
		Superko: settings.Superko,
	})

	if settings.Handicap >= 2 {
		player.SetHandicap(settings.Handicap)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	g := &State{
		ID:        id,
		Player:    player,
		Width:     settings.Width,
		Height:    settings.Height,
		Komi:      settings.Komi,
		Rule:      settings.Rule,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.games[id] = g

	return g
}

// Get looks a session up by id.
func (m *Manager) Get(id string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

// Touch bumps a session's turn counter and timestamp.
func (m *Manager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.games[id]; ok {
		g.Turn++
		g.UpdatedAt = time.Now()
	}
}

// Remove closes and deletes a session.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	g, ok := m.games[id]
	if ok {
		delete(m.games, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	g.Player.Close()
	return nil
}

// Close shuts every session down.
func (m *Manager) Close() {
	m.mu.Lock()
	games := m.games
	m.games = make(map[string]*State)
	m.mu.Unlock()

	for _, g := range games {
		g.Player.Close()
	}
}
