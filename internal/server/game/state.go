package game

import (
	"time"

	"maru/internal/search"
)

// State is one game session: a Player plus the bookkeeping the API
// exposes.
type State struct {
	ID        string
	Player    *search.Player
	Width     int
	Height    int
	Komi      float64
	Rule      int
	Turn      int
	CreatedAt time.Time
	UpdatedAt time.Time
}
