package search

import (
	"math/rand"
	"sync"
	"time"

	"maru/internal/goban"
	"maru/internal/infer"
)

// Options configures a Player.
type Options struct {
	Threads      int
	Width        int
	Height       int
	Komi         float64
	Rule         int
	Superko      bool
	EvalLeafOnly bool
	Seed         int64
}

// Player orchestrates the search: it owns the root node, a dispatcher
// that turns the evaluation settings into descents on the worker pool,
// and the move-level operations built on top of the tree.
//
// Operations that mutate or read the tree structure pause the dispatcher
// and wait for in-flight descents to finish, so when they return every
// previously running descent has completed its value updates.
type Player struct {
	mu   sync.Mutex
	cond *sync.Cond

	manager *NodeManager
	pool    *ThreadPool
	root    *Node

	width    int
	height   int
	komi     float64
	rule     int
	superko  bool
	leafOnly bool

	params         Params
	searchVisits   int
	searchPlayouts int
	running        int
	paused         bool
	stopped        bool
	terminated     bool

	dispatcherDone chan struct{}

	histories map[uint64]struct{}

	rng  *rand.Rand
	rngs chan *rand.Rand
}

// NewPlayer creates a player searching through the given processor.
func NewPlayer(processor *infer.Processor, opts Options) *Player {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.Width < 1 {
		opts.Width = 19
	}
	if opts.Height < 1 {
		opts.Height = 19
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	p := &Player{
		manager: NewNodeManager(Config{
			Processor: processor,
			Width:     opts.Width,
			Height:    opts.Height,
			Komi:      opts.Komi,
			Rule:      opts.Rule,
			Superko:   opts.Superko,
		}),
		pool:           NewThreadPool(opts.Threads),
		width:          opts.Width,
		height:         opts.Height,
		komi:           opts.Komi,
		rule:           opts.Rule,
		superko:        opts.Superko,
		leafOnly:       opts.EvalLeafOnly,
		stopped:        true,
		dispatcherDone: make(chan struct{}),
		histories:      make(map[uint64]struct{}),
		rng:            rand.New(rand.NewSource(opts.Seed)),
	}
	p.cond = sync.NewCond(&p.mu)
	p.root = p.manager.CreateInitNode()

	// One generator per worker keeps the Gumbel noise contention-free.
	p.rngs = make(chan *rand.Rand, opts.Threads)
	for i := 0; i < opts.Threads; i++ {
		p.rngs <- rand.New(rand.NewSource(opts.Seed + int64(i) + 1))
	}

	go p.dispatch()

	return p
}

// Close stops the dispatcher and the worker pool. In-flight descents run
// to completion.
func (p *Player) Close() {
	p.mu.Lock()
	p.terminated = true
	p.cond.Broadcast()
	p.mu.Unlock()

	<-p.dispatcherDone
	p.pool.Close()
}

// Initialize resets the player to an empty board, releasing the whole
// tree to the pool.
func (p *Player) Initialize() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pauseLocked()
	defer p.resumeLocked()

	oldRoot := p.root
	p.root = p.manager.CreateInitNode()
	p.releaseTreeLocked(oldRoot)

	p.histories = make(map[uint64]struct{})
}

// Play advances the root to the child at (x, y), releases the rest of
// the tree, and returns the number of captured stones. An illegal move
// returns -1 and leaves the tree untouched.
func (p *Player) Play(x, y int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pauseLocked()
	defer p.resumeLocked()

	if goban.IsValidPosition(x, y, p.width, p.height) &&
		!p.boardLocked().IsEnabled(x, y, goban.Opposite(p.root.Color()), false) {
		return -1
	}

	oldRoot := p.root
	p.root = oldRoot.Child(x, y)
	p.releaseTreeLocked(oldRoot)

	p.histories[p.boardLocked().PatternHash()] = struct{}{}

	return p.root.Captured()
}

// SetHandicap places handicap stones, alternating passes for white.
func (p *Player) SetHandicap(handicap int) {
	for _, pos := range goban.HandicapPositions(p.width, p.height, handicap) {
		if p.GetColor() != goban.Black {
			p.Play(-1, -1)
		}
		p.Play(pos[0], pos[1])
	}
}

// StartEvaluation resets the search counters and lets the dispatcher
// launch descents with the given root-level parameters.
func (p *Player) StartEvaluation(equally, useUCB1 bool, width int, temperature, noise float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pauseLocked()

	p.params = Params{
		Equally:     equally,
		UseUCB1:     useUCB1,
		Width:       width,
		Temperature: temperature,
		Noise:       noise,
		LeafOnly:    p.leafOnly,
	}
	p.searchVisits = 0
	p.searchPlayouts = 0
	p.stopped = false

	p.resumeLocked()
}

// WaitEvaluation blocks until the launched visits and accumulated
// playouts reach their targets or the time limit elapses. A zero or
// negative limit waits without deadline. With stop, the dispatcher is
// suppressed from launching further descents before returning; no
// in-flight descent is killed.
func (p *Player) WaitEvaluation(visits, playouts int, timelimit time.Duration, stop bool) {
	var expired bool
	var timer *time.Timer

	if timelimit > 0 {
		timer = time.AfterFunc(timelimit, func() {
			p.mu.Lock()
			expired = true
			p.cond.Broadcast()
			p.mu.Unlock()
		})
		defer timer.Stop()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for (p.searchVisits < visits || p.searchPlayouts < playouts) && !expired && !p.terminated {
		if p.stopped && p.running == 0 {
			break
		}
		p.cond.Wait()
	}

	if stop {
		p.stopped = true
		p.cond.Broadcast()
	}
}

// SearchCounts returns the launched visit count and accumulated playout
// count of the current evaluation.
func (p *Player) SearchCounts() (visits, playouts int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.searchVisits, p.searchPlayouts
}

// GetPass returns the pass candidate for the side to move.
func (p *Player) GetPass() Candidate {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pauseLocked()
	defer p.resumeLocked()

	return Candidate{
		X:      -1,
		Y:      -1,
		Color:  goban.Opposite(p.root.Color()),
		Policy: 1.0,
		Value:  p.root.Value(),
	}
}

// GetRandom samples a move from the root's policy priors with the given
// temperature. Under superko, repeating moves fall back to a pass.
func (p *Player) GetRandom(temperature float64) Candidate {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pauseLocked()
	defer p.resumeLocked()

	color := goban.Opposite(p.root.Color())
	x, y := -1, -1

	for attempt := 0; attempt < 10; attempt++ {
		x, y = p.root.RandomMove(temperature, p.rng)

		if !goban.IsValidPosition(x, y, p.width, p.height) {
			break
		}
		if p.superko && p.isSuperkoMoveLocked(x, y, color) {
			x, y = -1, -1
			continue
		}
		break
	}

	return Candidate{
		X:      x,
		Y:      y,
		Color:  color,
		Policy: 1.0,
		Value:  p.root.Value(),
	}
}

// GetCandidates returns the root's children as candidates in insertion
// order, or a single policy-move (or pass) candidate when the root has no
// children yet.
func (p *Player) GetCandidates() []Candidate {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pauseLocked()
	defer p.resumeLocked()

	var candidates []Candidate

	for _, node := range p.root.Children() {
		if p.superko && p.isSuperkoMoveLocked(node.X(), node.Y(), node.Color()) {
			continue
		}
		candidates = append(candidates, Candidate{
			X:          node.X(),
			Y:          node.Y(),
			Color:      node.Color(),
			Visits:     node.Visits(),
			Playouts:   node.Playouts(),
			Policy:     node.Policy(),
			Value:      node.Value(),
			Variations: node.Variations(),
		})
	}

	if len(candidates) == 0 {
		x, y := p.root.PolicyMove()
		candidates = append(candidates, Candidate{
			X:      x,
			Y:      y,
			Color:  goban.Opposite(p.root.Color()),
			Policy: 1.0,
			Value:  p.root.Value(),
		})
	}

	return candidates
}

// GetColor returns the color of the next stone to play.
func (p *Player) GetColor() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return goban.Opposite(p.root.Color())
}

// GetBoardState returns the packed state of the root board.
func (p *Player) GetBoardState() []int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.root.BoardState()
}

// Board reconstructs the root position as a standalone board.
func (p *Player) Board() *goban.Board {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.boardLocked()
}

// IsSuperkoMove reports whether playing (x, y) recreates a previous
// stone arrangement.
func (p *Player) IsSuperkoMove(x, y, color int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isSuperkoMoveLocked(x, y, color)
}

// CleanupPosition returns a move that captures dead enemy stones inside
// confirmed territory, or a pass when none remain. Used to finish games
// under the automatic match rule.
func (p *Player) CleanupPosition(color int) (int, int) {
	board := p.Board()

	colors := board.GetColors(color)
	territories := board.GetTerritories(color)
	enableds := board.GetEnableds(color, false)

	width := board.Width()
	height := board.Height()

	dead := func(x, y int) bool {
		if x < 0 || x >= width || y < 0 || y >= height {
			return false
		}
		cell := y*width + x
		return territories[cell] == goban.Black && colors[cell] == goban.White
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !enableds[y*width+x] {
				continue
			}
			if dead(x-1, y) || dead(x+1, y) || dead(x, y-1) || dead(x, y+1) {
				return x, y
			}
		}
	}

	return -1, -1
}

// NodeStats returns the node pool counters.
func (p *Player) NodeStats() (total, used, pooled int) {
	return p.manager.Stats()
}

func (p *Player) boardLocked() *goban.Board {
	board := goban.NewBoard(p.width, p.height)
	board.LoadState(p.root.BoardState())
	return board
}

func (p *Player) isSuperkoMoveLocked(x, y, color int) bool {
	if !goban.IsValidPosition(x, y, p.width, p.height) {
		return false
	}

	board := p.boardLocked()
	if board.Play(x, y, color) < 0 {
		return false
	}

	_, ok := p.histories[board.PatternHash()]
	return ok
}

// pauseLocked stops the dispatcher from launching descents and waits for
// the running ones to finish. Callers hold mu.
func (p *Player) pauseLocked() {
	p.paused = true
	for p.running > 0 {
		p.cond.Wait()
	}
}

func (p *Player) resumeLocked() {
	p.paused = false
	p.cond.Broadcast()
}

// dispatch launches one descent per free worker while the search is
// neither paused nor stopped.
func (p *Player) dispatch() {
	defer close(p.dispatcherDone)

	for {
		p.mu.Lock()
		for !p.terminated && (p.paused || p.stopped || p.running >= p.pool.Size()) {
			p.cond.Wait()
		}

		if p.terminated {
			p.mu.Unlock()
			return
		}

		p.searchVisits++
		p.running++
		params := p.params
		root := p.root
		p.mu.Unlock()

		p.pool.Submit(func() {
			delta := p.descend(root, params)

			p.mu.Lock()
			p.running--
			p.searchPlayouts += delta
			p.cond.Broadcast()
			p.mu.Unlock()
		})
	}
}

// descend walks the tree from the root, recording the path on the stack,
// and back-propagates the leaf result over it.
func (p *Player) descend(root *Node, params Params) int {
	rng := <-p.rngs
	defer func() { p.rngs <- rng }()

	nodes := []*Node{root}
	current := params

	var value float32
	delta := 0

	for {
		result := nodes[len(nodes)-1].Evaluate(current, rng)
		value = result.Value

		if result.Playouts != 0 {
			delta = result.Playouts
			break
		}
		if result.Node == nil {
			break
		}

		nodes = append(nodes, result.Node)
		current = childParams(params.LeafOnly)
	}

	for _, node := range nodes {
		switch delta {
		case 1:
			node.UpdateValue(value)
		case -1:
			node.CancelValue(value)
		}
		node.AddPlayouts(delta)
	}

	return delta
}

// releaseTreeLocked returns every node of the dropped subtree to the
// pool, skipping the current root.
func (p *Player) releaseTreeLocked(node *Node) {
	stack := []*Node{node}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == p.root {
			continue
		}

		stack = append(stack, current.Children()...)
		p.manager.ReleaseNode(current)
	}
}
