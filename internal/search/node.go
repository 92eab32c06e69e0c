package search

import (
	"math"
	"math/rand"
	"sync"

	"maru/internal/goban"
)

// Params carries the selection settings of one evaluate call. They apply
// only at the root of a descent; deeper calls use childParams.
type Params struct {
	Equally     bool
	UseUCB1     bool
	Width       int
	Temperature float64
	Noise       float64
	LeafOnly    bool
}

func childParams(leafOnly bool) Params {
	return Params{Temperature: 1, LeafOnly: leafOnly}
}

// Result is the outcome of one evaluate call. Node is the next node to
// descend into, if any. Playouts is +1 when this node was evaluated as a
// leaf, -1 when a leaf-only expansion cancels the value credited for this
// node earlier, and 0 when the descent continues.
type Result struct {
	Node     *Node
	Value    float32
	Playouts int
}

// Node is one search-tree node: a board snapshot, the memoized network
// evaluation, and the children discovered so far. Two read/write locks
// split the state: evalMu guards structure (evaluation, policies,
// children, waiting queue, visits), valueMu guards the accumulators.
// Nodes never point at their parent; descents record their path on the
// worker's stack, keeping the tree acyclic for pool recycling.
type Node struct {
	manager *NodeManager

	board     goban.Board
	x         int
	y         int
	color     int
	captured  int
	policy    float32
	evaluator Evaluator

	evalMu     sync.RWMutex
	policies   []Policy
	children   map[int]*Node
	childOrder []int
	waiting    []Policy
	waitingSet map[int]struct{}
	visits     int

	valueMu  sync.RWMutex
	sumValue float32
	count    int
	playouts int
}

func newNode(m *NodeManager) *Node {
	n := &Node{
		manager:    m,
		x:          -1,
		y:          -1,
		color:      goban.White,
		evaluator:  newEvaluator(m.cfg.Processor, m.cfg.Komi, m.cfg.Rule, m.cfg.Superko),
		children:   make(map[int]*Node),
		waitingSet: make(map[int]struct{}),
	}
	n.board = *goban.NewBoard(m.cfg.Width, m.cfg.Height)
	return n
}

// reset returns the node to its post-construction state for reuse.
func (n *Node) reset() {
	n.x = -1
	n.y = -1
	n.color = goban.White
	n.captured = 0
	n.policy = 0
	n.evaluator.clear()
	n.policies = nil
	n.children = make(map[int]*Node)
	n.childOrder = nil
	n.waiting = nil
	n.waitingSet = make(map[int]struct{})
	n.visits = 0
	n.sumValue = 0
	n.count = 0
	n.playouts = 0
	n.board.Clear()
}

// setAsNextNode initializes this node as the position after playing
// (x, y) on prev's board.
func (n *Node) setAsNextNode(prev *Node, x, y int, policy float32) {
	n.x = x
	n.y = y
	n.color = goban.Opposite(prev.color)
	n.policy = policy

	n.board.CopyFrom(&prev.board)
	n.captured = n.board.Play(x, y, n.color)
}

// Evaluate performs one selection step at this node and returns what the
// descent should do next. The first visit (and any node without candidate
// policies) terminates the descent with this node's value. Otherwise the
// step may enqueue one more policy for expansion, materialize the oldest
// waiting policy as a new child, or select among the existing children.
func (n *Node) Evaluate(params Params, rng *rand.Rand) Result {
	n.evalMu.Lock()
	defer n.evalMu.Unlock()

	n.evaluateLocked()

	n.visits++

	value := n.evaluator.getValue()

	if n.visits == 1 || len(n.policies) == 0 {
		return Result{Value: value, Playouts: 1}
	}

	// Grow the set of tracked moves while the policy list and the search
	// width allow it.
	childrenCount := len(n.children) + len(n.waiting)

	if childrenCount < len(n.policies) && (params.Width < 1 || childrenCount < params.Width) {
		best := n.pickPolicyLocked(params, childrenCount, rng)
		p := &n.policies[best]
		key := n.moveKey(p.X, p.Y)

		_, isChild := n.children[key]
		_, isWaiting := n.waitingSet[key]

		if !isChild && !isWaiting {
			n.waiting = append(n.waiting, *p)
			n.waitingSet[key] = struct{}{}
		}

		p.LocalVisits++
	}

	// Materialize the oldest waiting policy as a child.
	if len(n.waiting) > 0 && (params.Width <= 0 || len(n.children) < params.Width) {
		p := n.waiting[0]
		n.waiting = n.waiting[1:]
		key := n.moveKey(p.X, p.Y)
		delete(n.waitingSet, key)

		if _, ok := n.children[key]; !ok {
			child := n.manager.CreateNode()
			child.setAsNextNode(n, p.X, p.Y, p.Prior)
			n.children[key] = child
			n.childOrder = append(n.childOrder, key)

			// The first expansion of a leaf-only node withdraws the value
			// this node contributed while it still counted as a leaf.
			if len(n.children) == 1 && params.LeafOnly {
				return Result{Node: child, Value: value, Playouts: -1}
			}

			return Result{Node: child, Value: value}
		}
	}

	return Result{Node: n.selectChildLocked(params), Value: value}
}

// evaluateLocked runs the network evaluation once. Callers hold evalMu.
func (n *Node) evaluateLocked() {
	if n.evaluator.isEvaluated() {
		return
	}

	n.evaluator.evaluate(&n.board, goban.Opposite(n.color))
	n.policies = append([]Policy(nil), n.evaluator.getPolicies()...)
}

// pickPolicyLocked returns the index of the policy with the highest
// adjusted priority. In equally mode, untracked moves outrank tracked
// ones regardless of priority.
func (n *Node) pickPolicyLocked(params Params, childrenCount int, rng *rand.Rand) int {
	winChance := float64(n.evaluator.getValue())*float64(goban.Opposite(n.color))*0.5 + 0.5

	temperature := params.Temperature
	if temperature <= 0 {
		temperature = 1
	}
	temperaturePower := winChance + (1/temperature)*(1-winChance)

	noiseScale := 0.0
	if childrenCount > 4 {
		noiseScale = params.Noise
	}

	best := -1
	bestTier := -1
	bestPriority := 0.0

	for i := range n.policies {
		p := &n.policies[i]
		key := n.moveKey(p.X, p.Y)

		_, isChild := n.children[key]
		_, isWaiting := n.waitingSet[key]

		// In equally mode, moves already tracked fall into a strictly
		// lower tier so unseen moves win.
		tier := 1
		if params.Equally && (isChild || isWaiting) {
			tier = 0
		}

		adjusted := math.Pow(float64(p.Prior), temperaturePower)
		if noiseScale > 0 {
			u := rng.Float64()
			if u <= 0 {
				u = math.SmallestNonzeroFloat64
			}
			adjusted *= math.Exp(-noiseScale * math.Log(-math.Log(u)))
		}
		priority := adjusted / float64(p.LocalVisits+1)

		if best == -1 || tier > bestTier || (tier == bestTier && priority > bestPriority) {
			best, bestTier, bestPriority = i, tier, priority
		}
	}

	return best
}

// selectChildLocked picks the next child by the configured selection
// rule, keeping only the top-width children by LCB when a width is set.
func (n *Node) selectChildLocked(params Params) *Node {
	type scored struct {
		node *Node
		lcb  float64
	}

	children := make([]scored, 0, len(n.childOrder))
	for _, key := range n.childOrder {
		child := n.children[key]
		children = append(children, scored{child, float64(child.ValueLCB()) * float64(child.color)})
	}

	if params.Width > 0 && len(children) > params.Width {
		for i := 0; i < params.Width; i++ {
			maxIndex := i
			for j := i + 1; j < len(children); j++ {
				if children[j].lcb > children[maxIndex].lcb {
					maxIndex = j
				}
			}
			children[i], children[maxIndex] = children[maxIndex], children[i]
		}
		children = children[:params.Width]
	}

	best := children[0].node
	bestPriority := math.Inf(-1)

	for _, c := range children {
		var priority float64

		switch {
		case params.Equally:
			visits := float64(c.node.Visits())
			value := float64(c.node.Value()) * float64(c.node.color)
			priority = 1.0 / (visits + 1 - value*0.5)
		case params.UseUCB1:
			priority = c.node.PriorityByUCB1(n.visits)
		default:
			priority = c.node.PriorityByPUCB(n.visits)
		}

		if priority > bestPriority {
			best = c.node
			bestPriority = priority
		}
	}

	return best
}

func (n *Node) moveKey(x, y int) int {
	return y*n.board.Width() + x
}

// UpdateValue credits one leaf value to the accumulator.
func (n *Node) UpdateValue(value float32) {
	n.valueMu.Lock()
	n.sumValue += value
	n.count++
	n.valueMu.Unlock()
}

// CancelValue withdraws a value credited by an earlier descent through
// this node.
func (n *Node) CancelValue(value float32) {
	n.valueMu.Lock()
	n.sumValue -= value
	n.count--
	n.valueMu.Unlock()
}

// AddPlayouts adjusts the playout counter by delta.
func (n *Node) AddPlayouts(delta int) {
	n.valueMu.Lock()
	n.playouts += delta
	n.valueMu.Unlock()
}

// X returns the x coordinate of the move that created this node.
func (n *Node) X() int { return n.x }

// Y returns the y coordinate of the move that created this node.
func (n *Node) Y() int { return n.y }

// Color returns the color that played this node's move.
func (n *Node) Color() int { return n.color }

// Captured returns the number of stones this node's move captured.
func (n *Node) Captured() int { return n.captured }

// Policy returns the network prior of this node's move.
func (n *Node) Policy() float32 { return n.policy }

// Visits returns the number of times the search entered this node.
func (n *Node) Visits() int {
	n.evalMu.RLock()
	defer n.evalMu.RUnlock()
	return n.visits
}

// Playouts returns the accumulated playout count.
func (n *Node) Playouts() int {
	n.valueMu.RLock()
	defer n.valueMu.RUnlock()
	return n.playouts
}

// Value returns the mean accumulated value, zero before any update.
func (n *Node) Value() float32 {
	n.valueMu.RLock()
	defer n.valueMu.RUnlock()
	return n.valueLocked()
}

func (n *Node) valueLocked() float32 {
	if n.count == 0 {
		return 0
	}
	return n.sumValue / float32(n.count)
}

// ValueLCB returns the lower confidence bound of the value, signed so
// that a worse bound is lower for the node's color.
func (n *Node) ValueLCB() float32 {
	visits := n.Visits()

	n.valueMu.RLock()
	defer n.valueMu.RUnlock()

	if n.count == 0 {
		return 0
	}
	lower := 1.96 * 0.5 / float32(math.Sqrt(float64(visits)+1))
	return n.valueLocked() - lower*float32(n.color)
}

// PriorityByPUCB scores this node for selection by its parent, mixing
// value and prior with the standard exploration term.
func (n *Node) PriorityByPUCB(totalVisits int) float64 {
	visits := n.Visits()

	n.valueMu.RLock()
	defer n.valueMu.RUnlock()

	if n.count == 0 {
		return -99.0
	}

	cPuct := math.Log((1+float64(totalVisits)+19652.0)/19652.0) + 1.25
	value := float64(n.valueLocked()) * float64(n.color)
	upper := cPuct * float64(n.policy) * math.Sqrt(float64(totalVisits)) / (1 + float64(visits))
	return value + 2*upper
}

// PriorityByUCB1 scores this node for selection by its parent without
// using the prior.
func (n *Node) PriorityByUCB1(totalVisits int) float64 {
	visits := n.Visits()

	n.valueMu.RLock()
	defer n.valueMu.RUnlock()

	if n.count == 0 {
		return -99.0
	}

	value := float64(n.valueLocked()) * float64(n.color)
	upper := 0.5 * math.Sqrt(math.Log(float64(totalVisits))/(float64(visits)+1))
	return value + upper
}

// Children returns the child nodes in insertion order.
func (n *Node) Children() []*Node {
	n.evalMu.RLock()
	defer n.evalMu.RUnlock()

	children := make([]*Node, 0, len(n.childOrder))
	for _, key := range n.childOrder {
		children = append(children, n.children[key])
	}
	return children
}

// Child returns the node reached by playing (x, y) here. A missing child
// is created through the pool but not registered, so releasing this
// node's subtree will not touch it.
func (n *Node) Child(x, y int) *Node {
	n.evalMu.Lock()
	defer n.evalMu.Unlock()

	if goban.IsValidPosition(x, y, n.board.Width(), n.board.Height()) {
		if child, ok := n.children[n.moveKey(x, y)]; ok {
			return child
		}
	}

	child := n.manager.CreateNode()
	child.setAsNextNode(n, x, y, 1.0)
	return child
}

// Variations traces the most visited line from this node, starting with
// this node's own move.
func (n *Node) Variations() [][2]int {
	var variations [][2]int

	for cur := n; cur != nil; cur = cur.maxVisitChild() {
		variations = append(variations, [2]int{cur.x, cur.y})
	}

	return variations
}

func (n *Node) maxVisitChild() *Node {
	n.evalMu.RLock()
	defer n.evalMu.RUnlock()

	var best *Node
	maxVisits := 0

	for _, key := range n.childOrder {
		child := n.children[key]
		if v := child.Visits(); v > maxVisits {
			maxVisits = v
			best = child
		}
	}

	return best
}

// RandomMove samples a move from the candidate policies with the given
// temperature; higher temperatures flatten the distribution. Returns a
// pass when no candidate exists.
func (n *Node) RandomMove(temperature float64, rng *rand.Rand) (int, int) {
	temperature = math.Max(temperature, 0.1)

	n.evalMu.Lock()
	n.evaluateLocked()
	policies := append([]Policy(nil), n.policies...)
	n.evalMu.Unlock()

	if len(policies) == 0 {
		return -1, -1
	}

	weights := make([]float64, len(policies))
	total := 0.0

	for i, p := range policies {
		weights[i] = math.Pow(float64(p.Prior), 1/temperature)
		total += weights[i]
	}

	if total <= 0 {
		p := policies[rng.Intn(len(policies))]
		return p.X, p.Y
	}

	target := rng.Float64() * total
	for i, w := range weights {
		target -= w
		if target <= 0 {
			return policies[i].X, policies[i].Y
		}
	}

	last := policies[len(policies)-1]
	return last.X, last.Y
}

// PolicyMove returns the candidate with the highest prior, or a pass when
// none exists.
func (n *Node) PolicyMove() (int, int) {
	n.evalMu.Lock()
	n.evaluateLocked()
	policies := n.policies
	n.evalMu.Unlock()

	if len(policies) == 0 {
		return -1, -1
	}

	best := policies[0]
	for _, p := range policies[1:] {
		if p.Prior > best.Prior {
			best = p
		}
	}

	return best.X, best.Y
}

// BoardState returns the packed state of this node's board.
func (n *Node) BoardState() []int32 {
	n.evalMu.RLock()
	defer n.evalMu.RUnlock()
	return n.board.GetState()
}
