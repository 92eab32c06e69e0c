package search

import (
	"math"
	"math/rand"
	"testing"

	"maru/internal/goban"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestNodeFirstEvaluateIsLeaf(t *testing.T) {
	m := NewNodeManager(testConfig(testProcessor(t)))
	root := m.CreateInitNode()
	rng := testRNG()

	result := root.Evaluate(Params{Temperature: 1}, rng)

	if result.Node != nil {
		t.Fatal("first evaluate returned a next node")
	}
	if result.Playouts != 1 {
		t.Fatalf("playouts delta = %d, want 1", result.Playouts)
	}
	// Value head 0.7 rescaled to [-1,1] for black to move.
	if math.Abs(float64(result.Value)-0.4) > 1e-5 {
		t.Fatalf("value = %f, want 0.4", result.Value)
	}
	if root.Visits() != 1 {
		t.Fatalf("visits = %d, want 1", root.Visits())
	}
}

func TestNodeSecondEvaluateExpands(t *testing.T) {
	m := NewNodeManager(testConfig(testProcessor(t)))
	root := m.CreateInitNode()
	rng := testRNG()

	root.Evaluate(Params{Temperature: 1}, rng)
	result := root.Evaluate(Params{Temperature: 1}, rng)

	if result.Node == nil {
		t.Fatal("second evaluate did not expand")
	}
	if result.Playouts != 0 {
		t.Fatalf("playouts delta = %d, want 0", result.Playouts)
	}

	children := root.Children()
	if len(children) != 1 || children[0] != result.Node {
		t.Fatal("child not registered")
	}

	child := result.Node
	if child.Color() != goban.Black {
		t.Fatalf("child color = %d, want black", child.Color())
	}
	if child.Visits() != 0 {
		t.Fatalf("fresh child visits = %d", child.Visits())
	}
}

func TestNodeChildrenAtMostOncePerMove(t *testing.T) {
	m := NewNodeManager(testConfig(testProcessor(t)))
	root := m.CreateInitNode()
	rng := testRNG()

	for i := 0; i < 50; i++ {
		result := root.Evaluate(Params{Temperature: 1}, rng)
		if result.Node != nil && result.Node.Visits() == 0 {
			// Descend one step so selection has visited children.
			result.Node.Evaluate(childParams(false), rng)
			result.Node.UpdateValue(result.Value)
		}
	}

	seen := make(map[[2]int]bool)
	for _, child := range root.Children() {
		key := [2]int{child.X(), child.Y()}
		if seen[key] {
			t.Fatalf("duplicate child for move %v", key)
		}
		seen[key] = true
	}

	root.evalMu.RLock()
	tracked := len(root.children) + len(root.waiting)
	policies := len(root.policies)
	root.evalMu.RUnlock()

	if tracked > policies {
		t.Fatalf("children+waiting = %d exceeds policies = %d", tracked, policies)
	}
}

func TestNodeWidthBoundsChildren(t *testing.T) {
	m := NewNodeManager(testConfig(testProcessor(t)))
	root := m.CreateInitNode()
	rng := testRNG()

	params := Params{Width: 2, Temperature: 1}
	for i := 0; i < 40; i++ {
		result := root.Evaluate(params, rng)
		if result.Node != nil && result.Node.Visits() == 0 {
			result.Node.Evaluate(childParams(false), rng)
			result.Node.UpdateValue(result.Value)
		}
	}

	if got := len(root.Children()); got > 2 {
		t.Fatalf("children = %d, want at most 2", got)
	}
}

func TestNodeLeafOnlyFirstChildCancels(t *testing.T) {
	m := NewNodeManager(testConfig(testProcessor(t)))
	root := m.CreateInitNode()
	rng := testRNG()

	params := Params{Temperature: 1, LeafOnly: true}

	first := root.Evaluate(params, rng)
	if first.Playouts != 1 {
		t.Fatalf("first delta = %d, want 1", first.Playouts)
	}

	second := root.Evaluate(params, rng)
	if second.Playouts != -1 {
		t.Fatalf("second delta = %d, want -1", second.Playouts)
	}
	if second.Node == nil {
		t.Fatal("cancel result lost the new child")
	}

	third := root.Evaluate(params, rng)
	if third.Playouts != 0 || third.Node == nil {
		t.Fatalf("third result = (%v, %d), want second child and 0",
			third.Node, third.Playouts)
	}
}

func TestNodeValueAccumulator(t *testing.T) {
	m := NewNodeManager(testConfig(testProcessor(t)))
	node := m.CreateInitNode()

	if node.Value() != 0 {
		t.Fatalf("initial value = %f", node.Value())
	}

	node.UpdateValue(0.5)
	node.UpdateValue(1.0)
	if math.Abs(float64(node.Value())-0.75) > 1e-6 {
		t.Fatalf("value = %f, want 0.75", node.Value())
	}

	node.CancelValue(1.0)
	if math.Abs(float64(node.Value())-0.5) > 1e-6 {
		t.Fatalf("value after cancel = %f, want 0.5", node.Value())
	}

	node.AddPlayouts(1)
	node.AddPlayouts(-1)
	if node.Playouts() != 0 {
		t.Fatalf("playouts = %d, want 0", node.Playouts())
	}
}

func TestNodePolicyMoveDeterministic(t *testing.T) {
	m := NewNodeManager(testConfig(testProcessor(t)))
	root := m.CreateInitNode()

	// The ramp peaks first at model index 30 = (11,1).
	x, y := root.PolicyMove()
	if x != 11 || y != 1 {
		t.Fatalf("policy move = (%d,%d), want (11,1)", x, y)
	}
}

func TestNodeRandomMoveDeterministic(t *testing.T) {
	m := NewNodeManager(testConfig(testProcessor(t)))
	root := m.CreateInitNode()

	x1, y1 := root.RandomMove(1.0, testRNG())
	x2, y2 := root.RandomMove(1.0, testRNG())

	if x1 != x2 || y1 != y2 {
		t.Fatalf("random move differs across equal seeds: (%d,%d) vs (%d,%d)", x1, y1, x2, y2)
	}
	if !goban.IsValidPosition(x1, y1, 19, 19) {
		t.Fatalf("random move off board: (%d,%d)", x1, y1)
	}
}

func TestNodeVariationsStartWithOwnMove(t *testing.T) {
	m := NewNodeManager(testConfig(testProcessor(t)))
	root := m.CreateInitNode()
	rng := testRNG()

	for i := 0; i < 8; i++ {
		result := root.Evaluate(Params{Temperature: 1}, rng)
		if result.Node != nil {
			result.Node.Evaluate(childParams(false), rng)
			result.Node.UpdateValue(result.Value)
		}
	}

	children := root.Children()
	if len(children) == 0 {
		t.Fatal("no children after descents")
	}

	for _, child := range children {
		variations := child.Variations()
		if len(variations) == 0 {
			t.Fatal("empty variations")
		}
		if variations[0] != [2]int{child.X(), child.Y()} {
			t.Fatalf("variations start = %v, want child move (%d,%d)",
				variations[0], child.X(), child.Y())
		}
	}
}

func TestNodeChildUnregistered(t *testing.T) {
	m := NewNodeManager(testConfig(testProcessor(t)))
	root := m.CreateInitNode()

	child := root.Child(3, 3)
	if child.X() != 3 || child.Y() != 3 {
		t.Fatalf("child move = (%d,%d)", child.X(), child.Y())
	}
	if child.Color() != goban.Black {
		t.Fatalf("child color = %d, want black", child.Color())
	}
	if len(root.Children()) != 0 {
		t.Fatal("child registered by lookup")
	}

	// A pass child works the same way.
	pass := root.Child(-1, -1)
	if pass.Captured() != 0 {
		t.Fatalf("pass captured = %d", pass.Captured())
	}
}

func TestNodeManagerRecycles(t *testing.T) {
	m := NewNodeManager(testConfig(testProcessor(t)))

	node := m.CreateNode()
	node.UpdateValue(1.0)
	node.Evaluate(Params{Temperature: 1}, testRNG())

	m.ReleaseNode(node)

	total, used, pooled := m.Stats()
	if total != 1 || used != 0 || pooled != 1 {
		t.Fatalf("stats = (%d,%d,%d), want (1,0,1)", total, used, pooled)
	}

	recycled := m.CreateNode()
	if recycled != node {
		t.Fatal("free-list node not reused")
	}
	if recycled.Visits() != 0 || recycled.Value() != 0 {
		t.Fatal("recycled node not reset")
	}

	// Releasing a foreign node is a no-op.
	other := NewNodeManager(testConfig(testProcessor(t))).CreateNode()
	m.ReleaseNode(other)
	if _, used, _ := m.Stats(); used != 1 {
		t.Fatalf("used = %d after foreign release", used)
	}
}
