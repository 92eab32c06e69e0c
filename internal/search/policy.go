// Package search implements the tree search: evaluator-backed nodes
// allocated from a pool, selected by PUCB/UCB1/equal-visit policies,
// expanded through Gumbel-noised priors, and driven by a worker pool
// orchestrated by the Player.
package search

// Policy is one candidate move with its network prior. LocalVisits counts
// how often the expansion step picked this policy at its node.
type Policy struct {
	X           int
	Y           int
	Prior       float32
	LocalVisits int
}

// Priority is the base expansion priority; repeated picks decay it.
func (p Policy) Priority() float32 {
	return p.Prior / float32(p.LocalVisits+1)
}
