package repo

import (
	"fmt"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/sirupsen/logrus"
)

const maxGraphTraversalSteps = 1_000_000

// graphTraversalStepsLimit lets tests tighten the traversal bound without
// affecting production defaults.
var graphTraversalStepsLimit = maxGraphTraversalSteps

func graphStepsLimit() int {
	// The hard maximum stays a bound; test hooks may only tighten it.
	if graphTraversalStepsLimit <= 0 || graphTraversalStepsLimit > maxGraphTraversalSteps {
		return maxGraphTraversalSteps
	}
	return graphTraversalStepsLimit
}

func graphStepsLimitError(op string, limit int) error {
	return fmt.Errorf("%s: traversal exceeded maximum steps (%d)", op, limit)
}

// commitCache memoizes commit reads for the duration of one graph query.
type commitCache struct {
	store   *object.Store
	commits map[object.Hash]*object.CommitObj
}

func newCommitCache(store *object.Store) *commitCache {
	return &commitCache{store: store, commits: make(map[object.Hash]*object.CommitObj)}
}

func (c *commitCache) get(h object.Hash) (*object.CommitObj, error) {
	if commit, ok := c.commits[h]; ok {
		return commit, nil
	}
	commit, err := c.store.ReadCommit(h)
	if err != nil {
		return nil, err
	}
	c.commits[h] = commit
	return commit, nil
}

// splitSide is one of the two simultaneous expansions of FindSplitPoint.
type splitSide struct {
	frontier []object.Hash
	visited  map[object.Hash]bool
}

func newSplitSide(start object.Hash) *splitSide {
	return &splitSide{
		frontier: []object.Hash{start},
		visited:  map[object.Hash]bool{start: true},
	}
}

// FindSplitPoint returns the split point of two commits: a common ancestor
// found by expanding both histories one parent-generation at a time, side a
// first, visiting the first parent before the second. The first commit one
// side reaches that the other side has already visited is returned. When
// one commit is an ancestor of the other, that commit is the result; this is
// checked up front because a merge commit's second parent can reach an older
// common ancestor before the search meets the nearer one.
//
// On histories with several merge bases the result is the base the
// alternating search meets first, which is not guaranteed to be the lowest
// common ancestor. An empty hash means the histories are disjoint.
func (r *Repo) FindSplitPoint(a, b object.Hash) (object.Hash, error) {
	if a == "" || b == "" {
		return "", nil
	}
	if a == b {
		return a, nil
	}

	// Fast path: one side already contains the other.
	bInA, err := r.IsAncestor(b, a)
	if err != nil {
		return "", fmt.Errorf("find split point: %w", err)
	}
	if bInA {
		return b, nil
	}
	aInB, err := r.IsAncestor(a, b)
	if err != nil {
		return "", fmt.Errorf("find split point: %w", err)
	}
	if aInB {
		return a, nil
	}

	cache := newCommitCache(r.Store)
	sideA := newSplitSide(a)
	sideB := newSplitSide(b)
	limit := graphStepsLimit()
	steps := 0

	for len(sideA.frontier) > 0 || len(sideB.frontier) > 0 {
		for _, pair := range [2][2]*splitSide{{sideA, sideB}, {sideB, sideA}} {
			hit, err := r.expandSplitSide(cache, pair[0], pair[1], &steps, limit)
			if err != nil {
				return "", err
			}
			if hit != "" {
				r.log.WithFields(logrus.Fields{
					"a":     a,
					"b":     b,
					"split": hit,
					"steps": steps,
				}).Debug("split point found")
				return hit, nil
			}
		}
	}
	return "", nil
}

// expandSplitSide replaces side's frontier with the parents of its members.
// It returns the first newly visited commit that other has already visited.
func (r *Repo) expandSplitSide(cache *commitCache, side, other *splitSide, steps *int, limit int) (object.Hash, error) {
	var next []object.Hash
	for _, h := range side.frontier {
		*steps++
		if *steps > limit {
			return "", graphStepsLimitError("find split point", limit)
		}
		c, err := cache.get(h)
		if err != nil {
			return "", fmt.Errorf("find split point: read commit %s: %w", h, err)
		}
		for _, p := range c.Parents() {
			if side.visited[p] {
				continue
			}
			side.visited[p] = true
			if other.visited[p] {
				return p, nil
			}
			next = append(next, p)
		}
	}
	side.frontier = next
	return "", nil
}

// IsAncestor reports whether ancestor is reachable from descendant through
// parent links. A commit is its own ancestor.
func (r *Repo) IsAncestor(ancestor, descendant object.Hash) (bool, error) {
	if ancestor == "" || descendant == "" {
		return false, nil
	}
	cache := newCommitCache(r.Store)
	limit := graphStepsLimit()
	visited := map[object.Hash]bool{descendant: true}
	queue := []object.Hash{descendant}
	steps := 0

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h == ancestor {
			return true, nil
		}
		steps++
		if steps > limit {
			return false, graphStepsLimitError("is ancestor", limit)
		}
		c, err := cache.get(h)
		if err != nil {
			return false, fmt.Errorf("is ancestor: read commit %s: %w", h, err)
		}
		for _, p := range c.Parents() {
			if !visited[p] {
				visited[p] = true
				queue = append(queue, p)
			}
		}
	}
	return false, nil
}

// FirstParentHistory walks first-parent links from start to the root and
// returns each commit in order, start first. A commit seen twice means the
// store is corrupt and yields an error instead of looping.
func (r *Repo) FirstParentHistory(start object.Hash) ([]LogEntry, error) {
	limit := graphStepsLimit()
	seen := make(map[object.Hash]bool)
	var out []LogEntry

	for h := start; h != ""; {
		if seen[h] {
			return nil, fmt.Errorf("first-parent history: cycle at commit %s", h)
		}
		seen[h] = true
		if len(out) >= limit {
			return nil, graphStepsLimitError("first-parent history", limit)
		}
		c, err := r.Store.ReadCommit(h)
		if err != nil {
			return nil, fmt.Errorf("first-parent history: read commit %s: %w", h, err)
		}
		out = append(out, LogEntry{Hash: h, Commit: c})
		h = c.Parent
	}
	return out, nil
}
