package object

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Reachability is the result of walking the object graph from a set of
// commit roots.
type Reachability struct {
	Objects map[Hash]ObjectType
	Missing []Hash // referenced but absent, sorted
}

// ReachableSet returns all objects reachable from the given commit roots by
// following parent links and file mappings. The walk uses an explicit stack
// so long histories do not grow the goroutine stack.
func (s *Store) ReachableSet(roots []Hash) (*Reachability, error) {
	roots = uniqueNormalizedHashes(roots)
	out := &Reachability{Objects: make(map[Hash]ObjectType)}
	missing := make(map[Hash]struct{})

	type item struct {
		hash Hash
		typ  ObjectType
	}
	stack := make([]item, 0, len(roots))
	for _, h := range roots {
		stack = append(stack, item{hash: h, typ: TypeCommit})
	}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := out.Objects[it.hash]; ok {
			continue
		}
		if !s.Has(it.typ, it.hash) {
			missing[it.hash] = struct{}{}
			continue
		}
		out.Objects[it.hash] = it.typ
		if it.typ != TypeCommit {
			continue
		}

		c, err := s.ReadCommit(it.hash)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				missing[it.hash] = struct{}{}
				continue
			}
			return nil, fmt.Errorf("reachable set read %s: %w", it.hash, err)
		}
		for _, p := range c.Parents() {
			stack = append(stack, item{hash: p, typ: TypeCommit})
		}
		for _, b := range c.Files {
			stack = append(stack, item{hash: b, typ: TypeBlob})
		}
	}

	for h := range missing {
		out.Missing = append(out.Missing, h)
	}
	sort.Slice(out.Missing, func(i, j int) bool { return out.Missing[i] < out.Missing[j] })
	return out, nil
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.TrimSpace(string(h)))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
