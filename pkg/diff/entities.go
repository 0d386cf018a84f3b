package diff

import (
	"fmt"
	"io"

	"github.com/odvcencio/gitlet/pkg/entity"
)

// ChangeType classifies what happened to an entity between two revisions.
type ChangeType int

const (
	Added ChangeType = iota
	Removed
	Modified
)

func (c ChangeType) symbol() string {
	switch c {
	case Added:
		return "+"
	case Removed:
		return "-"
	}
	return "~"
}

// EntityChange is one added, removed or modified top-level entity.
type EntityChange struct {
	Type   ChangeType
	Key    string
	Before *entity.Entity // nil for Added
	After  *entity.Entity // nil for Removed
}

// Entities matches the top-level entities of two revisions of path by key
// and reports what changed. Removals and modifications come in before
// order, additions in after order. A nil side is an absent file. Files
// without a grammar yield entity.ErrUnsupported.
func Entities(path string, before, after []byte) ([]EntityChange, error) {
	beforeList, err := entity.Extract(path, before)
	if err != nil {
		return nil, err
	}
	afterList, err := entity.Extract(path, after)
	if err != nil {
		return nil, err
	}

	afterByKey := make(map[string]*entity.Entity, len(afterList))
	for i := range afterList {
		afterByKey[afterList[i].Key()] = &afterList[i]
	}
	beforeKeys := make(map[string]bool, len(beforeList))

	var changes []EntityChange
	for i := range beforeList {
		b := &beforeList[i]
		key := b.Key()
		beforeKeys[key] = true
		a, ok := afterByKey[key]
		switch {
		case !ok:
			changes = append(changes, EntityChange{Type: Removed, Key: key, Before: b})
		case !entity.SameBody(a, b):
			changes = append(changes, EntityChange{Type: Modified, Key: key, Before: b, After: a})
		}
	}
	for i := range afterList {
		a := &afterList[i]
		if !beforeKeys[a.Key()] {
			changes = append(changes, EntityChange{Type: Added, Key: a.Key(), After: a})
		}
	}
	return changes, nil
}

// WriteEntities writes one line per change under a header naming path,
// e.g. "~ function_declaration Hello (lines 5-7)". Nothing is written when
// changes is empty.
func WriteEntities(w io.Writer, path string, changes []EntityChange) error {
	if len(changes) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "entities %s\n", path); err != nil {
		return err
	}
	for _, c := range changes {
		e := c.After
		if e == nil {
			e = c.Before
		}
		if _, err := fmt.Fprintf(w, "%s %s %s (lines %d-%d)\n", c.Type.symbol(), e.DeclKind, e.Label(), e.StartLine, e.EndLine); err != nil {
			return err
		}
	}
	return nil
}
