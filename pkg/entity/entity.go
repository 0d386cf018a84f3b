// Package entity splits source files into top-level structural units
// (package clause, imports, declarations) so that changes can be reported
// per declaration instead of per line.
package entity

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned for files no grammar recognises.
var ErrUnsupported = errors.New("no grammar for file type")

// Kind classifies a top-level unit of a source file.
type Kind int

const (
	KindPreamble    Kind = iota // package clause
	KindImportBlock             // import statements
	KindDeclaration             // function, method, type, var, const, class
)

func (k Kind) String() string {
	switch k {
	case KindPreamble:
		return "preamble"
	case KindImportBlock:
		return "imports"
	case KindDeclaration:
		return "declaration"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Entity is one top-level unit of a source file.
type Entity struct {
	Kind      Kind
	DeclKind  string // grammar node type, e.g. "function_declaration"
	Name      string
	Receiver  string // method receiver, empty otherwise
	Ordinal   int    // position among entities sharing the same key base
	Body      []byte
	StartLine int
	EndLine   int
}

// Key identifies e across two revisions of the same file.
func (e *Entity) Key() string {
	return fmt.Sprintf("%s#%d", e.keyBase(), e.Ordinal)
}

func (e *Entity) keyBase() string {
	if e.Kind != KindDeclaration {
		return e.Kind.String()
	}
	return strings.Join([]string{e.DeclKind, e.Receiver, e.Name}, ":")
}

// Label is a short human-readable name, e.g. "(r *Repo) Commit".
func (e *Entity) Label() string {
	switch {
	case e.Kind != KindDeclaration:
		return e.Kind.String()
	case e.Receiver != "":
		return "(" + e.Receiver + ") " + e.Name
	case e.Name != "":
		return e.Name
	}
	return e.DeclKind
}

// SameBody reports whether two entities have identical source text.
func SameBody(a, b *Entity) bool {
	return bytes.Equal(a.Body, b.Body)
}
