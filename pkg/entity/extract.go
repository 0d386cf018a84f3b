package entity

import (
	"bytes"
	"fmt"

	gotreesitter "github.com/odvcencio/gotreesitter"
	"github.com/odvcencio/gotreesitter/grammars"
)

var (
	preambleTypes = map[string]bool{
		"package_clause":      true,
		"package_declaration": true,
	}
	importTypes = map[string]bool{
		"import_declaration":    true,
		"import_statement":      true,
		"import_from_statement": true,
		"use_declaration":       true,
		"preproc_include":       true,
	}
	declarationTypes = map[string]bool{
		"function_declaration":  true,
		"method_declaration":    true,
		"type_declaration":      true,
		"var_declaration":       true,
		"const_declaration":     true,
		"function_definition":   true,
		"function_item":         true,
		"class_definition":      true,
		"class_declaration":     true,
		"interface_declaration": true,
		"enum_declaration":      true,
		"struct_item":           true,
		"enum_item":             true,
		"trait_item":            true,
		"impl_item":             true,
		"decorated_definition":  true,
		"lexical_declaration":   true,
		"export_statement":      true,
	}
	identifierTypes = map[string]bool{
		"identifier":          true,
		"type_identifier":     true,
		"field_identifier":    true,
		"property_identifier": true,
		"name":                true,
	}
)

// Language returns the grammar name for path, or "" when none applies.
func Language(path string) string {
	if entry := grammars.DetectLanguage(path); entry != nil {
		return entry.Name
	}
	return ""
}

// Extract parses source and returns its top-level entities in file order.
// Comments and blank space between entities are not reported.
func Extract(path string, source []byte) ([]Entity, error) {
	if Language(path) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	if len(source) == 0 {
		return nil, nil
	}
	bt, err := grammars.ParseFile(path, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer bt.Release()

	root := bt.RootNode()
	var out []Entity
	for i := 0; i < root.ChildCount(); i++ {
		node := root.Child(i)
		if node == nil {
			continue
		}
		nodeType := bt.NodeType(node)
		e := Entity{DeclKind: nodeType}
		switch {
		case preambleTypes[nodeType]:
			e.Kind = KindPreamble
		case importTypes[nodeType]:
			e.Kind = KindImportBlock
		case declarationTypes[nodeType]:
			e.Kind = KindDeclaration
			e.Name, e.Receiver = declarationName(bt, node)
		default:
			continue
		}
		start, end := node.StartByte(), node.EndByte()
		e.Body = source[start:end]
		e.StartLine = 1 + bytes.Count(source[:start], []byte("\n"))
		e.EndLine = e.StartLine + bytes.Count(e.Body, []byte("\n"))
		out = append(out, e)
	}

	seen := map[string]int{}
	for i := range out {
		base := out[i].keyBase()
		out[i].Ordinal = seen[base]
		seen[base]++
	}
	return out, nil
}

// declarationName finds the declared name and, for Go methods, the receiver.
func declarationName(bt *gotreesitter.BoundTree, node *gotreesitter.Node) (name, receiver string) {
	switch bt.NodeType(node) {
	case "method_declaration":
		for i := 0; i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			switch bt.NodeType(child) {
			case "parameter_list":
				if receiver == "" {
					receiver = trimParens(bt.NodeText(child))
				}
			case "field_identifier":
				return bt.NodeText(child), receiver
			}
		}
		return "", receiver
	case "type_declaration", "var_declaration", "const_declaration":
		for i := 0; i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			switch bt.NodeType(child) {
			case "type_spec", "var_spec", "const_spec":
				return firstIdentifier(bt, child), ""
			}
		}
	}
	return firstIdentifier(bt, node), ""
}

// firstIdentifier walks node depth-first and returns the first identifier.
func firstIdentifier(bt *gotreesitter.BoundTree, node *gotreesitter.Node) string {
	stack := []*gotreesitter.Node{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n != node && identifierTypes[bt.NodeType(n)] {
			return bt.NodeText(n)
		}
		for i := n.ChildCount() - 1; i >= 0; i-- {
			if c := n.Child(i); c != nil {
				stack = append(stack, c)
			}
		}
	}
	return ""
}

func trimParens(s string) string {
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		return s[1 : len(s)-1]
	}
	return s
}
