package entity

import (
	"errors"
	"reflect"
	"testing"
)

func labels(list []Entity) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].Kind.String() + " " + list[i].Label()
	}
	return out
}

func TestExtractGoFile(t *testing.T) {
	src := "package main\n\nimport \"fmt\"\n\n// T is a type.\ntype T struct{}\n\nfunc (t *T) M() {}\n\nfunc A() {\n\tfmt.Println()\n}\n\nvar v = 1\n"
	list, err := Extract("main.go", []byte(src))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{
		"preamble preamble",
		"imports imports",
		"declaration T",
		"declaration (t *T) M",
		"declaration A",
		"declaration v",
	}
	if got := labels(list); !reflect.DeepEqual(got, want) {
		t.Errorf("entities = %q, want %q", got, want)
	}

	a := list[4]
	if string(a.Body) != "func A() {\n\tfmt.Println()\n}" {
		t.Errorf("A body = %q", a.Body)
	}
	if a.StartLine != 10 || a.EndLine != 12 {
		t.Errorf("A lines = %d-%d, want 10-12", a.StartLine, a.EndLine)
	}
}

func TestExtractOrdinalsKeepKeysUnique(t *testing.T) {
	src := "package main\n\nfunc init() {}\n\nfunc init() {}\n"
	list, err := Extract("main.go", []byte(src))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	seen := map[string]bool{}
	for i := range list {
		key := list[i].Key()
		if seen[key] {
			t.Errorf("duplicate key %q", key)
		}
		seen[key] = true
	}
	if len(seen) != 3 {
		t.Errorf("got %d keys, want 3", len(seen))
	}
}

func TestExtractUnsupported(t *testing.T) {
	if _, err := Extract("notes.unknownext", []byte("hello")); !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
	if Language("notes.unknownext") != "" {
		t.Error("Language reported a grammar for an unknown extension")
	}
	if Language("main.go") != "go" {
		t.Errorf("Language(main.go) = %q, want go", Language("main.go"))
	}
}

func TestExtractEmpty(t *testing.T) {
	list, err := Extract("main.go", nil)
	if err != nil || len(list) != 0 {
		t.Errorf("Extract(empty) = %v, %v", list, err)
	}
}
