package repo

import (
	"testing"
)

func TestDiff_WorkingTree(t *testing.T) {
	r, dir := initTestRepo(t)
	commitFiles(t, r, dir, "base", map[string]string{"edit.txt": "1\n", "gone.txt": "g\n", "same.txt": "s\n", "empty.txt": ""})
	writeWork(t, dir, "edit.txt", "2\n")
	writeWork(t, dir, "staged.txt", "v1\n")
	mustAdd(t, r, "staged.txt")
	writeWork(t, dir, "staged.txt", "v2\n")
	removeWork(t, dir, "gone.txt")
	removeWork(t, dir, "empty.txt")
	writeWork(t, dir, "untracked.txt", "u\n")

	deltas, err := r.Diff(false)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	want := []struct {
		path, before string
		after        *string
	}{
		{"edit.txt", "1\n", str("2\n")},
		{"empty.txt", "", nil},
		{"gone.txt", "g\n", nil},
		{"staged.txt", "v1\n", str("v2\n")},
	}
	if len(deltas) != len(want) {
		t.Fatalf("Diff returned %d deltas, want %d: %+v", len(deltas), len(want), deltas)
	}
	for i, w := range want {
		d := deltas[i]
		if d.Path != w.path || string(d.Before) != w.before || d.Before == nil {
			t.Errorf("deltas[%d] = %q before %q, want %q before %q", i, d.Path, d.Before, w.path, w.before)
		}
		switch {
		case w.after == nil && d.After != nil:
			t.Errorf("%s: After = %q, want absent", d.Path, d.After)
		case w.after != nil && string(d.After) != *w.after:
			t.Errorf("%s: After = %q, want %q", d.Path, d.After, *w.after)
		}
	}
}

func TestDiff_Staged(t *testing.T) {
	r, dir := initTestRepo(t)
	commitFiles(t, r, dir, "base", map[string]string{"edit.txt": "1\n", "drop.txt": "d\n"})
	writeWork(t, dir, "edit.txt", "2\n")
	writeWork(t, dir, "new.txt", "n\n")
	mustAdd(t, r, "edit.txt", "new.txt")
	if err := r.Remove("drop.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	deltas, err := r.Diff(true)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(deltas) != 3 {
		t.Fatalf("Diff returned %+v", deltas)
	}
	if d := deltas[0]; d.Path != "drop.txt" || string(d.Before) != "d\n" || d.After != nil {
		t.Errorf("drop.txt delta = %+v", d)
	}
	if d := deltas[1]; d.Path != "edit.txt" || string(d.Before) != "1\n" || string(d.After) != "2\n" {
		t.Errorf("edit.txt delta = %+v", d)
	}
	if d := deltas[2]; d.Path != "new.txt" || d.Before != nil || string(d.After) != "n\n" {
		t.Errorf("new.txt delta = %+v", d)
	}
}
