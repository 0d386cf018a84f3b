package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/odvcencio/gitlet/pkg/object"
)

// stepClock returns a clock that advances one minute per call, so commit
// timestamps are deterministic and strictly increasing.
func stepClock() func() time.Time {
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func initTestRepo(t *testing.T, opts ...Option) (*Repo, string) {
	t.Helper()
	dir := t.TempDir()
	opts = append([]Option{WithClock(stepClock())}, opts...)
	r, err := Init(dir, opts...)
	if err != nil {
		t.Fatalf("Init(%q): %v", dir, err)
	}
	return r, dir
}

func writeWork(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", p, err)
	}
}

func readWork(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", name, err)
	}
	return string(data)
}

func removeWork(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.Remove(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
		t.Fatalf("Remove(%s): %v", name, err)
	}
}

func assertWork(t *testing.T, dir, name, want string) {
	t.Helper()
	if got := readWork(t, dir, name); got != want {
		t.Errorf("%s = %q, want %q", name, got, want)
	}
}

func assertNoWork(t *testing.T, dir, name string) {
	t.Helper()
	_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name)))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("%s should not exist in the working tree (stat err = %v)", name, err)
	}
}

func mustAdd(t *testing.T, r *Repo, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := r.Add(name); err != nil {
			t.Fatalf("Add(%q): %v", name, err)
		}
	}
}

func mustCommit(t *testing.T, r *Repo, message string) object.Hash {
	t.Helper()
	h, err := r.Commit(message)
	if err != nil {
		t.Fatalf("Commit(%q): %v", message, err)
	}
	return h
}

// commitFiles writes, stages and commits the given name -> content pairs.
func commitFiles(t *testing.T, r *Repo, dir, message string, files map[string]string) object.Hash {
	t.Helper()
	for name, content := range files {
		writeWork(t, dir, name, content)
		mustAdd(t, r, name)
	}
	return mustCommit(t, r, message)
}

func mustCheckoutBranch(t *testing.T, r *Repo, name string) {
	t.Helper()
	if err := r.CheckoutBranch(name); err != nil {
		t.Fatalf("CheckoutBranch(%q): %v", name, err)
	}
}

func mustHead(t *testing.T, r *Repo) (object.Hash, *object.CommitObj) {
	t.Helper()
	h, c, err := r.HeadCommit()
	if err != nil {
		t.Fatalf("HeadCommit: %v", err)
	}
	return h, c
}

func mustBranchHead(t *testing.T, r *Repo, name string) object.Hash {
	t.Helper()
	h, err := r.BranchHead(name)
	if err != nil {
		t.Fatalf("BranchHead(%q): %v", name, err)
	}
	return h
}

func mustStaging(t *testing.T, r *Repo) *Staging {
	t.Helper()
	stg, err := r.ReadStaging()
	if err != nil {
		t.Fatalf("ReadStaging: %v", err)
	}
	return stg
}

func blobID(r *Repo, content string) object.Hash {
	return r.Store.HashOf(object.TypeBlob, []byte(content))
}

func commitCount(t *testing.T, r *Repo) int {
	t.Helper()
	st, err := r.Store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	return st.Commits.Count
}

// writeCommitAt stores a commit envelope under an id of the caller's
// choosing, bypassing content addressing. Used to build corrupt graphs.
func writeCommitAt(t *testing.T, r *Repo, h object.Hash, c *object.CommitObj) {
	t.Helper()
	data := object.MarshalCommit(c)
	raw := []byte(fmt.Sprintf("%s %d\x00", object.TypeCommit, len(data)))
	raw = append(raw, data...)
	p := filepath.Join(r.GitletDir, "objects", "commit", string(h[:2]), string(h[2:]))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(p, raw, 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", p, err)
	}
}
