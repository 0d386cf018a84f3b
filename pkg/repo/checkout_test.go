package repo

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestCheckoutFile_RestoresFromHead(t *testing.T) {
	r, dir := initTestRepo(t)
	commitFiles(t, r, dir, "first", map[string]string{"a.txt": "committed"})

	writeWork(t, dir, "a.txt", "scribbled")
	mustAdd(t, r, "a.txt")
	if err := r.CheckoutFile("a.txt"); err != nil {
		t.Fatalf("CheckoutFile: %v", err)
	}
	assertWork(t, dir, "a.txt", "committed")

	// Staging is left alone.
	if _, ok := mustStaging(t, r).Additions["a.txt"]; !ok {
		t.Error("CheckoutFile cleared the staged addition")
	}

	if err := r.CheckoutFile("missing.txt"); !errors.Is(err, ErrFileNotInCommit) {
		t.Errorf("CheckoutFile(missing) err = %v, want ErrFileNotInCommit", err)
	}
}

func TestCheckoutCommitFile(t *testing.T) {
	r, dir := initTestRepo(t)
	first := commitFiles(t, r, dir, "first", map[string]string{"a.txt": "hello"})
	second := commitFiles(t, r, dir, "second", map[string]string{"a.txt": "world"})

	if err := r.CheckoutCommitFile(string(first[:8]), "a.txt"); err != nil {
		t.Fatalf("CheckoutCommitFile(short id): %v", err)
	}
	assertWork(t, dir, "a.txt", "hello")
	if head, _ := mustHead(t, r); head != second {
		t.Errorf("head moved to %s, want %s", head, second)
	}

	tests := []struct {
		name string
		id   string
		path string
		want error
	}{
		{"unknown id", strings.Repeat("f", 40), "a.txt", ErrCommitNotFound},
		{"non-hex id", "zzzz", "a.txt", ErrCommitNotFound},
		{"file not in commit", string(first), "b.txt", ErrFileNotInCommit},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := r.CheckoutCommitFile(tc.id, tc.path); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCheckoutCommitFile_AmbiguousPrefix(t *testing.T) {
	r, dir := initTestRepo(t)
	// Enough commits that some single hex digit is shared by two ids.
	seen := map[byte]bool{}
	var prefix string
	for i := 0; prefix == "" && i < 40; i++ {
		h := commitFiles(t, r, dir, "c", map[string]string{"f": strings.Repeat("y", i+1)})
		if seen[h[0]] {
			prefix = string(h[:1])
		}
		seen[h[0]] = true
	}
	if prefix == "" {
		t.Fatal("could not produce two commits sharing a first digit")
	}
	if err := r.CheckoutCommitFile(prefix, "f"); !errors.Is(err, ErrAmbiguousCommitID) {
		t.Fatalf("err = %v, want ErrAmbiguousCommitID", err)
	}
}

func listWorkTree(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".gitlet" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, _ := filepath.Rel(dir, p)
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir: %v", err)
	}
	sort.Strings(out)
	return out
}

func TestCheckoutBranch_RoundTrip(t *testing.T) {
	r, dir := initTestRepo(t)
	commitFiles(t, r, dir, "base", map[string]string{"shared.txt": "s", "old/only.txt": "o"})
	if err := r.Branch("other"); err != nil {
		t.Fatalf("Branch: %v", err)
	}

	writeWork(t, dir, "master.txt", "m")
	mustAdd(t, r, "master.txt")
	if err := r.Remove("old/only.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	mustCommit(t, r, "master work")

	mustCheckoutBranch(t, r, "other")
	if got := strings.Join(listWorkTree(t, dir), ","); got != "old/only.txt,shared.txt" {
		t.Errorf("working tree on other = %s", got)
	}
	if cur, _ := r.CurrentBranch(); cur != "other" {
		t.Errorf("CurrentBranch = %q, want other", cur)
	}

	mustCheckoutBranch(t, r, "master")
	if got := strings.Join(listWorkTree(t, dir), ","); got != "master.txt,shared.txt" {
		t.Errorf("working tree on master = %s", got)
	}
	assertNoWork(t, dir, "old")
	assertWork(t, dir, "master.txt", "m")
}

func TestCheckoutBranch_ClearsStaging(t *testing.T) {
	r, dir := initTestRepo(t)
	if err := r.Branch("other"); err != nil {
		t.Fatalf("Branch: %v", err)
	}
	writeWork(t, dir, "new.txt", "n")
	mustAdd(t, r, "new.txt")

	mustCheckoutBranch(t, r, "other")
	if !mustStaging(t, r).IsEmpty() {
		t.Error("staging not cleared by branch checkout")
	}
	// The untracked file survives: neither commit tracks it.
	assertWork(t, dir, "new.txt", "n")
}

func TestCheckoutBranch_Errors(t *testing.T) {
	r, _ := initTestRepo(t)
	if err := r.CheckoutBranch("nope"); !errors.Is(err, ErrNoSuchBranch) {
		t.Errorf("CheckoutBranch(nope) err = %v, want ErrNoSuchBranch", err)
	}
	if err := r.CheckoutBranch("master"); !errors.Is(err, ErrCheckoutCurrentBranch) {
		t.Errorf("CheckoutBranch(master) err = %v, want ErrCheckoutCurrentBranch", err)
	}
}

func TestCheckoutBranch_UntrackedInTheWay(t *testing.T) {
	r, dir := initTestRepo(t)
	if err := r.Branch("other"); err != nil {
		t.Fatalf("Branch: %v", err)
	}
	mustCheckoutBranch(t, r, "other")
	commitFiles(t, r, dir, "other work", map[string]string{"clash.txt": "theirs", "extra.txt": "e"})
	mustCheckoutBranch(t, r, "master")

	writeWork(t, dir, "clash.txt", "mine")
	writeWork(t, dir, "keep.txt", "k")
	err := r.CheckoutBranch("other")
	if !errors.Is(err, ErrUntrackedFileInTheWay) {
		t.Fatalf("err = %v, want ErrUntrackedFileInTheWay", err)
	}

	// Nothing was touched.
	assertWork(t, dir, "clash.txt", "mine")
	assertNoWork(t, dir, "extra.txt")
	if cur, _ := r.CurrentBranch(); cur != "master" {
		t.Errorf("CurrentBranch = %q after refused checkout", cur)
	}

	// An untracked file identical to the incoming version is not in the way.
	writeWork(t, dir, "clash.txt", "theirs")
	mustCheckoutBranch(t, r, "other")
	assertWork(t, dir, "extra.txt", "e")
}

// dirFileFixture leaves master tracking a.txt and keep.txt and a branch dev
// where a.txt is gone and a plain file d plus b.txt exist.
func dirFileFixture(t *testing.T) (*Repo, string) {
	t.Helper()
	r, dir := initTestRepo(t)
	commitFiles(t, r, dir, "base", map[string]string{"a.txt": "a", "keep.txt": "k"})
	if err := r.Branch("dev"); err != nil {
		t.Fatalf("Branch: %v", err)
	}
	mustCheckoutBranch(t, r, "dev")
	if err := r.Remove("a.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	commitFiles(t, r, dir, "dev work", map[string]string{"d": "file d", "b.txt": "b"})
	mustCheckoutBranch(t, r, "master")
	return r, dir
}

func TestCheckoutBranch_UntrackedDirectoryInTheWay(t *testing.T) {
	r, dir := dirFileFixture(t)
	writeWork(t, dir, "d/untracked.txt", "u")

	if err := r.CheckoutBranch("dev"); !errors.Is(err, ErrUntrackedFileInTheWay) {
		t.Fatalf("err = %v, want ErrUntrackedFileInTheWay", err)
	}
	assertWork(t, dir, "a.txt", "a")
	assertWork(t, dir, "d/untracked.txt", "u")
	assertNoWork(t, dir, "b.txt")
	if cur, _ := r.CurrentBranch(); cur != "master" {
		t.Errorf("CurrentBranch = %q after refused checkout", cur)
	}
}

func TestCheckoutBranch_EmptyDirectoryReplaced(t *testing.T) {
	r, dir := dirFileFixture(t)
	if err := os.MkdirAll(filepath.Join(dir, "d", "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	mustCheckoutBranch(t, r, "dev")
	assertWork(t, dir, "d", "file d")
	assertWork(t, dir, "b.txt", "b")
	assertNoWork(t, dir, "a.txt")
}

func TestCheckoutBranch_TrackedDirectoryBecomesFile(t *testing.T) {
	r, dir := initTestRepo(t)
	commitFiles(t, r, dir, "base", map[string]string{"d/x.txt": "x"})
	if err := r.Branch("dev"); err != nil {
		t.Fatalf("Branch: %v", err)
	}
	mustCheckoutBranch(t, r, "dev")
	if err := r.Remove("d/x.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	commitFiles(t, r, dir, "flatten", map[string]string{"d": "flat"})

	mustCheckoutBranch(t, r, "master")
	assertWork(t, dir, "d/x.txt", "x")
	mustCheckoutBranch(t, r, "dev")
	assertWork(t, dir, "d", "flat")
}

func TestCheckoutBranch_UntrackedFileBlocksParentDirectory(t *testing.T) {
	r, dir := initTestRepo(t)
	if err := r.Branch("dev"); err != nil {
		t.Fatalf("Branch: %v", err)
	}
	mustCheckoutBranch(t, r, "dev")
	commitFiles(t, r, dir, "nested", map[string]string{"a/b": "nested", "c.txt": "c"})
	mustCheckoutBranch(t, r, "master")
	writeWork(t, dir, "a", "plain file")

	if err := r.CheckoutBranch("dev"); !errors.Is(err, ErrUntrackedFileInTheWay) {
		t.Fatalf("err = %v, want ErrUntrackedFileInTheWay", err)
	}
	assertWork(t, dir, "a", "plain file")
	assertNoWork(t, dir, "c.txt")
}
