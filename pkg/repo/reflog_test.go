package repo

import (
	"os"
	"strings"
	"testing"
)

func reflogReasons(t *testing.T, r *Repo, branch string) []string {
	t.Helper()
	entries, err := r.ReadReflog(branch, 0)
	if err != nil {
		t.Fatalf("ReadReflog(%q): %v", branch, err)
	}
	reasons := make([]string, len(entries))
	for i, e := range entries {
		reasons[i] = e.Reason
	}
	return reasons
}

func TestReflog_RecordsEveryBranchMove(t *testing.T) {
	r, dir := initTestRepo(t)
	root, _ := mustHead(t, r)
	commitFiles(t, r, dir, "one", map[string]string{"f": "1"})
	if err := r.Reset(string(root)); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	got := strings.Join(reflogReasons(t, r, "master"), "|")
	want := "reset: moving to " + root.Short() + "|commit: one|init"
	if got != want {
		t.Errorf("reasons = %q, want %q", got, want)
	}
}

func TestReflog_BranchCreation(t *testing.T) {
	r, _ := initTestRepo(t)
	root, _ := mustHead(t, r)
	if err := r.Branch("dev"); err != nil {
		t.Fatalf("Branch: %v", err)
	}
	entries, err := r.ReadReflog("dev", 0)
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.OldHash != zeroHash || e.NewHash != root || e.Ref != "refs/heads/dev" {
		t.Errorf("entry = %+v", e)
	}
	if e.Reason != "branch: created from "+root.Short() {
		t.Errorf("Reason = %q", e.Reason)
	}
}

func TestReflog_RemovedWithBranch(t *testing.T) {
	r, dir := initTestRepo(t)
	if err := r.Branch("dev"); err != nil {
		t.Fatalf("Branch: %v", err)
	}
	mustCheckoutBranch(t, r, "dev")
	commitFiles(t, r, dir, "dev work", map[string]string{"d": "d"})
	mustCheckoutBranch(t, r, "master")

	if err := r.RemoveBranch("dev"); err != nil {
		t.Fatalf("RemoveBranch: %v", err)
	}
	if _, err := os.Stat(r.reflogPath(branchRef("dev"))); !os.IsNotExist(err) {
		t.Errorf("reflog of removed branch still present (stat err = %v)", err)
	}

	// A branch re-created under the same name starts a fresh log.
	if err := r.Branch("dev"); err != nil {
		t.Fatalf("Branch: %v", err)
	}
	if n := len(reflogReasons(t, r, "dev")); n != 1 {
		t.Errorf("re-created branch has %d reflog entries, want 1", n)
	}
}

func TestReflog_SkipsMalformedLinesAndCollapsesReasons(t *testing.T) {
	r, _ := initTestRepo(t)
	head, _ := mustHead(t, r)
	if err := r.appendReflog(branchRef("master"), head, head, "  spaced \n  out\treason "); err != nil {
		t.Fatalf("appendReflog: %v", err)
	}
	f, err := os.OpenFile(r.reflogPath(branchRef("master")), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("garbage line\n\nabc def notanumber reason\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got := reflogReasons(t, r, "")
	if len(got) != 2 || got[0] != "spaced out reason" || got[1] != "init" {
		t.Errorf("reasons = %q", got)
	}
}

func TestParseReflogLine(t *testing.T) {
	tests := []struct {
		line   string
		ok     bool
		reason string
	}{
		{line: "aaa bbb 12 commit: two words", ok: true, reason: "commit: two words"},
		{line: "  aaa bbb 12 init  ", ok: true, reason: "init"},
		{line: "aaa bbb 12", ok: false},
		{line: "aaa bbb twelve init", ok: false},
		{line: "aaa", ok: false},
		{line: "", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			e, ok := parseReflogLine("refs/heads/master", tc.line)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && (e.Reason != tc.reason || e.OldHash != "aaa" || e.NewHash != "bbb" || e.Timestamp != 12) {
				t.Errorf("entry = %+v", e)
			}
		})
	}
}
