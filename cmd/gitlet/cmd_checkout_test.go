package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/odvcencio/gitlet/pkg/repo"
)

func TestParseCheckoutArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		dash    int
		want    checkoutRequest
		wantErr bool
	}{
		{
			name: "file from head",
			args: []string{"a.txt"},
			dash: 0,
			want: checkoutRequest{kind: checkoutHeadFile, path: "a.txt"},
		},
		{
			name: "file from commit",
			args: []string{"abc123", "a.txt"},
			dash: 1,
			want: checkoutRequest{kind: checkoutCommitFile, commit: "abc123", path: "a.txt"},
		},
		{
			name: "branch",
			args: []string{"dev"},
			dash: -1,
			want: checkoutRequest{kind: checkoutBranch, branch: "dev"},
		},
		{name: "nothing", args: nil, dash: -1, wantErr: true},
		{name: "separator in wrong place", args: []string{"abc123", "a.txt"}, dash: 0, wantErr: true},
		{name: "two args without separator", args: []string{"abc123", "a.txt"}, dash: -1, wantErr: true},
		{name: "empty after separator", args: []string{"abc123"}, dash: 1, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseCheckoutArgs(tc.args, tc.dash)
			if tc.wantErr {
				if !errors.Is(err, errIncorrectOperands) {
					t.Fatalf("err = %v, want errIncorrectOperands", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCheckoutArgs: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestCheckoutCmd_AllForms(t *testing.T) {
	dir := newCLIRepo(t)
	writeCLIFile(t, dir, "a.txt", "hello")
	mustRun(t, "add", "a.txt")
	mustRun(t, "commit", "-q", "first")
	ids := strings.Fields(mustRun(t, "find", "first"))
	if len(ids) != 1 {
		t.Fatalf("find first = %v", ids)
	}

	writeCLIFile(t, dir, "a.txt", "world")
	mustRun(t, "add", "a.txt")
	mustRun(t, "commit", "-q", "second")

	writeCLIFile(t, dir, "a.txt", "scratch")
	mustRun(t, "checkout", "--", "a.txt")
	if got := readCLIFile(t, dir, "a.txt"); got != "world" {
		t.Errorf("after checkout -- a.txt: %q, want world", got)
	}

	mustRun(t, "checkout", ids[0][:8], "--", "a.txt")
	if got := readCLIFile(t, dir, "a.txt"); got != "hello" {
		t.Errorf("after checkout <id> -- a.txt: %q, want hello", got)
	}

	mustRun(t, "branch", "dev")
	out := mustRun(t, "checkout", "dev")
	if !strings.Contains(out, "switched to branch 'dev'") {
		t.Errorf("checkout dev output = %q", out)
	}

	if _, err := runGitlet("checkout", "dev"); !errors.Is(err, repo.ErrCheckoutCurrentBranch) {
		t.Errorf("checkout current branch err = %v", err)
	}
	if _, err := runGitlet("checkout", "a", "b"); !errors.Is(err, errIncorrectOperands) {
		t.Errorf("checkout a b err = %v, want errIncorrectOperands", err)
	}
}
