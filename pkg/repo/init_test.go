package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/gitlet/pkg/object"
)

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init(%q): %v", dir, err)
	}
	if r.RootDir != dir {
		t.Errorf("RootDir = %q, want %q", r.RootDir, dir)
	}
	gitletDir := filepath.Join(dir, ".gitlet")
	if r.GitletDir != gitletDir {
		t.Errorf("GitletDir = %q, want %q", r.GitletDir, gitletDir)
	}

	for _, d := range []string{"objects", "refs/heads", "logs/refs/heads"} {
		info, err := os.Stat(filepath.Join(gitletDir, filepath.FromSlash(d)))
		if err != nil || !info.IsDir() {
			t.Errorf("%s is not a directory (err = %v)", d, err)
		}
	}
	for _, f := range []string{"HEAD", "config.toml", "refs/heads/master"} {
		if _, err := os.Stat(filepath.Join(gitletDir, filepath.FromSlash(f))); err != nil {
			t.Errorf("%s missing: %v", f, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(gitletDir, "HEAD"))
	if err != nil {
		t.Fatalf("read HEAD: %v", err)
	}
	if got := string(data); got != "ref: refs/heads/master\n" {
		t.Errorf("HEAD = %q, want %q", got, "ref: refs/heads/master\n")
	}
}

func TestInit_InitialCommit(t *testing.T) {
	r, _ := initTestRepo(t)

	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "master" {
		t.Errorf("CurrentBranch = %q, want master", branch)
	}

	h, c := mustHead(t, r)
	if c.Timestamp != 0 {
		t.Errorf("initial Timestamp = %d, want 0", c.Timestamp)
	}
	if c.Message != InitialCommitMessage {
		t.Errorf("initial Message = %q, want %q", c.Message, InitialCommitMessage)
	}
	if c.Parent != "" || c.SecondParent != "" || len(c.Files) != 0 {
		t.Errorf("initial commit should have no parents or files: %+v", c)
	}

	// Two repositories share the same root commit id.
	other, _ := initTestRepo(t)
	otherHead, _ := mustHead(t, other)
	if otherHead != h {
		t.Errorf("root commit ids differ: %s vs %s", h, otherHead)
	}
}

func TestInit_ExistingRepo(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	_, err := Init(dir)
	if !errors.Is(err, ErrRepoExists) {
		t.Fatalf("second Init err = %v, want ErrRepoExists", err)
	}
	if err.Error() != "A Gitlet version-control system already exists in the current directory." {
		t.Errorf("message = %q", err.Error())
	}
}

func TestInit_Options(t *testing.T) {
	r, dir := initTestRepo(t,
		WithDefaultBranch("main"),
		WithObjectFormat(object.FormatBLAKE2b),
		WithCompression(false),
	)

	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "main" {
		t.Errorf("CurrentBranch = %q, want main", branch)
	}
	if got := r.Store.Format(); got != object.FormatBLAKE2b {
		t.Errorf("Store.Format() = %q, want blake2b", got)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened.Config.Core.DefaultBranch != "main" {
		t.Errorf("DefaultBranch = %q, want main", reopened.Config.Core.DefaultBranch)
	}
	if reopened.Config.Core.ObjectFormat != object.FormatBLAKE2b {
		t.Errorf("ObjectFormat = %q, want blake2b", reopened.Config.Core.ObjectFormat)
	}
	if reopened.Config.Core.Compression {
		t.Error("Compression = true, want false")
	}

	head, _ := mustHead(t, reopened)
	if head != object.HashObject(object.FormatBLAKE2b, object.TypeCommit,
		object.MarshalCommit(&object.CommitObj{Message: InitialCommitMessage, Files: map[string]object.Hash{}})) {
		t.Errorf("root commit id %s is not a blake2b id", head)
	}
}

func TestInit_InvalidDefaultBranch(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir, WithDefaultBranch("bad/name"))
	if !errors.Is(err, ErrInvalidBranchName) {
		t.Fatalf("Init err = %v, want ErrInvalidBranchName", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, ".gitlet")); !os.IsNotExist(statErr) {
		t.Errorf(".gitlet created despite invalid config (stat err = %v)", statErr)
	}
}

func TestOpen_FromSubdirectory(t *testing.T) {
	_, dir := initTestRepo(t)
	sub := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	r, err := Open(sub)
	if err != nil {
		t.Fatalf("Open(%q): %v", sub, err)
	}
	if r.RootDir != dir {
		t.Errorf("RootDir = %q, want %q", r.RootDir, dir)
	}
}

func TestOpen_NotARepo(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrNotARepo) {
		t.Fatalf("Open err = %v, want ErrNotARepo", err)
	}
}

func TestOpen_BadConfig(t *testing.T) {
	r, dir := initTestRepo(t)
	cfg := filepath.Join(r.GitletDir, "config.toml")
	if err := os.WriteFile(cfg, []byte("[core]\nobject_format = \"md5\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Open(dir)
	if err == nil || !strings.Contains(err.Error(), "unsupported object_format") {
		t.Fatalf("Open err = %v, want unsupported object_format", err)
	}
}
