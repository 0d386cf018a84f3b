package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/gitlet/pkg/object"
)

const gitletDirName = ".gitlet"

// InitialCommitMessage is the message of the root commit every repository
// starts from.
const InitialCommitMessage = "initial commit"

// Init creates a new repository at path. It creates the .gitlet/ directory
// structure, writes the config, stores the root commit (epoch timestamp, no
// files), points the default branch at it and makes that branch current.
// Returns ErrRepoExists if a .gitlet/ directory already exists.
func Init(path string, opts ...Option) (*Repo, error) {
	o := collectOptions(opts)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	gitletDir := filepath.Join(abs, gitletDirName)

	if _, err := os.Stat(gitletDir); err == nil {
		return nil, ErrRepoExists
	}

	cfg := DefaultConfig()
	if o.defaultBranch != "" {
		cfg.Core.DefaultBranch = o.defaultBranch
	}
	if o.objectFormat != "" {
		cfg.Core.ObjectFormat = o.objectFormat
	}
	if o.compression != nil {
		cfg.Core.Compression = *o.compression
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	dirs := []string{
		filepath.Join(gitletDir, "objects"),
		filepath.Join(gitletDir, "refs", "heads"),
		filepath.Join(gitletDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}
	if err := writeConfig(gitletDir, cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	r := newRepo(abs, gitletDir, cfg, o)

	rootHash, err := r.Store.WriteCommit(&object.CommitObj{
		Timestamp: 0,
		Message:   InitialCommitMessage,
		Files:     map[string]object.Hash{},
	})
	if err != nil {
		return nil, fmt.Errorf("init: write initial commit: %w", err)
	}
	if err := r.updateRef(branchRef(cfg.Core.DefaultBranch), rootHash, "init", nil); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := r.SetCurrentBranch(cfg.Core.DefaultBranch); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	r.log.WithField("commit", rootHash).Debug("initialized repository")
	return r, nil
}

// Open searches upward from path for a .gitlet/ directory and opens the
// repository. Returns ErrNotARepo if no .gitlet/ directory is found.
func Open(path string, opts ...Option) (*Repo, error) {
	o := collectOptions(opts)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitletDir := filepath.Join(cur, gitletDirName)
		info, err := os.Stat(gitletDir)
		if err == nil && info.IsDir() {
			cfg, err := readConfig(gitletDir)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			return newRepo(cur, gitletDir, cfg, o), nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, ErrNotARepo
		}
		cur = parent
	}
}
