package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/odvcencio/gitlet/pkg/object"
)

const configFileName = "config.toml"

// Config stores repository-local settings.
type Config struct {
	Core    CoreConfig        `toml:"core"`
	Remotes map[string]string `toml:"remotes,omitempty"`
}

// CoreConfig holds settings fixed at Init time.
type CoreConfig struct {
	DefaultBranch string        `toml:"default_branch"`
	ObjectFormat  object.Format `toml:"object_format"`
	Compression   bool          `toml:"compression"`
}

// DefaultConfig returns the settings a fresh repository starts with.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			DefaultBranch: "master",
			ObjectFormat:  object.FormatSHA256,
			Compression:   true,
		},
		Remotes: make(map[string]string),
	}
}

func (c *Config) validate() error {
	if err := checkBranchName(c.Core.DefaultBranch); err != nil {
		return fmt.Errorf("config: default_branch %q: %w", c.Core.DefaultBranch, err)
	}
	if !c.Core.ObjectFormat.Valid() {
		return fmt.Errorf("config: unsupported object_format %q", c.Core.ObjectFormat)
	}
	return nil
}

// readConfig reads .gitlet/config.toml. Missing keys keep their defaults and
// a missing file yields the default config.
func readConfig(gitletDir string) (*Config, error) {
	cfg := DefaultConfig()
	_, err := toml.DecodeFile(filepath.Join(gitletDir, configFileName), cfg)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]string)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// writeConfig atomically writes .gitlet/config.toml.
func writeConfig(gitletDir string, cfg *Config) error {
	tmp, err := os.CreateTemp(gitletDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(gitletDir, configFileName)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// AddRemote records a named remote repository path. Only the mapping is
// stored; nothing is transferred.
func (r *Repo) AddRemote(name, path string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("add remote: remote name is required")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("add remote: remote path is required")
	}
	if _, ok := r.Config.Remotes[name]; ok {
		return ErrRemoteExists
	}

	next := *r.Config
	next.Remotes = copyRemotes(r.Config.Remotes)
	next.Remotes[name] = filepath.FromSlash(path)
	if err := writeConfig(r.GitletDir, &next); err != nil {
		return fmt.Errorf("add remote: %w", err)
	}
	r.Config = &next
	return nil
}

// RemoveRemote deletes a named remote.
func (r *Repo) RemoveRemote(name string) error {
	name = strings.TrimSpace(name)
	if _, ok := r.Config.Remotes[name]; !ok {
		return ErrRemoteNotFound
	}

	next := *r.Config
	next.Remotes = copyRemotes(r.Config.Remotes)
	delete(next.Remotes, name)
	if err := writeConfig(r.GitletDir, &next); err != nil {
		return fmt.Errorf("remove remote: %w", err)
	}
	r.Config = &next
	return nil
}

// Remote is a named remote entry.
type Remote struct {
	Name string
	Path string
}

// Remotes lists configured remotes sorted by name.
func (r *Repo) Remotes() []Remote {
	out := make([]Remote, 0, len(r.Config.Remotes))
	for name, path := range r.Config.Remotes {
		out = append(out, Remote{Name: name, Path: path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func copyRemotes(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
