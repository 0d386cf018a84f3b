package repo

import (
	"os"
	"time"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/sirupsen/logrus"
)

// Repo represents an opened gitlet repository.
type Repo struct {
	RootDir   string        // working directory root
	GitletDir string        // .gitlet/ directory
	Store     *object.Store // content-addressed object store
	Config    *Config

	log *logrus.Entry
	now func() time.Time
}

// Option customises Init and Open.
type Option func(*options)

type options struct {
	logger        *logrus.Logger
	defaultBranch string
	objectFormat  object.Format
	compression   *bool
	now           func() time.Time
}

// WithLogger routes engine debug events to l.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDefaultBranch names the branch Init creates. Ignored by Open.
func WithDefaultBranch(name string) Option {
	return func(o *options) { o.defaultBranch = name }
}

// WithObjectFormat selects the object id hash for a new repository.
// Ignored by Open, which uses the format recorded in config.
func WithObjectFormat(f object.Format) Option {
	return func(o *options) { o.objectFormat = f }
}

// WithCompression toggles zstd compression of loose objects for a new
// repository. Ignored by Open.
func WithCompression(on bool) Option {
	return func(o *options) { o.compression = &on }
}

// WithClock overrides the commit timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func collectOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = defaultLogger()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

func defaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

func newRepo(root, gitletDir string, cfg *Config, o *options) *Repo {
	return &Repo{
		RootDir:   root,
		GitletDir: gitletDir,
		Store: object.NewStore(gitletDir,
			object.WithFormat(cfg.Core.ObjectFormat),
			object.WithCompression(cfg.Core.Compression),
		),
		Config: cfg,
		log: o.logger.WithFields(logrus.Fields{
			"component": "repo",
			"root":      root,
		}),
		now: o.now,
	}
}
