package reader

import (
	"io"
	"log/slog"

	"github.com/yob/pdf-reader-sub001/cache"
	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/text"
)

// DefaultCacheSize is the number of objects kept by the default cache
const DefaultCacheSize = 4096

// Limits bounds the work done on untrusted input. Zero values keep the
// defaults.
type Limits struct {
	// MaxDecodedSize caps the output of a single stream filter
	MaxDecodedSize int64
	// MaxDerefDepth caps the references followed along one path by Deref
	MaxDerefDepth int
}

type config struct {
	password  string
	cache     cache.Cache[core.Reference, core.Object]
	cacheSize int
	logger    *slog.Logger
	limits    Limits
	layout    text.Layout
}

func newConfig(opts []Option) *config {
	cfg := &config{
		cacheSize: DefaultCacheSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		layout:    text.DefaultLayout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.cache == nil {
		cfg.cache = cache.NewLRU[core.Reference, core.Object](cfg.cacheSize)
	}
	return cfg
}

// Option configures an ObjectHash or Reader
type Option func(*config)

// WithPassword sets the user or owner password for encrypted documents
func WithPassword(password string) Option {
	return func(c *config) {
		c.password = password
	}
}

// WithCache replaces the object cache. Pass a cache.SynchronizedCache
// when the document is shared between goroutines.
func WithCache(objects cache.Cache[core.Reference, core.Object]) Option {
	return func(c *config) {
		c.cache = objects
	}
}

// WithCacheSize sets the capacity of the default LRU object cache
func WithCacheSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.cacheSize = n
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLimits sets resource limits
func WithLimits(limits Limits) Option {
	return func(c *config) {
		c.limits = limits
	}
}

// WithLayout sets the layout used by Page.Text
func WithLayout(layout text.Layout) Option {
	return func(c *config) {
		if layout != nil {
			c.layout = layout
		}
	}
}
