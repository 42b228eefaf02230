package idmap

import (
	"log/slog"

	"github.com/arloliu/idgraph/encode"
	"github.com/arloliu/idgraph/internal/array"
	"github.com/arloliu/idgraph/internal/options"
)

// Config carries every tunable named by the mapper's design: chunk size,
// the encoder, worker count, logging, and whether collision resolution may
// run at all.
type Config struct {
	ChunkSize           int
	Encoder             encode.Encoder
	Logger              *slog.Logger
	WorkerCount         int
	CollisionResolution bool
}

// Option configures a Config via the generic functional option type
// (internal/options.Option[T]) instead of a bespoke option type per
// package.
type Option = options.Option[*Config]

func defaultConfig() Config {
	return Config{
		ChunkSize:           array.DefaultChunkSize,
		Encoder:             encode.NewStringASCIIEncoder(),
		Logger:              slog.Default(),
		WorkerCount:         0,
		CollisionResolution: true,
	}
}

// WithChunkSize overrides the chunk size used by every packed array the
// mapper allocates (data cache, group cache, tracker).
func WithChunkSize(n int) Option {
	return options.NoError[*Config](func(c *Config) { c.ChunkSize = n })
}

// WithEncoder selects the Encoder used to turn input identifiers into eIds.
func WithEncoder(e encode.Encoder) Option {
	return options.NoError[*Config](func(c *Config) { c.Encoder = e })
}

// WithLogger sets the structured logger used for Logging progress/collector
// defaults constructed internally; has no effect if the caller supplies its
// own Progress/Collector to Prepare.
func WithLogger(l *slog.Logger) Option {
	return options.NoError[*Config](func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	})
}

// WithWorkerCount overrides the sorter's worker pool size; n <= 0 restores
// the default N = max(1, cores-1) sizing.
func WithWorkerCount(n int) Option {
	return options.NoError[*Config](func(c *Config) { c.WorkerCount = n })
}

// WithCollisionResolution controls whether Prepare may run phase C at all.
// Disabling it turns any detected collision into a fatal error instead of
// attempting to resolve it via the side-store; useful for callers who know
// their encoder/group combination should never collide and want that
// enforced.
func WithCollisionResolution(enabled bool) Option {
	return options.NoError[*Config](func(c *Config) { c.CollisionResolution = enabled })
}
