package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

// globalCache stores parse results keyed by the xxh3 hash of the source.
var globalCache sync.Map

// cacheLimit bounds the number of entries in globalCache. Once it is
// reached, sources not already cached are parsed without being stored.
// Concurrent misses may overshoot it by the number of racing callers.
var cacheLimit int64 = 4096

var cacheSize atomic.Int64

// state holds the outcome of parsing one source line.
type state struct {
	once   sync.Once
	source string
	expr   Expr
	err    error
}

// ParseCached is like [ParseString] but memoizes the result per distinct
// source text. Expression trees are immutable, so callers share them.
//
// Errors are cached as well: a line that failed to parse fails again without
// being re-lexed. The cache holds a bounded number of distinct sources; when
// it is full, new sources are parsed on every call.
func ParseCached(ctx context.Context, text string, opts ...Option) (Expr, error) {
	o := makeOptions(opts...)

	hash := xxh3.HashString(text)

	value, hit := globalCache.Load(hash)
	if !hit {
		if cacheSize.Load() >= cacheLimit {
			o.logger.TraceContext(ctx, "cache full",
				slog.String("source_hash", strconv.FormatUint(hash, 16)),
				slog.Int64("limit", cacheLimit),
			)

			return ParseString(ctx, text, opts...)
		}

		value, hit = globalCache.LoadOrStore(hash, &state{source: text})
		if !hit {
			cacheSize.Add(1)
		}
	}

	cached, ok := value.(*state)
	if !ok || cached.source != text {
		// Hash collision with a different line.
		o.logger.TraceContext(ctx, "cache bypass",
			slog.String("source_hash", strconv.FormatUint(hash, 16)),
		)

		return ParseString(ctx, text, opts...)
	}

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	cached.once.Do(func() {
		cached.expr, cached.err = ParseString(ctx, text, opts...)
	})

	return cached.expr, cached.err
}

// ClearCache removes all memoized parse results.
func ClearCache() {
	globalCache.Clear()
	cacheSize.Store(0)
}
