package gip

import (
	"log/slog"
	"runtime"

	"github.com/hqsearch/gip/resource"
)

type options struct {
	workers    int
	rerankFrom int
	ctrl       *resource.Controller
	logger     *Logger
}

// Option configures Engine behavior at construction time. The pipeline
// shape (selector strategy, rerank on/off, worker count) is fixed once
// the engine exists; there are no per-call toggles.
type Option func(*options)

// WithWorkers sets the number of queries processed concurrently.
// Values <= 0 fall back to runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithRerank enables the exact rerank stage. The selector is asked for a
// shortlist of shortlistK candidates per query, which are rescored with
// the exact generalized inner product before the final top K is taken.
//
// shortlistK below the engine's K silently yields fewer than K results
// per query; callers who want a full K must size the shortlist
// accordingly.
func WithRerank(shortlistK int) Option {
	return func(o *options) {
		o.rerankFrom = shortlistK
	}
}

// WithResourceController attaches a resource controller. Selectors that
// account per-query scratch memory (those implementing
// selector.ResourceAware) receive it at engine construction, replacing
// any controller they were built with. Output pacing is separate: the
// TREC writer takes its controller directly. Pass nil to disable
// accounting.
func WithResourceController(ctrl *resource.Controller) Option {
	return func(o *options) {
		o.ctrl = ctrl
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := gip.NewJSONLogger(slog.LevelInfo)
//	eng, _ := gip.New(store, sel, 10, gip.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		workers: runtime.GOMAXPROCS(0),
		logger:  NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
