package computed

import "log"

// Option configures an Object.
type Option func(*options)

type options struct {
	purityCheck bool
	logger      *log.Logger
}

// WithPurityCheck makes every recomputation run the getter twice on the same
// snapshot, and fail with an *ImpureGetterError if the two results are not
// vals.Equal. It doubles the cost of recomputation and is meant for tests and
// debugging.
func WithPurityCheck() Option {
	return func(o *options) { o.purityCheck = true }
}

// WithLogger sets the logger that recomputations are traced
// to. The default logger is obtained from logutil and discards its output
// unless logutil is configured otherwise. A nil logger keeps the default.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
