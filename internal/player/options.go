package player

import (
	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/vbplayer/internal/config"
	"github.com/llehouerou/vbplayer/internal/dispatch"
	"github.com/llehouerou/vbplayer/internal/source"
)

type options struct {
	queue    *dispatch.Queue
	logger   hclog.Logger
	engine   config.EngineConfig
	resolver *source.Resolver
	delegate Delegate
}

// Option configures a player at construction.
type Option func(*options)

// WithQueue sets the callback queue for status changes, stalls, finish,
// seek completions and time observers without their own queue. The
// default is dispatch.Main().
func WithQueue(q *dispatch.Queue) Option {
	return func(o *options) { o.queue = q }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l hclog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithConfig sets engine timing.
func WithConfig(c config.EngineConfig) Option {
	return func(o *options) { o.engine = c }
}

// WithResolver sets the source resolver used by network players.
func WithResolver(r *source.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithDelegate sets the initial delegate.
func WithDelegate(d Delegate) Option {
	return func(o *options) { o.delegate = d }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.queue == nil {
		o.queue = dispatch.Main()
	}
	if o.logger == nil {
		o.logger = hclog.NewNullLogger()
	}
	if o.engine.TickInterval <= 0 {
		o.engine.TickInterval = config.DefaultTickInterval
	}
	if o.engine.ResumeThreshold <= 0 {
		o.engine.ResumeThreshold = config.DefaultResumeThreshold
	}
	if o.engine.ContinuityTolerance <= 0 {
		o.engine.ContinuityTolerance = config.DefaultContinuityTolerance
	}
	return o
}
