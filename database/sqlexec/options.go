package sqlexec

import (
	"context"
	"log/slog"
	"time"

	"github.com/dropbox/sqlbricks/stats"
	"github.com/dropbox/sqlbricks/time2"
)

const DefaultSlowThreshold = 200 * time.Millisecond

type options struct {
	logger        *slog.Logger
	statsFactory  stats.StatsFactory
	clock         time2.Clock
	slowThreshold time.Duration
}

type Option func(*options)

// WithLogger sets the logger.  Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStats sets the metrics factory.  Defaults to stats.NoOpStatsFactory.
func WithStats(factory stats.StatsFactory) Option {
	return func(o *options) {
		o.statsFactory = factory
	}
}

// WithClock sets the clock statements are timed with.
func WithClock(clock time2.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithSlowThreshold sets the duration from which a statement is logged as
// slow.  Zero disables slow statement logging.
func WithSlowThreshold(d time.Duration) Option {
	return func(o *options) {
		o.slowThreshold = d
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:        slog.Default(),
		statsFactory:  stats.NoOpStatsFactory,
		clock:         time2.DefaultClock,
		slowThreshold: DefaultSlowThreshold,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// instrument times statements, reports metrics and logs.
type instrument struct {
	options

	statements stats.CounterStat
	errors     stats.CounterStat
	latency    stats.SummaryStat
	inflight   stats.GaugeStat
}

func newInstrument(driver string, opts []Option) instrument {
	o := newOptions(opts)
	tags := map[string]string{"driver": driver}
	return instrument{
		options:    o,
		statements: o.statsFactory.NewCounter("sqlexec.statements", tags),
		errors:     o.statsFactory.NewCounter("sqlexec.errors", tags),
		latency:    o.statsFactory.NewSummary("sqlexec.latency_ms", tags),
		inflight:   o.statsFactory.NewGauge("sqlexec.inflight", tags),
	}
}

func (i *instrument) begin() time.Time {
	i.inflight.Inc()
	return i.clock.Now()
}

func (i *instrument) end(
	ctx context.Context,
	op string,
	sql string,
	numArgs int,
	start time.Time,
	err error) {

	elapsed := i.clock.Since(start)
	i.inflight.Dec()
	i.statements.Inc()
	i.latency.Observe(time2.Milliseconds(elapsed))

	attrs := []slog.Attr{
		slog.String("op", op),
		slog.String("sql", sql),
		slog.Int("args", numArgs),
		slog.Duration("duration", elapsed),
	}

	if err != nil {
		i.errors.Inc()
		i.logger.LogAttrs(
			ctx,
			slog.LevelError,
			"sqlexec: statement failed",
			append(attrs, slog.String("error", err.Error()))...)
		return
	}

	if i.slowThreshold > 0 && elapsed >= i.slowThreshold {
		i.logger.LogAttrs(ctx, slog.LevelWarn, "sqlexec: slow statement", attrs...)
		return
	}
	i.logger.LogAttrs(ctx, slog.LevelDebug, "sqlexec: statement", attrs...)
}
