package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/bladeguard/internal/config"
	"github.com/zeusync/bladeguard/internal/core/events/bus"
	"github.com/zeusync/bladeguard/internal/core/observability/log"
	"github.com/zeusync/bladeguard/internal/tracker"
)

// Runner replays scenarios. Every run gets its own tracker, so runs may
// proceed in parallel.
type Runner struct {
	cfg      config.Config
	base     log.Log
	log      log.Log
	events   bus.EventBus
	clock    clock.Clock
	realtime bool
}

// NewRunner builds a runner. Events from every run are forwarded to events
// when it is not nil.
func NewRunner(cfg config.Config, logger log.Log, events bus.EventBus) *Runner {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		base:   logger,
		log:    logger.With(log.String("system", "replay")),
		events: events,
		clock:  clock.New(),
	}
}

// Realtime paces ticks at the scenario's tick rate using c.
func (r *Runner) Realtime(c clock.Clock) *Runner {
	r.clock = c
	r.realtime = true
	return r
}

// Run replays one scenario to completion.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	rec := &recorder{}
	rep := &Report{Scenario: sc.Name, Ticks: sc.Ticks, Events: make(map[string]int)}

	local := bus.New()
	_, err := local.Subscribe(bus.AnyEvent, func(e bus.Event) error {
		rep.Events[e.Type()]++
		if r.events != nil {
			return r.events.Publish(e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	tr := tracker.New(r.cfg, rec, rec, local, r.base)
	frames := sc.Frames()
	distances := make([]float64, 0, len(frames))

	var tick <-chan time.Time
	if r.realtime {
		ticker := r.clock.Ticker(time.Duration(sc.DeltaTime() * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}

	for i, f := range frames {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec.tick = i
		res, ok := tr.Update(f)
		if ok {
			rep.Classified++
			distances = append(distances, res.ClosestDistance)
		}
	}

	rep.Calls = rec.calls
	rep.Metrics = tr.GetMetrics()
	if rep.Distance, err = summarize(distances); err != nil {
		return nil, fmt.Errorf("summarize %s: %w", sc.Name, err)
	}
	rep.check(sc.Expect)

	r.log.Info("scenario replayed",
		log.String("scenario", sc.Name),
		log.Int("ticks", sc.Ticks),
		log.Int("calls", len(rep.Calls)),
		log.Bool("passed", rep.Passed()),
	)
	return rep, nil
}

// RunAll replays scenarios concurrently, at most parallel at a time. Reports
// are returned in input order.
func (r *Runner) RunAll(ctx context.Context, scenarios []*Scenario, parallel int) ([]*Report, error) {
	reports := make([]*Report, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			rep, err := r.Run(ctx, sc)
			if err != nil {
				return fmt.Errorf("replay %s: %w", sc.Name, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
