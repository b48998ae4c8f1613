// Package refresh keeps the home cache warm on a schedule.
package refresh

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"drama-gateway-go/pkg/logging"
	"drama-gateway-go/pkg/scraper"
)

// Prewarmer periodically re-scrapes the home page so the most-hit cache
// entry never expires cold.
type Prewarmer struct {
	cron    *cron.Cron
	scraper *scraper.Scraper
	log     *logging.Logger
	timeout time.Duration
}

// New creates a Prewarmer. The schedule is a standard cron expression;
// an empty schedule produces a Prewarmer that never runs.
func New(s *scraper.Scraper, schedule string, timeout time.Duration, log *logging.Logger) (*Prewarmer, error) {
	p := &Prewarmer{
		cron:    cron.New(),
		scraper: s,
		log:     log.WithComponent("prewarm"),
		timeout: timeout,
	}

	if schedule == "" {
		return p, nil
	}

	if _, err := p.cron.AddFunc(schedule, p.run); err != nil {
		return nil, err
	}
	return p, nil
}

// Start begins the schedule. Safe to call on a Prewarmer with no jobs.
func (p *Prewarmer) Start() {
	p.cron.Start()
}

// Stop halts the schedule and waits for a running job to finish.
func (p *Prewarmer) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
}

func (p *Prewarmer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	start := time.Now()
	home, cached, err := p.scraper.Home(ctx)
	if err != nil {
		p.log.Warn("prewarm failed", "error", err)
		return
	}
	p.log.Info("prewarm completed",
		"source", home.Source,
		"dramas", len(home.AllDramas),
		"cached", cached,
		"duration", time.Since(start).String(),
	)
}
