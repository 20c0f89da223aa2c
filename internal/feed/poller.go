package feed

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type PollerConfig struct {
	Interval time.Duration
}

// Poller fetches the latest known position on a fixed wall-clock cadence and
// forwards each sample to the sink. A failed fetch is logged and the next
// tick still fires at the same cadence; there is no backoff and no failure
// cap. The loop stops only when its context is cancelled.
type Poller struct {
	fetcher Fetcher
	sink    Sink
	config  PollerConfig
	logger  zerolog.Logger
}

func NewPoller(fetcher Fetcher, sink Sink, config *PollerConfig) *Poller {
	p := &Poller{}
	p.fetcher = fetcher
	p.sink = sink
	p.config = *config
	if p.config.Interval == 0 {
		p.config.Interval = time.Second
	}
	p.logger = log.With().Str("module", "feed").Logger()
	return p
}

// Run blocks until ctx is cancelled; no tick fires after cancellation.
// Ticks are interval-triggered, not completion-triggered: a request slower
// than the interval overlaps the next one and the sink sees last-write-wins
// ordering.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	pos, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.logger.Err(err).Msg("error fetching position")
		return
	}
	p.sink.Update(pos)
}
