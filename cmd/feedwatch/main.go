package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fastnu.dev/pointportal/internal/feed"
)

type logSink struct{}

func (logSink) Update(p feed.Position) {
	log.Info().Float64("lat", p.Lat).Float64("lng", p.Lng).Msg("position")
}

func main() {
	debug := flag.Bool("debug", false, "sets log level to debug")
	url := flag.String("url", "http://localhost:3333/api/getLatestPosition", "latest position endpoint")
	interval := flag.Int("interval", 1000, "poll interval in milliseconds")
	flag.Parse()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fetcher := feed.NewHTTPFetcher(*url, 5*time.Second)
	poller := feed.NewPoller(fetcher, logSink{}, &feed.PollerConfig{Interval: time.Duration(*interval) * time.Millisecond})
	poller.Run(ctx)
}
