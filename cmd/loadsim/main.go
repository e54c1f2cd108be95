package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vityaz/arena/internal/loadsim"
	"github.com/vityaz/arena/pkg/logger"
)

func main() {
	cfg := loadsim.NewConfig()
	flag.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the service")
	flag.IntVar(&cfg.Players, "players", cfg.Players, "Number of synthetic players")
	flag.IntVar(&cfg.Events, "events", cfg.Events, "Number of events to submit")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent senders")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	flag.StringVar(&cfg.Mode, "mode", cfg.Mode, "Matchmaking mode for queue joins")
	top := flag.Int("top", 10, "Leaderboard entries to fetch after the run")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Named("loadsim")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := loadsim.NewRunner(cfg)
	stats, err := runner.Run(ctx)
	if err != nil {
		log.Error(ctx, "simulation aborted", logger.Error(err))
		os.Exit(1)
	}

	if stats.Failed.Load() > 0 {
		log.Warn(ctx, "some requests failed", logger.Int64("failed", stats.Failed.Load()))
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	board, err := runner.FetchLeaderboard(fetchCtx, *top)
	if err != nil {
		log.Error(ctx, "leaderboard fetch failed", logger.Error(err))
		return
	}
	for i, rec := range board {
		log.Info(ctx, "leaderboard entry",
			logger.Int("rank", i+1),
			logger.String("player_id", rec.PlayerID),
			logger.Float64("rating", rec.Rating),
			logger.Int("wins", rec.Wins),
			logger.Int("losses", rec.Losses),
		)
	}
}
