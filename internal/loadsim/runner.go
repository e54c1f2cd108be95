package loadsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vityaz/arena/internal/domain/model"
	"github.com/vityaz/arena/pkg/logger"
)

// Stats aggregates a simulation run's outcomes.
type Stats struct {
	Submitted   atomic.Int64
	Accepted    atomic.Int64
	Rejected    atomic.Int64
	Backpressed atomic.Int64
	Failed      atomic.Int64
}

// Runner drives generated traffic at the service's events endpoint.
type Runner struct {
	cfg    *Config
	client *http.Client
	log    logger.Logger
}

// NewRunner creates a runner for the given configuration.
func NewRunner(cfg *Config) *Runner {
	return &Runner{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logger.Named("loadsim"),
	}
}

// Run generates and submits cfg.Events events with cfg.Workers concurrent
// senders, returning aggregate stats.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	gen := NewGenerator(r.cfg.Players, r.cfg.Mode, time.Now().UnixNano())
	stats := &Stats{}

	events := make(chan model.Envelope, r.cfg.Workers*2)
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range events {
				r.submit(ctx, e, stats)
			}
		}()
	}

	start := time.Now()
	for i := 0; i < r.cfg.Events; i++ {
		select {
		case <-ctx.Done():
			close(events)
			wg.Wait()
			return stats, ctx.Err()
		case events <- gen.Next():
		}
	}
	close(events)
	wg.Wait()

	elapsed := time.Since(start)
	r.log.Info(ctx, "simulation finished",
		logger.Int64("submitted", stats.Submitted.Load()),
		logger.Int64("accepted", stats.Accepted.Load()),
		logger.Int64("rejected", stats.Rejected.Load()),
		logger.Int64("backpressured", stats.Backpressed.Load()),
		logger.Int64("failed", stats.Failed.Load()),
		logger.Float64("events_per_second", float64(stats.Submitted.Load())/elapsed.Seconds()),
	)
	return stats, nil
}

func (r *Runner) submit(ctx context.Context, e model.Envelope, stats *Stats) {
	stats.Submitted.Add(1)

	body, err := json.Marshal(e)
	if err != nil {
		stats.Failed.Add(1)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/events", bytes.NewReader(body))
	if err != nil {
		stats.Failed.Add(1)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		stats.Failed.Add(1)
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusOK:
		stats.Accepted.Add(1)
	case http.StatusTooManyRequests:
		stats.Backpressed.Add(1)
	case http.StatusBadRequest:
		stats.Rejected.Add(1)
	default:
		stats.Failed.Add(1)
	}
}

// FetchLeaderboard reads back the top entries after a run.
func (r *Runner) FetchLeaderboard(ctx context.Context, limit int) ([]model.RatingRecord, error) {
	url := fmt.Sprintf("%s/leaderboard?limit=%d", r.cfg.BaseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leaderboard fetch failed: %s", resp.Status)
	}
	var board []model.RatingRecord
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return nil, err
	}
	return board, nil
}
