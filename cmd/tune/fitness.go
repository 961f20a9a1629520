package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/policy"
	"github.com/pthm-cable/arena/telemetry"
)

// FitnessEvaluator plays the tuned bot against a fixed baseline and scores
// the gains.
type FitnessEvaluator struct {
	params   *ParamVector
	cfg      *config.Config
	baseline policy.Gains
	seeds    []int64
	maxTicks int
	workers  int

	mu         sync.Mutex
	lastWins   int // robot_0 wins in the most recent Evaluate
	lastDraws  int
	lastLength float64
}

// NewFitnessEvaluator creates an evaluator. workers <= 0 runs every seed
// at once.
func NewFitnessEvaluator(params *ParamVector, cfg *config.Config, baseline policy.Gains, seeds []int64, maxTicks, workers int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:   params,
		cfg:      cfg,
		baseline: baseline,
		seeds:    seeds,
		maxTicks: maxTicks,
		workers:  workers,
	}
}

// Evaluate computes fitness for a raw parameter vector (lower = better):
// the negated mean cumulative reward of robot_0 across seeds.
func (fe *FitnessEvaluator) Evaluate(ctx context.Context, x []float64) (float64, error) {
	gains := fe.params.ToGains(x)
	records := make([]telemetry.EpisodeRecord, len(fe.seeds))

	g, ctx := errgroup.WithContext(ctx)
	if fe.workers > 0 {
		g.SetLimit(fe.workers)
	}
	for i, seed := range fe.seeds {
		g.Go(func() error {
			rec, err := fe.play(ctx, gains, seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return math.Inf(1), err
	}

	s := telemetry.Summarize(records, string(game.Robot0), string(game.Robot1))
	fe.mu.Lock()
	fe.lastWins, fe.lastDraws, fe.lastLength = s.Wins0, s.Draws, s.LengthMean
	fe.mu.Unlock()
	return -s.RewardMean, nil
}

// play runs one episode on its own Env.
func (fe *FitnessEvaluator) play(ctx context.Context, gains policy.Gains, seed int64) (telemetry.EpisodeRecord, error) {
	env, err := game.NewEnv(fe.cfg, game.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		return telemetry.EpisodeRecord{}, err
	}
	defer env.Close()
	env.Seed(&seed)

	m := policy.NewMatch(env,
		policy.NewScripted(fe.cfg.Sensors, gains),
		policy.NewScripted(fe.cfg.Sensors, fe.baseline),
	)
	return m.Run(ctx, fe.maxTicks)
}

// Last returns win, draw and mean length figures from the most recent
// evaluation.
func (fe *FitnessEvaluator) Last() (wins, draws int, length float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastWins, fe.lastDraws, fe.lastLength
}
