package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/policy"
	"github.com/pthm-cable/arena/renderer"
	"github.com/pthm-cable/arena/telemetry"
)

const playerKeyboard = "keyboard"

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	episodes := flag.Int("episodes", 1, "Episodes to play in headless mode")
	maxTicks := flag.Int("max-ticks", 5400, "Truncate an episode after N ticks (0 = unlimited)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	player := flag.String("player", "", "robot_0 controller: keyboard|scripted|network|idle (default keyboard, scripted when headless)")
	opponent := flag.String("opponent", policy.KindScripted, "robot_1 controller: scripted|network|idle")
	gainsPath := flag.String("gains", "", "YAML gains for scripted robots (empty = defaults)")
	weightsPath := flag.String("weights", "", "YAML weights for network robots (empty = random)")
	logStats := flag.Bool("log-stats", false, "Log perf stats after each episode")
	debug := flag.Bool("debug", false, "Debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *player == "" {
		*player = playerKeyboard
		if *headless {
			*player = policy.KindScripted
		}
	}

	r := run{
		configPath: *configPath,
		episodes:   *episodes,
		maxTicks:   *maxTicks,
		outputDir:  *outputDir,
		player:     *player,
		opponent:   *opponent,
		gainsPath:  *gainsPath,
		weights:    *weightsPath,
		logStats:   *logStats,
		log:        logger,
	}
	if *seed != 0 {
		r.seed = seed
	}

	var err error
	if *headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = r.headless(ctx)
	} else {
		err = r.windowed()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// run holds the resolved command line.
type run struct {
	configPath string
	episodes   int
	maxTicks   int
	seed       *int64
	outputDir  string
	player     string
	opponent   string
	gainsPath  string
	weights    string
	logStats   bool
	log        *slog.Logger

	cfg  *config.Config
	perf *telemetry.PerfCollector
	out  *telemetry.OutputManager
}

// setup loads config, builds the env and opens the output directory.
func (r *run) setup() (*game.Env, error) {
	if err := config.Init(r.configPath); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	r.cfg = config.Cfg()
	r.perf = telemetry.NewPerfCollector(r.cfg.Telemetry.PerfWindow)

	env, err := game.NewEnv(r.cfg, game.WithLogger(r.log), game.WithPerf(r.perf))
	if err != nil {
		return nil, err
	}
	used := env.Seed(r.seed)
	r.log.Info("env ready", "seed", used, "player", r.player, "opponent", r.opponent)

	if r.outputDir != "" {
		if r.out, err = telemetry.NewOutputManager(r.outputDir); err != nil {
			env.Close()
			return nil, err
		}
		if err := r.out.WriteConfig(r.cfg); err != nil {
			r.closeOutput()
			env.Close()
			return nil, err
		}
	}
	return env, nil
}

// policy builds a non-interactive controller. Each robot gets its own
// network seed so two random networks do not mirror each other.
func (r *run) policy(kind string, slot int) (policy.Policy, error) {
	gains := policy.DefaultGains()
	if r.gainsPath != "" {
		var err error
		if gains, err = policy.LoadGains(r.gainsPath); err != nil {
			return nil, err
		}
	}
	var seed int64
	if r.seed != nil {
		seed = *r.seed
	}
	return policy.New(kind, r.cfg, policy.Options{Gains: gains, Weights: r.weights, Seed: seed + int64(slot)})
}

func (r *run) headless(ctx context.Context) error {
	if r.player == playerKeyboard {
		return fmt.Errorf("player %q needs a window", playerKeyboard)
	}
	env, err := r.setup()
	if err != nil {
		return err
	}
	defer env.Close()
	defer r.closeOutput()

	p0, err := r.policy(r.player, 0)
	if err != nil {
		return err
	}
	p1, err := r.policy(r.opponent, 1)
	if err != nil {
		return err
	}
	match := policy.NewMatch(env, p0, p1)

	r.log.Info("starting headless run", "episodes", r.episodes, "max_ticks", r.maxTicks)

	records := make([]telemetry.EpisodeRecord, 0, r.episodes)
	for ep := 1; ep <= r.episodes; ep++ {
		rec, err := match.Run(ctx, r.maxTicks)
		if err != nil {
			return fmt.Errorf("episode %d: %w", ep, err)
		}
		records = append(records, rec)
		r.log.Info("episode_finished", "episode", ep, "record", rec)
		if err := r.record(rec, env.Events(), ep); err != nil {
			return err
		}
	}

	summary := telemetry.Summarize(records, string(game.Robot0), string(game.Robot1))
	r.log.Info("run_summary", "summary", summary)
	if r.out != nil {
		if err := r.out.WriteSummary(summary); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) windowed() error {
	env, err := r.setup()
	if err != nil {
		return err
	}
	defer env.Close()
	defer r.closeOutput()

	var p0 policy.Policy
	if r.player == playerKeyboard {
		p0 = renderer.NewKeyboard()
	} else if p0, err = r.policy(r.player, 0); err != nil {
		return err
	}
	p1, err := r.policy(r.opponent, 1)
	if err != nil {
		return err
	}

	episode := 0
	viewer := renderer.NewViewer(policy.NewMatch(env, p0, p1), renderer.Options{
		Title:    "Arena",
		MaxTicks: r.maxTicks,
		Logger:   r.log,
		Perf:     r.perf,
		OnEpisodeEnd: func(rec telemetry.EpisodeRecord) {
			episode++
			if err := r.record(rec, env.Events(), episode); err != nil {
				r.log.Error("writing episode", "error", err)
			}
		},
	})
	return viewer.Run()
}

// record writes an episode, its events and its perf window.
func (r *run) record(rec telemetry.EpisodeRecord, events []telemetry.Event, ep int) error {
	stats := r.perf.Stats()
	if r.logStats {
		stats.LogStats(r.log)
	}
	if r.out == nil {
		return nil
	}
	if err := r.out.WriteEpisode(rec); err != nil {
		return err
	}
	if err := r.out.WriteEvents(events); err != nil {
		return err
	}
	return r.out.WritePerf(stats, ep)
}

func (r *run) closeOutput() {
	if r.out == nil {
		return
	}
	if err := r.out.Close(); err != nil {
		r.log.Error("closing output", "error", err)
	}
	r.out = nil
}
