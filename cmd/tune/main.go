package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/policy"
)

// logRow is one line of tune_log.csv.
type logRow struct {
	Eval    int     `csv:"eval"`
	Fitness float64 `csv:"fitness"`
	Wins    int     `csv:"wins"`
	Draws   int     `csv:"draws"`
	policy.Gains
}

// formatDuration formats a duration as HhMMmSSs or MmSSs.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	baselinePath := flag.String("baseline", "", "Gains YAML for the robot_1 baseline (empty = defaults)")
	maxTicks := flag.Int("max-ticks", 1800, "Truncate each episode after N ticks")
	seeds := flag.Int("seeds", 6, "Episodes (seeds) per evaluation")
	workers := flag.Int("workers", 0, "Concurrent episodes (0 = one per seed)")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger, options{
		configPath:   *configPath,
		baselinePath: *baselinePath,
		maxTicks:     *maxTicks,
		seeds:        *seeds,
		workers:      *workers,
		maxEvals:     *maxEvals,
		population:   *population,
		outputDir:    *outputDir,
	}); err != nil {
		logger.Error("tune failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	configPath   string
	baselinePath string
	maxTicks     int
	seeds        int
	workers      int
	maxEvals     int
	population   int
	outputDir    string
}

func run(logger *slog.Logger, o options) error {
	if o.outputDir == "" {
		return fmt.Errorf("-output is required")
	}
	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := config.Init(o.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()

	baseline := policy.DefaultGains()
	if o.baselinePath != "" {
		var err error
		if baseline, err = policy.LoadGains(o.baselinePath); err != nil {
			return err
		}
	}

	params := NewParamVector()
	evalSeeds := make([]int64, o.seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, cfg, baseline, evalSeeds, o.maxTicks, o.workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logFile, err := os.Create(filepath.Join(o.outputDir, "tune_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	dim := params.Dim()
	popSize := o.population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	evalCount := 0
	bestFitness := 1e9
	var bestGains policy.Gains
	startTime := time.Now()
	headerWritten := false

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness, err := evaluator.Evaluate(ctx, raw)
			if err != nil {
				logger.Warn("evaluation failed", "error", err)
				return fitness
			}
			evalCount++

			gains := params.ToGains(raw)
			if fitness < bestFitness {
				bestFitness = fitness
				bestGains = gains
			}

			wins, draws, length := evaluator.Last()
			row := []logRow{{Eval: evalCount, Fitness: fitness, Wins: wins, Draws: draws, Gains: gains}}
			if !headerWritten {
				err = gocsv.Marshal(row, logFile)
				headerWritten = true
			} else {
				err = gocsv.MarshalWithoutHeaders(row, logFile)
			}
			if err != nil {
				logger.Warn("writing tune log", "error", err)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(o.maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			logger.Info("eval",
				"n", evalCount,
				"max", o.maxEvals,
				"fitness", fitness,
				"best", bestFitness,
				"wins", wins,
				"mean_ticks", length,
				"elapsed", formatDuration(elapsed),
				"eta", formatDuration(remaining),
			)
			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: o.maxEvals,
		Concurrent:      0, // seeds already run in parallel
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logger.Info("starting CMA-ES",
		"params", dim,
		"population", popSize,
		"max_evals", o.maxEvals,
		"seeds", o.seeds,
		"max_ticks", o.maxTicks,
	)

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		logger.Warn("optimization ended", "error", err)
	}
	if evalCount == 0 {
		if result == nil {
			return fmt.Errorf("no evaluation completed")
		}
		bestGains = params.ToGains(params.Denormalize(result.X))
	}

	logger.Info("tune complete",
		"evals", evalCount,
		"duration", formatDuration(time.Since(startTime)),
		"best_fitness", bestFitness,
	)

	gainsPath := filepath.Join(o.outputDir, "best_gains.yaml")
	if err := bestGains.WriteYAML(gainsPath); err != nil {
		return err
	}
	logger.Info("best gains saved", "path", gainsPath)
	return nil
}
