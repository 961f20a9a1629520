package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a batch of episodes.
type Summary struct {
	Episodes int `yaml:"episodes"`
	Wins0    int `yaml:"wins_robot_0"`
	Wins1    int `yaml:"wins_robot_1"`
	Draws    int `yaml:"draws"`
	Finished int `yaml:"finished"` // episodes that ended on a health condition

	RewardMean float64 `yaml:"reward_mean"`
	RewardStd  float64 `yaml:"reward_std"`
	LengthMean float64 `yaml:"length_mean"`
	LengthStd  float64 `yaml:"length_std"`
	LengthP10  float64 `yaml:"length_p10"`
	LengthP50  float64 `yaml:"length_p50"`
	LengthP90  float64 `yaml:"length_p90"`
}

// Summarize computes win counts and reward/length statistics. Winner names
// are compared against the ids passed in.
func Summarize(records []EpisodeRecord, robot0, robot1 string) Summary {
	s := Summary{Episodes: len(records)}
	if len(records) == 0 {
		return s
	}

	rewards := make([]float64, len(records))
	lengths := make([]float64, len(records))
	for i, r := range records {
		rewards[i] = r.TotalReward
		lengths[i] = float64(r.Ticks)
		switch r.Winner {
		case robot0:
			s.Wins0++
		case robot1:
			s.Wins1++
		default:
			s.Draws++
		}
		if r.Done {
			s.Finished++
		}
	}

	s.RewardMean, s.RewardStd = meanStd(rewards)
	s.LengthMean, s.LengthStd = meanStd(lengths)

	slices.Sort(lengths)
	s.LengthP10 = stat.Quantile(0.10, stat.Empirical, lengths, nil)
	s.LengthP50 = stat.Quantile(0.50, stat.Empirical, lengths, nil)
	s.LengthP90 = stat.Quantile(0.90, stat.Empirical, lengths, nil)
	return s
}

// meanStd returns the mean and sample standard deviation. A single sample
// has zero spread.
func meanStd(x []float64) (mean, std float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	mean, std = stat.MeanStdDev(x, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("episodes", s.Episodes),
		slog.Int("wins_robot_0", s.Wins0),
		slog.Int("wins_robot_1", s.Wins1),
		slog.Int("draws", s.Draws),
		slog.Int("finished", s.Finished),
		slog.Float64("reward_mean", s.RewardMean),
		slog.Float64("reward_std", s.RewardStd),
		slog.Float64("length_mean", s.LengthMean),
		slog.Float64("length_p50", s.LengthP50),
	)
}
