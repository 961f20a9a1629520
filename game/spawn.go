package game

import (
	"math/rand"

	"github.com/pthm-cable/arena/config"
)

// SpawnPolicy chooses the catalog indices of robot_0 (anchor) and robot_1 (pair).
type SpawnPolicy interface {
	Pick(rng *rand.Rand, cfg config.SpawnConfig) (anchor, pair int)
}

// AdjacencySpawn picks the anchor uniformly over the catalog and the pair
// uniformly over the anchor's adjacency row. Repeated entries in a row
// weight that neighbour accordingly.
type AdjacencySpawn struct{}

// Pick implements SpawnPolicy.
func (AdjacencySpawn) Pick(rng *rand.Rand, cfg config.SpawnConfig) (int, int) {
	anchor := rng.Intn(len(cfg.Positions))
	row := cfg.Adjacency[anchor]
	return anchor, row[rng.Intn(len(row))]
}

// FixedSpawn always returns the same indices and leaves the rng untouched.
type FixedSpawn struct {
	Anchor, Pair int
}

// Pick implements SpawnPolicy.
func (f FixedSpawn) Pick(_ *rand.Rand, _ config.SpawnConfig) (int, int) {
	return f.Anchor, f.Pair
}
