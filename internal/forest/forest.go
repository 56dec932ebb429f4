// Package forest implements a bootstrap-aggregated ensemble of CART
// regression trees.
//
// Trees are grown on bootstrap resamples of the training rows, splitting on
// the feature/threshold pair with the largest reduction in squared error and
// placing thresholds at the midpoint between adjacent distinct values. Every
// tree draws from its own PCG stream derived from the configured seed, so a
// fit is reproducible regardless of how trees are scheduled.
package forest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptyTrainingSet is returned when Fit receives no rows.
	ErrEmptyTrainingSet = errors.New("forest: empty training set")

	// ErrShapeMismatch is returned when rows have inconsistent widths or the
	// target length differs from the row count.
	ErrShapeMismatch = errors.New("forest: shape mismatch")
)

// Config holds the ensemble hyperparameters.
type Config struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	Seed            uint64
}

// DefaultConfig returns 100 trees of depth at most 10, seeded with 42.
func DefaultConfig() Config {
	return Config{
		Trees:           100,
		MaxDepth:        10,
		MinSamplesSplit: 2,
		Seed:            42,
	}
}

// Forest is a fitted ensemble. It is immutable and safe for concurrent use.
type Forest struct {
	trees []*node
	width int
}

// Fit grows the ensemble on rows x with targets y.
func Fit(ctx context.Context, x [][]float64, y []float64, cfg Config) (*Forest, error) {
	if len(x) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d targets", ErrShapeMismatch, len(x), len(y))
	}
	width := len(x[0])
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(row), width)
		}
	}

	def := DefaultConfig()
	if cfg.Trees <= 0 {
		cfg.Trees = def.Trees
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = def.MinSamplesSplit
	}

	f := &Forest{trees: make([]*node, cfg.Trees), width: width}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t := range cfg.Trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(t)))
			b := builder{x: x, y: y, maxDepth: cfg.MaxDepth, minSplit: cfg.MinSamplesSplit}
			f.trees[t] = b.grow(bootstrap(rng, len(x)), 0)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}

// Predict returns the mean of the tree outputs for v.
// It panics if len(v) differs from the training width.
func (f *Forest) Predict(v []float64) float64 {
	if len(v) != f.width {
		panic(fmt.Sprintf("forest: predict with %d features, trained on %d", len(v), f.width))
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(v)
	}
	return sum / float64(len(f.trees))
}

// Width is the number of features the forest was trained on.
func (f *Forest) Width() int { return f.width }

// Size is the number of trees.
func (f *Forest) Size() int { return len(f.trees) }

// Score returns the coefficient of determination of the forest on x, y.
func (f *Forest) Score(x [][]float64, y []float64) float64 {
	estimates := make([]float64, len(x))
	for i, row := range x {
		estimates[i] = f.Predict(row)
	}
	return stat.RSquaredFrom(estimates, y, nil)
}

func bootstrap(rng *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.IntN(n)
	}
	return idx
}
