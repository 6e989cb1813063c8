package regression

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultTrees = 100
	DefaultSeed  = 42
)

// Forest is a bagged ensemble of regression trees. Every tree sees a
// bootstrap sample of the rows and all features. Tree i draws from its own
// generator seeded with Seed+i, so results do not depend on scheduling.
type Forest struct {
	Trees   int
	Seed    int64
	Workers int

	trees []*Tree
}

// NewForest returns an unfitted forest.
func NewForest(trees int, seed int64) *Forest {
	if trees <= 0 {
		trees = DefaultTrees
	}
	return &Forest{Trees: trees, Seed: seed}
}

// Fit grows all trees in parallel on a bounded worker pool.
func (f *Forest) Fit(ctx context.Context, X [][]float64, y []float64) error {
	rows, _, err := checkShape(X, y)
	if err != nil {
		return err
	}
	workers := f.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	trees := make([]*Tree, f.Trees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range trees {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(f.Seed + int64(i)))
			trees[i] = fitTree(X, y, bootstrap(rng, rows))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("forest: %w", err)
	}
	f.trees = trees
	return nil
}

// Predict averages the tree predictions.
func (f *Forest) Predict(x []float64) float64 {
	if len(f.trees) == 0 {
		panic(fmt.Sprintf("forest: %v", ErrNotFitted))
	}
	s := 0.0
	for _, t := range f.trees {
		s += t.Predict(x)
	}
	return s / float64(len(f.trees))
}
