package main

import (
	"math"
	"math/rand"
	"time"

	"github.com/delaneyj/deepreactive/reactive"
	"github.com/go-logr/logr"
	"github.com/juju/errors"
)

type graphConfig struct {
	Name           string  `yaml:"name"`
	Width          int64   `yaml:"width"`
	TotalLayers    int64   `yaml:"total_layers"`
	StaticFraction float64 `yaml:"static_fraction"`
	NSources       int64   `yaml:"n_sources"`
	ReadFraction   float64 `yaml:"read_fraction"`
	Iterations     int64   `yaml:"iterations"`
}

func (cfg graphConfig) validate() error {
	if cfg.Width < 1 || cfg.TotalLayers < 2 || cfg.NSources < 1 || cfg.Iterations < 1 {
		return errors.Errorf("graph %q: width, n_sources and iterations must be positive and total_layers at least 2", cfg.Name)
	}
	return nil
}

type result struct {
	sum      int
	runs     uint64
	duration time.Duration
}

// graph is one reactive array per layer. Node j of a layer is an effect that sums
// entries of the previous layer and stores the sum at index j of its own layer.
type graph struct {
	rt      *reactive.Runtime
	sources *reactive.Array
	layers  []*reactive.Array
	failure error
}

func makeGraph(cfg graphConfig) (*graph, error) {
	rcfg := reactive.DefaultConfig()
	rcfg.MaxFlushIterations = int(cfg.TotalLayers) + 1

	g := &graph{}
	rt, err := reactive.New(
		reactive.WithConfig(rcfg),
		reactive.WithLogger(logr.Discard()),
		reactive.WithOnError(func(e *reactive.Effect, err error) {
			g.failure = err
		}),
	)
	if err != nil {
		return nil, errors.Trace(err)
	}

	sources := make([]any, cfg.Width)
	for i := range sources {
		sources[i] = i
	}
	g.rt = rt
	g.sources = rt.Array(sources)

	random := rand.New(rand.NewSource(0))
	prev := g.sources
	for l := int64(0); l < cfg.TotalLayers-1; l++ {
		row, err := makeRow(rt, prev, cfg, random)
		if err != nil {
			return nil, err
		}
		g.layers = append(g.layers, row)
		prev = row
	}
	return g, nil
}

func makeRow(rt *reactive.Runtime, prev *reactive.Array, cfg graphConfig, random *rand.Rand) (*reactive.Array, error) {
	width := int(cfg.Width)
	row := rt.Array(make([]any, width))

	for myDex := 0; myDex < width; myDex++ {
		mySources := make([]int, 0, cfg.NSources)
		for sourceDex := 0; sourceDex < int(cfg.NSources); sourceDex++ {
			mySources = append(mySources, (myDex+sourceDex)%width)
		}

		var fn reactive.ErrFn
		if random.Float64() < cfg.StaticFraction {
			fn = func() error {
				sum := 0
				for _, src := range mySources {
					v, _ := prev.GetInt(src)
					sum += v
				}
				row.Set(myDex, sum)
				return nil
			}
		} else {
			first, tail := mySources[0], mySources[1:]
			fn = func() error {
				sum, _ := prev.GetInt(first)
				shouldDrop := sum&0x1 > 0
				dropDex := 0
				if len(tail) > 0 {
					dropDex = sum % len(tail)
				}
				for i, src := range tail {
					if shouldDrop && i == dropDex {
						continue
					}
					v, _ := prev.GetInt(src)
					sum += v
				}
				row.Set(myDex, sum)
				return nil
			}
		}
		if _, err := rt.Effect(fn); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return row, nil
}

// runGraph writes one source per iteration, lets the effects settle and reads a
// fraction of the last layer. It returns the sum of all reads.
func runGraph(cfg graphConfig) (*result, error) {
	g, err := makeGraph(cfg)
	if err != nil {
		return nil, err
	}

	random := rand.New(rand.NewSource(0))
	leaves := g.layers[len(g.layers)-1]
	indices := make([]int, cfg.Width)
	for i := range indices {
		indices[i] = i
	}
	skipCount := int(math.Round(float64(len(indices)) * (1 - cfg.ReadFraction)))
	readLeaves := removeElems(indices, skipCount, random)

	before := g.rt.Stats().EffectRuns
	start := time.Now()
	sum := 0
	for i := 0; i < int(cfg.Iterations); i++ {
		sourceDex := i % int(cfg.Width)
		g.sources.Set(sourceDex, i+sourceDex)
		g.rt.Drain()
		if g.failure != nil {
			return nil, errors.Annotatef(g.failure, "graph %q", cfg.Name)
		}

		for _, leaf := range readLeaves {
			v, _ := leaves.GetInt(leaf)
			sum += v
		}
	}

	return &result{
		sum:      sum,
		runs:     g.rt.Stats().EffectRuns - before,
		duration: time.Since(start),
	}, nil
}

func removeElems[T comparable](src []T, rmCount int, rand *rand.Rand) []T {
	copyWithRemovals := make([]T, len(src))
	copy(copyWithRemovals, src)
	for i := 0; i < rmCount; i++ {
		rmDex := rand.Intn(len(copyWithRemovals))
		copyWithRemovals[rmDex] = copyWithRemovals[len(copyWithRemovals)-1]
		copyWithRemovals = copyWithRemovals[:len(copyWithRemovals)-1]
	}
	return copyWithRemovals
}
