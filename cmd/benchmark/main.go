package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/deepreactive/reactive"
	"github.com/go-logr/logr"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/juju/errors"
	"github.com/urfave/cli/v3"
)

const (
	itersKey        = "iters"
	profileKey      = "profile"
	maxFlushSizeKey = "max-flush-size"
)

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100, 1_000}
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure write-to-flush propagation through chains of effects",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  itersKey,
				Usage: "Writes measured per shape",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile to this file",
				Value: "default.pgo",
			},
			&cli.IntFlag{
				Name:  maxFlushSizeKey,
				Usage: "Scheduler flush cap, 0 for none",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Trace(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return errors.Trace(err)
		}
		defer pprof.StopCPUProfile()
	}

	cfg := reactive.DefaultConfig()
	cfg.MaxFlushSize = int(cmd.Int(maxFlushSizeKey))
	// a chain of h effects needs h flush iterations to settle
	cfg.MaxFlushIterations = hh[len(hh)-1] + 1

	log.Printf("warming up")
	if err := benchmarkPropagate(cfg, int(cmd.Int(itersKey)), false); err != nil {
		return err
	}
	return benchmarkPropagate(cfg, int(cmd.Int(itersKey)), true)
}

func benchmarkPropagate(cfg reactive.Config, iters int, shouldRender bool) error {
	tbl := table.NewWriter()
	tbl.SetTitle("Deep Reactive")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			rt, err := reactive.New(
				reactive.WithConfig(cfg),
				reactive.WithLogger(logr.Discard()),
				reactive.WithOnError(func(e *reactive.Effect, err error) {
					log.Panic(err)
				}),
			)
			if err != nil {
				return errors.Trace(err)
			}

			src := rt.Object(map[string]any{"value": 1})
			for i := 0; i < w; i++ {
				last := src
				for j := 0; j < h; j++ {
					prev := last
					next := rt.Object(map[string]any{"value": 0})
					if _, err := rt.Effect(func() error {
						v, _ := prev.GetInt("value")
						next.Set("value", v+1)
						return nil
					}); err != nil {
						return errors.Trace(err)
					}
					last = next
				}

				if _, err := rt.Effect(func() error {
					last.Get("value")
					return nil
				}); err != nil {
					return errors.Trace(err)
				}
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				v, _ := src.GetInt("value")
				src.Set("value", v+1)
				rt.Drain()
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
	return nil
}
