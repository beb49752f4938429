package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

//go:embed configs.yaml
var defaultConfigs []byte

const (
	configKey  = "config"
	repeatsKey = "repeats"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark_graph",
		Usage: "Run layered dynamic dependency graphs through reactive arrays and effects",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  configKey,
				Usage: "YAML file with graph shapes, defaults to the built-in set",
			},
			&cli.IntFlag{
				Name:  repeatsKey,
				Usage: "Timed runs per shape, the best one is reported",
				Value: 5,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfigs(path string) ([]graphConfig, error) {
	data := defaultConfigs
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, errors.Annotatef(err, "read %q", path)
		}
	}
	var cfgs []graphConfig
	if err := yaml.Unmarshal(data, &cfgs); err != nil {
		return nil, errors.Annotate(err, "parse graph configs")
	}
	for _, cfg := range cfgs {
		if err := cfg.validate(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return cfgs, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Print("Starting graph benchmark, please wait...")
	defer log.Print("Finished graph benchmark")

	cfgs, err := loadConfigs(cmd.String(configKey))
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"size", "nSources", "read%", "static%",
		"nTimes", "test", "time", "effectRuns", "updateRate", "title",
	})

	testRepeats := int(cmd.Int(repeatsKey))
	for _, cfg := range cfgs {
		log.Printf("Running '%s' config", cfg.Name)

		// warm up
		if _, err := runGraph(cfg); err != nil {
			return err
		}

		var best *result
		for i := 0; i < testRepeats; i++ {
			log.Printf("Running '%s' config, iteration %d/%d %d%%", cfg.Name, i+1, testRepeats, (i+1)*100/testRepeats)
			res, err := runGraph(cfg)
			if err != nil {
				return err
			}
			if best == nil || res.duration < best.duration {
				best = res
			}
		}
		if best == nil {
			continue
		}

		updateRate := float64(best.runs) / (float64(best.duration) / float64(time.Millisecond))
		table.Append([]string{
			fmt.Sprintf("%dx%d", cfg.Width, cfg.TotalLayers),
			fmt.Sprint(cfg.NSources),
			fmt.Sprint(cfg.ReadFraction),
			fmt.Sprint(cfg.StaticFraction),
			humanize.Comma(cfg.Iterations),
			cfg.Name,
			fmt.Sprint(best.duration),
			humanize.Comma(int64(best.runs)),
			humanize.Comma(int64(updateRate)),
			title(cfg),
		})
	}
	table.Render()
	return nil
}

func title(cfg graphConfig) string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("%dx%d %d sources", cfg.Width, cfg.TotalLayers, cfg.NSources))
	if cfg.StaticFraction < 1 {
		sb.WriteString(" dynamic")
	}
	if cfg.ReadFraction < 1 {
		sb.WriteString(fmt.Sprintf(" read %0.2f%%", 100*cfg.ReadFraction))
	}
	return sb.String()
}
