package main

import (
	"context"
	"go/format"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/delaneyj/deepreactive/cmd/codegen/templates"
	"github.com/juju/errors"
	"github.com/urfave/cli/v3"
)

const (
	outKey     = "out"
	packageKey = "package"
)

func main() {
	cmd := &cli.Command{
		Name:  "generate",
		Usage: "Generate typed accessors for reactive views",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  outKey,
				Usage: "File to write the accessors to",
				Value: "reactive/accessors_gen.go",
			},
			&cli.StringFlag{
				Name:  packageKey,
				Usage: "Package name of the generated file",
				Value: "reactive",
			},
		},
		Action: generate,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	out := cmd.String(outKey)
	log.Printf("Codegen for %s started", out)
	defer func() {
		log.Printf("Codegen for %s finished in %v", out, time.Since(start))
	}()

	contents := templates.AccessorsGen(cmd.String(packageKey), templates.DefaultContainers(), templates.DefaultValues())
	formatted, err := format.Source([]byte(contents))
	if err != nil {
		return errors.Annotate(err, "format generated accessors")
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return errors.Trace(err)
	}
	if err := os.WriteFile(out, formatted, 0644); err != nil {
		return errors.Trace(err)
	}
	return nil
}
