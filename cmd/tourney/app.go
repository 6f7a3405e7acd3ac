package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/YuminosukeSato/tourney/engine"
	"github.com/YuminosukeSato/tourney/pkg/config"
	"github.com/YuminosukeSato/tourney/pkg/errors"
	"github.com/YuminosukeSato/tourney/pkg/log"
	"github.com/YuminosukeSato/tourney/report"
)

const (
	flagConfig      = "config"
	flagLogLevel    = "log-level"
	flagFolds       = "folds"
	flagSeed        = "seed"
	flagParallelism = "parallel"
	flagChart       = "chart"
	flagValue       = "value"
)

func newApp(out, errOut io.Writer) *cli.App {
	var cfg *config.Config

	return &cli.App{
		Name:      "tourney",
		Usage:     "cross-validate a fixed set of classifiers on a dataset and predict with the winner",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "one of debug, info, warn, error (overrides the config file)",
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			cfg, err = config.Load(c.String(flagConfig))
			if err != nil {
				return err
			}
			if lvl := c.String(flagLogLevel); lvl != "" {
				if !log.IsValidLevel(lvl) {
					return errors.NewValidationError(flagLogLevel, "must be one of debug, info, warn, error", lvl)
				}
				cfg.LogLevel = lvl
			}
			log.SetupLogger(cfg.LogLevel, c.App.ErrWriter)
			log.SetupWarnings(c.App.ErrWriter)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "run the tournament and optionally classify one instance",
				ArgsUsage: "DATASET",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: flagFolds, Usage: "cross-validation folds"},
					&cli.Int64Flag{Name: flagSeed, Usage: "random seed"},
					&cli.IntFlag{Name: flagParallelism, Usage: "candidates evaluated at once"},
					&cli.StringFlag{Name: flagChart, Usage: "write an accuracy bar chart to `FILE` (png, svg, pdf)"},
					&cli.StringSliceFlag{
						Name:  flagValue,
						Usage: "attribute value for prediction, once per non-class attribute in order",
					},
				},
				Action: func(c *cli.Context) error {
					return runAction(c, cfg)
				},
			},
			{
				Name:      "attributes",
				Usage:     "list the non-class attributes of a dataset",
				ArgsUsage: "DATASET",
				Action: func(c *cli.Context) error {
					return attributesAction(c, cfg)
				},
			},
		},
	}
}

func datasetArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", errors.NewValueError(c.Command.Name, fmt.Sprintf("expected exactly one DATASET argument, got %d", c.NArg()))
	}
	return c.Args().First(), nil
}

func runAction(c *cli.Context, cfg *config.Config) error {
	path, err := datasetArg(c)
	if err != nil {
		return err
	}
	if c.IsSet(flagFolds) {
		cfg.Folds = c.Int(flagFolds)
	}
	if c.IsSet(flagSeed) {
		cfg.Seed = c.Int64(flagSeed)
	}
	if c.IsSet(flagParallelism) {
		cfg.Parallelism = c.Int(flagParallelism)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out := c.App.Writer
	e := engine.NewFromConfig(cfg)
	n, class, err := e.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Dataset Loaded successfully.\nFile: %s\nRows: %d\nClass Attribute: %s\n\n", path, n, class)

	if _, err := e.RunTournament(); err != nil {
		return err
	}
	state, ok := e.State()
	if !ok {
		return errors.NewValueError("run", "dataset replaced before the results could be reported")
	}
	if err := report.Write(out, state); err != nil {
		return err
	}

	if chart := c.String(flagChart); chart != "" {
		if err := report.SaveAccuracyChart(state.Results, state.Best, chart); err != nil {
			return err
		}
		fmt.Fprintf(out, "Chart written to %s\n", chart)
	}

	if values := c.StringSlice(flagValue); len(values) > 0 {
		label := e.Predict(values)
		if state.Best != nil {
			fmt.Fprintf(out, "\nUsing Winner Algorithm: %s\nInput: [%s]\nPredicted Class: %s\n",
				state.Best.Name, strings.Join(values, ", "), label)
		} else {
			fmt.Fprintf(out, "\n%s\n", label)
		}
	}
	return nil
}

func attributesAction(c *cli.Context, cfg *config.Config) error {
	path, err := datasetArg(c)
	if err != nil {
		return err
	}
	e := engine.NewFromConfig(cfg)
	if _, _, err := e.Load(path); err != nil {
		return err
	}
	out := c.App.Writer
	for _, a := range e.Attributes() {
		if a.IsNominal() {
			fmt.Fprintf(out, "%s\tnominal {%s}\n", a.Name, strings.Join(a.Domain, ", "))
			continue
		}
		fmt.Fprintf(out, "%s\tnumeric\n", a.Name)
	}
	fmt.Fprintf(out, "class: %s\n", e.ClassAttributeName())
	return nil
}
