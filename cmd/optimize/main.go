package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rxtech-lab/argo-optimizer/internal/engine"
	"github.com/rxtech-lab/argo-optimizer/internal/logger"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap/zapcore"
)

// optimizeAction is the core logic executed by the CLI command.
// It loads the config, wires up the engine, and runs the full
// optimize-validate-test flow.
func optimizeAction(ctx context.Context, cmd *cli.Command) error {
	dataPath := cmd.String("data")
	configPath := cmd.String("config")
	resultsFolder := cmd.String("output")
	trials := cmd.Int("trials")
	verbose := cmd.Bool("verbose")

	config := ""

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		config = string(content)
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	appLogger, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	optimizerEngine := engine.NewOptimizerEngine()
	optimizerEngine.SetLogger(appLogger)

	defer optimizerEngine.Close()

	if err := optimizerEngine.Initialize(config); err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	optimizerEngine.SetTrials(int(trials))

	if err := optimizerEngine.SetDataPath(dataPath); err != nil {
		return err
	}

	if err := optimizerEngine.SetResultsFolder(resultsFolder); err != nil {
		return err
	}

	return optimizerEngine.Run()
}

func main() {
	cmd := &cli.Command{
		Name:  "optimize",
		Usage: "Optimize trading strategy parameters with walk-forward validation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the candle CSV file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the yaml config file. Defaults are used when omitted.",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Directory the run results are written into",
				Value:    "results",
				Required: false,
			},
			&cli.IntFlag{
				Name:     "trials",
				Aliases:  []string{"n"},
				Usage:    "Number of parameter sets to evaluate. Overrides the config value.",
				Required: false,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: optimizeAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
