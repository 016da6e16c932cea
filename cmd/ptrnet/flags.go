package main

import (
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/born-ml/ptrnet/internal/config"
	"github.com/born-ml/ptrnet/internal/logger"
)

// modelFlags are shared by every command that builds a model.
func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to YAML config"},
		&cli.IntFlag{Name: "input-dim", Usage: "features per input position"},
		&cli.IntFlag{Name: "embedding-dim", Usage: "embedding size"},
		&cli.IntFlag{Name: "hidden-size", Usage: "encoder/decoder hidden size"},
		&cli.IntFlag{Name: "num-layers", Usage: "encoder layers"},
		&cli.BoolFlag{Name: "bidirectional", Usage: "bidirectional encoder"},
		&cli.BoolFlag{Name: "batch-first", Usage: "inputs are (batch, seq, features)"},
		&cli.BoolFlag{Name: "exclude-visited", Usage: "never select a position twice"},
		&cli.IntFlag{Name: "seed", Usage: "weight initialisation seed (0 = time based)"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		&cli.StringFlag{Name: "log-format", Usage: "text or json"},
	}
}

// loadConfig reads the config file and applies the flags that were set
// explicitly on the command line.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if cmd.IsSet("input-dim") {
		cfg.InputDim = int(cmd.Int("input-dim"))
	}
	if cmd.IsSet("embedding-dim") {
		cfg.EmbeddingDim = int(cmd.Int("embedding-dim"))
	}
	if cmd.IsSet("hidden-size") {
		cfg.HiddenSize = int(cmd.Int("hidden-size"))
	}
	if cmd.IsSet("num-layers") {
		cfg.NumLayers = int(cmd.Int("num-layers"))
	}
	if cmd.IsSet("bidirectional") {
		cfg.Bidirectional = cmd.Bool("bidirectional")
	}
	if cmd.IsSet("batch-first") {
		cfg.BatchFirst = cmd.Bool("batch-first")
	}
	if cmd.IsSet("exclude-visited") {
		cfg.ExcludeVisited = cmd.Bool("exclude-visited")
	}
	if cmd.IsSet("seed") {
		cfg.Seed = int64(cmd.Int("seed"))
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.LogFormat = cmd.String("log-format")
	}

	return cfg, cfg.Validate()
}

func newLogger(cmd *cli.Command, cfg config.Config) (logger.Logger, error) {
	return logger.New(errWriter(cmd), logger.Format(cfg.LogFormat), logger.ParseLevel(cfg.LogLevel))
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
