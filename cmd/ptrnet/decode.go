package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/ptrnet/internal/backend/cpu"
	"github.com/born-ml/ptrnet/internal/batchio"
	"github.com/born-ml/ptrnet/internal/pointer"
)

func decodeCmd() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode JSON batches and print the selected index sequences",
		ArgsUsage: "[batch.json ...]",
		Flags: append(modelFlags(),
			&cli.BoolFlag{Name: "scores", Usage: "include per-step log-scores in the output"},
			&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Value: 4, Usage: "batch files decoded concurrently"},
		),
		Action: runDecode,
	}
}

func runDecode(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	backend := cpu.New()
	model, err := pointer.NewModel(cfg.Model(), backend, pointer.WithLogger(log))
	if err != nil {
		return err
	}

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	results := make([]*batchio.Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, int(cmd.Int("jobs"))))

	for i, path := range paths {
		g.Go(func() error {
			req, err := readRequest(path)
			if err != nil {
				return err
			}

			x, lengths, err := batchio.Pad(req, cfg.InputDim, cfg.BatchFirst, backend)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			targets, err := batchio.TargetTensor(req, backend)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			runID := uuid.NewString()
			log.Info("decoding", "source", path, "run_id", runID, "batch", len(lengths))

			out, err := model.Forward(ctx, x, lengths)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			res := batchio.NewResult(runID, out, lengths, targets, cmd.Bool("scores"))
			res.Source = path
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := outWriter(cmd)
	for _, res := range results {
		if err := batchio.Encode(w, res); err != nil {
			return err
		}
	}
	return nil
}

func readRequest(path string) (*batchio.Request, error) {
	if path == "-" {
		return batchio.Decode(os.Stdin)
	}
	return batchio.ReadFile(path)
}
