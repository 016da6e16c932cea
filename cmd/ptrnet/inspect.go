package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/born-ml/ptrnet/internal/backend/cpu"
	"github.com/born-ml/ptrnet/internal/pointer"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Show the model configuration and its parameters",
		Flags: modelFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			model, err := pointer.NewModel(cfg.Model(), cpu.New())
			if err != nil {
				return err
			}

			w := outWriter(cmd)
			m := cfg.Model()

			settings := tablewriter.NewWriter(w)
			settings.SetAlignment(tablewriter.ALIGN_LEFT)
			settings.SetBorder(false)
			settings.AppendBulk([][]string{
				{"input_dim", strconv.Itoa(m.InputDim)},
				{"embedding_dim", strconv.Itoa(m.EmbeddingDim)},
				{"hidden_size", strconv.Itoa(m.HiddenSize)},
				{"num_layers", strconv.Itoa(m.NumLayers)},
				{"bidirectional", strconv.FormatBool(m.Bidirectional)},
				{"batch_first", strconv.FormatBool(m.BatchFirst)},
				{"exclude_visited", strconv.FormatBool(m.ExcludeVisited)},
			})
			settings.Render()
			fmt.Fprintln(w)

			sd := model.StateDict()
			names := make([]string, 0, len(sd))
			for name := range sd {
				names = append(names, name)
			}
			slices.Sort(names)

			params := tablewriter.NewWriter(w)
			params.SetHeader([]string{"PARAMETER", "SHAPE", "COUNT"})
			params.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			params.SetAlignment(tablewriter.ALIGN_LEFT)
			for _, name := range names {
				raw := sd[name]
				dims := make([]string, len(raw.Shape()))
				for i, d := range raw.Shape() {
					dims[i] = strconv.Itoa(d)
				}
				params.Append([]string{name, "[" + strings.Join(dims, ", ") + "]", strconv.Itoa(raw.NumElements())})
			}
			params.SetFooter([]string{"", "TOTAL", strconv.Itoa(model.NumParameters())})
			params.Render()
			return nil
		},
	}
}
