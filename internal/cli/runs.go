package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	perrors "gaplace/internal/errors"
	"gaplace/internal/model"
	"gaplace/internal/placement"
	"gaplace/internal/stats"
	"gaplace/pkg/gaplace"
)

func (c *CLI) runsCommand() *cobra.Command {
	var (
		limit      int
		configName string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			runs, err := client.Runs(ctx, gaplace.RunsRequest{Limit: limit, ConfigName: configName})
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				c.printInfo("No runs stored")
				return nil
			}
			fmt.Fprintln(c.out, runsTable(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list")
	cmd.Flags().StringVarP(&configName, "config", "c", "", "only runs of this stored config")

	cmd.AddCommand(c.runsShowCommand())
	return cmd
}

func (c *CLI) runsShowCommand() *cobra.Command {
	var board bool

	cmd := &cobra.Command{
		Use:   "show [RUN]",
		Short: "Show one run; the latest when RUN is omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			run, err := resolveRun(ctx, client, args)
			if err != nil {
				return err
			}
			summary := stats.Summarize(run)

			fmt.Fprintln(c.out, StyleTitle.Render("Run "+run.ID))
			if run.ConfigName != "" {
				c.printKeyValue("Config", run.ConfigName)
			}
			c.printKeyValue("Created", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			c.printKeyValue("Board", fmt.Sprintf("%dx%d, %d components", run.Spec.BoardWidth, run.Spec.BoardHeight, len(run.Spec.Components)))
			c.printKeyValue("Population", strconv.Itoa(run.Spec.PopulationSize))
			c.printKeyValue("Generations", strconv.Itoa(run.Spec.Generations))
			c.printKeyValue("Seed", strconv.FormatInt(run.Spec.Seed, 10))
			c.printKeyValue("Evaluations", strconv.Itoa(run.Evaluations))
			c.printKeyValue("Best fitness", formatFitness(run.BestFitness))
			c.printKeyValue("Improvement", formatFitness(summary.Improvement))
			if len(run.Checkpoints) > 0 {
				fmt.Fprintln(c.out, checkpointTable(run.Checkpoints))
			}
			if !board {
				return nil
			}
			cfg, err := placement.NewConfig(run.Spec)
			if err != nil {
				return err
			}
			return c.printBoard(cfg, run.BestGenome)
		},
	}
	cmd.Flags().BoolVar(&board, "board", false, "print the best layout as a text board")
	return cmd
}

// resolveRun picks the run named by args[0], matching a unique id prefix,
// or the latest run when args is empty.
func resolveRun(ctx context.Context, client *gaplace.Client, args []string) (model.RunRecord, error) {
	if len(args) == 0 {
		return client.LatestRun(ctx)
	}
	id := args[0]
	run, err := client.GetRun(ctx, id)
	if err == nil || !perrors.Is(err, perrors.CodeNotFound) {
		return run, err
	}

	runs, err := client.Runs(ctx, gaplace.RunsRequest{Limit: math.MaxInt})
	if err != nil {
		return model.RunRecord{}, err
	}
	var matches []model.RunRecord
	for _, r := range runs {
		if strings.HasPrefix(r.ID, id) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return model.RunRecord{}, perrors.NotFound("run", id)
	case 1:
		return matches[0], nil
	default:
		return model.RunRecord{}, fmt.Errorf("run prefix %q matches %d runs", id, len(matches))
	}
}
