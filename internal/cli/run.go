package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"gaplace/internal/config"
	"gaplace/internal/model"
	"gaplace/internal/placement"
	"gaplace/internal/render"
	"gaplace/internal/stats"
	"gaplace/pkg/gaplace"
)

// runOpts holds the flags of the run command. Zero values leave the config
// untouched.
type runOpts struct {
	configName  string
	file        string
	population  int
	generations int
	seed        int64
	workers     int
	selection   string
	tournament  int
	tui         bool
	csvPath     string
	svgPath     string
	showBoard   bool
}

func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a placement search and store the result",
		Long: `Run evolves placements for a stored config (--config), a config file
(--file) or the built-in default, then stores the run record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configName, "config", "c", "", "stored config name")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "config file (.json, .yaml, .toml)")
	cmd.Flags().IntVar(&opts.population, "population", 0, "override population size")
	cmd.Flags().IntVarP(&opts.generations, "generations", "g", 0, "override generation count")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "override random seed")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "override worker count")
	cmd.Flags().StringVar(&opts.selection, "selection", "", "override parent selection (tournament or elite)")
	cmd.Flags().IntVar(&opts.tournament, "tournament-size", 0, "override tournament size")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show live progress in an interactive view")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "write the fitness curve as CSV to this path")
	cmd.Flags().StringVar(&opts.svgPath, "svg", "", "write the best layout as SVG to this path")
	cmd.Flags().BoolVar(&opts.showBoard, "show-board", false, "print the best layout as a text board")
	cmd.MarkFlagsMutuallyExclusive("config", "file")

	return cmd
}

func (c *CLI) runSearch(cmd *cobra.Command, opts runOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	client, err := c.openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	req := gaplace.RunRequest{ConfigName: opts.configName, Workers: opts.workers}
	spec, err := c.runSpec(ctx, client, cmd, opts)
	if err != nil {
		return err
	}
	req.Spec = spec

	if opts.tui {
		req.Logger = log.New(io.Discard)
	}

	prog := newProgress(logger)
	var summary gaplace.RunSummary
	if opts.tui {
		summary, err = c.runWithTUI(ctx, client, req)
	} else {
		summary, err = client.Run(ctx, req)
	}
	if err != nil {
		return err
	}
	prog.done("Run finished")

	rec := summary.Record
	c.printSuccess("Run %s finished", StyleNumber.Render(rec.ID))
	c.printKeyValue("Best fitness", formatFitness(rec.BestFitness))
	c.printKeyValue("Evaluations", fmt.Sprint(rec.Evaluations))
	if n := len(rec.FitnessHistory); n > 0 {
		c.printKeyValue("Checkpoints", fmt.Sprintf("%d (final %s)", n, formatFitness(rec.FitnessHistory[n-1])))
	}

	if opts.csvPath != "" {
		if err := writeFitnessCSV(opts.csvPath, rec); err != nil {
			return err
		}
		c.printFile(opts.csvPath)
	}
	if opts.showBoard || opts.svgPath != "" {
		cfg, err := placement.NewConfig(rec.Spec)
		if err != nil {
			return err
		}
		if opts.showBoard {
			if err := c.printBoard(cfg, rec.BestGenome); err != nil {
				return err
			}
		}
		if opts.svgPath != "" {
			if err := writeSVG(ctx, opts.svgPath, cfg, rec.BestGenome); err != nil {
				return err
			}
			c.printFile(opts.svgPath)
		}
	}
	return nil
}

// runSpec returns the spec to run when it differs from a plain stored
// config: a config file, the default, or any overridden flag.
func (c *CLI) runSpec(ctx context.Context, client *gaplace.Client, cmd *cobra.Command, opts runOpts) (*model.RunSpec, error) {
	var spec model.RunSpec
	switch {
	case opts.file != "":
		s, err := config.Load(opts.file)
		if err != nil {
			return nil, err
		}
		spec = s
	case opts.configName != "":
		if !overridesSpec(cmd) {
			return nil, nil
		}
		record, err := client.GetConfig(ctx, opts.configName)
		if err != nil {
			return nil, err
		}
		spec = record.Spec
	default:
		spec = model.DefaultRunSpec()
	}

	flags := cmd.Flags()
	if flags.Changed("population") {
		spec.PopulationSize = opts.population
	}
	if flags.Changed("generations") {
		spec.Generations = opts.generations
		spec.CheckpointGenerations = trimCheckpoints(spec.CheckpointGenerations, opts.generations)
	}
	if flags.Changed("seed") {
		spec.Seed = opts.seed
	}
	if flags.Changed("selection") {
		spec.Selection = opts.selection
	}
	if flags.Changed("tournament-size") {
		spec.TournamentSize = opts.tournament
	}
	return &spec, nil
}

func overridesSpec(cmd *cobra.Command) bool {
	for _, name := range []string{"population", "generations", "seed", "selection", "tournament-size"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// trimCheckpoints drops checkpoints past the last generation.
func trimCheckpoints(gens []int, last int) []int {
	out := make([]int, 0, len(gens))
	for _, g := range gens {
		if g <= last {
			out = append(out, g)
		}
	}
	return out
}

func (c *CLI) printBoard(cfg *placement.Config, genome []int) error {
	board, err := render.Text(cfg, genome)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out)
	if c.isTerminal() {
		fmt.Fprint(c.out, board.Styled())
	} else {
		fmt.Fprint(c.out, board.String())
	}
	for _, w := range board.Warnings {
		c.printWarning("%s", w)
	}
	return nil
}

func writeFitnessCSV(path string, run model.RunRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := stats.WriteFitnessCSV(f, run); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeSVG(ctx context.Context, path string, cfg *placement.Config, genome []int) error {
	dot, err := render.DOT(cfg, genome)
	if err != nil {
		return err
	}
	svg, err := render.RenderSVG(ctx, dot)
	if err != nil {
		return err
	}
	return os.WriteFile(path, svg, 0o644)
}
