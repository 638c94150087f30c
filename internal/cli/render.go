package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gaplace/internal/placement"
	"gaplace/internal/render"
)

const (
	formatText = "text"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

type renderOpts struct {
	format     string
	output     string
	checkpoint int
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatText, checkpoint: -1}

	cmd := &cobra.Command{
		Use:   "render [RUN]",
		Short: "Draw the best layout of a run as text, DOT or SVG",
		Long: `Render draws the best layout found by a run, or the layout recorded at
--checkpoint GEN. The latest run is used when RUN is omitted.`,
		Args: cobra.MaximumNArgs(1),
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
			genome := run.BestGenome
			if opts.checkpoint >= 0 {
				genome = nil
				for _, cp := range run.Checkpoints {
					if cp.Generation == opts.checkpoint {
						genome = cp.Genome
						break
					}
				}
				if genome == nil {
					return fmt.Errorf("run %s has no checkpoint at generation %d", shortID(run.ID), opts.checkpoint)
				}
			}

			cfg, err := placement.NewConfig(run.Spec)
			if err != nil {
				return err
			}

			var data []byte
			switch opts.format {
			case formatText:
				if opts.output == "" {
					return c.printBoard(cfg, genome)
				}
				board, err := render.Text(cfg, genome)
				if err != nil {
					return err
				}
				data = []byte(board.String())
			case formatDOT:
				dot, err := render.DOT(cfg, genome)
				if err != nil {
					return err
				}
				data = []byte(dot)
			case formatSVG:
				dot, err := render.DOT(cfg, genome)
				if err != nil {
					return err
				}
				if data, err = render.RenderSVG(ctx, dot); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want text, dot or svg)", opts.format)
			}

			if opts.output == "" {
				_, err = c.out.Write(data)
				return err
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return err
			}
			c.printFile(opts.output)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "output format: text, dot or svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&opts.checkpoint, "checkpoint", opts.checkpoint, "render the checkpoint of this generation instead of the best layout")
	return cmd
}
