package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gaplace/internal/config"
	"gaplace/internal/model"
	"gaplace/pkg/gaplace"
)

func (c *CLI) evaluateCommand() *cobra.Command {
	var configName, file string

	cmd := &cobra.Command{
		Use:   "evaluate GENES...",
		Short: "Score a hand-made layout",
		Long: `Evaluate scores one layout given as x,y,rot triples in component order,
for example "0,0,0 5,3,1".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			genome, err := parseGenome(args)
			if err != nil {
				return err
			}

			client, err := c.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			req := gaplace.EvaluateRequest{ConfigName: configName, Genome: genome}
			if file != "" {
				spec, err := config.Load(file)
				if err != nil {
					return err
				}
				req.Spec = &spec
			} else if configName == "" {
				spec := model.DefaultRunSpec()
				req.Spec = &spec
			}

			eval, err := client.Evaluate(ctx, req)
			if err != nil {
				return err
			}

			c.printKeyValue("Fitness", formatFitness(eval.Cost))
			c.printKeyValue("Wirelength", formatFitness(eval.Wirelength))
			c.printKeyValue("Overlaps", strconv.Itoa(eval.Overlaps))
			c.printKeyValue("Out of board", strconv.Itoa(eval.OutOfBoard))
			if eval.Feasible() {
				c.printSuccess("Layout is feasible")
			} else {
				c.printWarning("Layout is infeasible")
			}
			return c.printBoard(eval.Config, genome)
		},
	}

	cmd.Flags().StringVarP(&configName, "config", "c", "", "stored config name")
	cmd.Flags().StringVarP(&file, "file", "f", "", "config file (.json, .yaml, .toml)")
	cmd.MarkFlagsMutuallyExclusive("config", "file")
	return cmd
}

// parseGenome reads integers separated by commas or whitespace across all
// arguments.
func parseGenome(args []string) ([]int, error) {
	var genome []int
	for _, arg := range args {
		fields := strings.FieldsFunc(arg, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		for _, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("invalid gene %q: %w", f, err)
			}
			genome = append(genome, v)
		}
	}
	return genome, nil
}
