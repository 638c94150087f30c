package cli

import (
	"github.com/spf13/cobra"

	"gaplace/internal/stats"
	"gaplace/pkg/gaplace"
)

func (c *CLI) exportCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export [RUN]",
		Short: "Write a run's JSON and CSV artifacts; the latest when RUN is omitted",
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
			summary, err := client.Export(ctx, gaplace.ExportRequest{RunID: run.ID, OutDir: outDir})
			if err != nil {
				return err
			}
			c.printSuccess("Exported run %s", StyleNumber.Render(summary.RunID))
			for _, name := range stats.ArtifactFiles {
				c.printDetail("%s", name)
			}
			c.printFile(summary.Directory)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "exports", "directory to export into")
	return cmd
}
