package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gaplace/internal/config"
	"gaplace/internal/model"
)

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage stored run configurations",
	}

	cmd.AddCommand(c.configNewCommand())
	cmd.AddCommand(c.configImportCommand())
	cmd.AddCommand(c.configListCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configUpdateCommand())
	cmd.AddCommand(c.configDeleteCommand())

	return cmd
}

func (c *CLI) configNewCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "new [NAME]",
		Short: "Store a config, from a file or the defaults",
		Long:  `New stores a config under NAME, or under a random name when NAME is omitted. An existing config of that name is replaced.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			var spec *model.RunSpec
			if file != "" {
				s, err := config.Load(file)
				if err != nil {
					return err
				}
				spec = &s
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			record, err := client.NewConfig(ctx, name, spec)
			if err != nil {
				return err
			}
			c.printSuccess("Stored config %s", StyleNumber.Render(record.Name))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "config file to start from")
	return cmd
}

func (c *CLI) configImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import PATH",
		Short: "Validate and store a config file under its base name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			record, err := client.ImportConfig(ctx, args[0])
			if err != nil {
				return err
			}
			c.printSuccess("Imported %s as %s", args[0], StyleNumber.Render(record.Name))
			return nil
		},
	}
}

func (c *CLI) configListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored configs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			names, err := client.ListConfigs(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				c.printInfo("No configs stored")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(c.out, name)
			}
			return nil
		},
	}
}

func (c *CLI) configShowCommand() *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print a stored config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			record, err := client.GetConfig(ctx, args[0])
			if err != nil {
				return err
			}
			if out != "" {
				if err := config.Write(out, record.Spec); err != nil {
					return err
				}
				c.printFile(out)
				return nil
			}
			data, err := config.Encode(record.Spec, config.Format(format))
			if err != nil {
				return err
			}
			_, err = c.out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", string(config.FormatYAML), "output format: json, yaml or toml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead, format chosen by extension")
	return cmd
}

func (c *CLI) configUpdateCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update NAME --file PATH",
		Short: "Replace a stored config with the contents of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			spec, err := config.Load(file)
			if err != nil {
				return err
			}

			client, err := c.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			if _, err := client.UpdateConfig(ctx, args[0], spec); err != nil {
				return err
			}
			c.printSuccess("Updated config %s", StyleNumber.Render(args[0]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "config file with the new contents")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *CLI) configDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.DeleteConfig(ctx, args[0]); err != nil {
				return err
			}
			c.printSuccess("Deleted config %s", args[0])
			return nil
		},
	}
}
