// Package cli implements the gaplacectl command-line interface.
//
// Commands run placement searches, manage stored configurations, list and
// export run records, and draw layouts as text boards or SVG. All commands
// accept --verbose (-v) for debug logging and --store/--data to choose where
// records live.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"gaplace/internal/storage"
	"gaplace/pkg/gaplace"
)

const (
	appName = "gaplacectl"

	defaultDataDir = ".gaplace"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var version = "dev"

// SetVersion sets the version shown by --version.
func SetVersion(v string) {
	version = v
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out       io.Writer
	storeKind string
	dataPath  string
}

// New creates a CLI that prints results to out and logs to logw.
func New(out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logw, level),
		out:    out,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Evolve component placements on a board",
		Long:          `gaplacectl searches for placements of rectangular components on a grid board that keep connected components close while avoiding overlaps and board edges.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.PersistentFlags().StringVar(&c.storeKind, "store", storage.DefaultStoreKind, "record store: memory, file or sqlite")
	root.PersistentFlags().StringVar(&c.dataPath, "data", defaultDataDir, "store directory (file) or database path (sqlite)")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.evaluateCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())

	return root
}

// openClient opens the store selected by the global flags.
func (c *CLI) openClient(ctx context.Context) (*gaplace.Client, error) {
	return gaplace.New(ctx, gaplace.Options{
		StoreKind: c.storeKind,
		StorePath: c.dataPath,
		Logger:    loggerFromContext(ctx),
	})
}

// isTerminal reports whether output goes to a character device, which
// decides between coloured and plain boards.
func (c *CLI) isTerminal() bool {
	f, ok := c.out.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
