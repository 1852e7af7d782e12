package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/rlog"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose int
	flagQuiet   bool
	flagNoColor bool
)

// rootCmd is the base command for rebuild.
var rootCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "A branching build engine",
	Long: `rebuild is a branching build engine: it runs a workflow file's tasks,
materializing one realization per distinct combination of branch values a
task actually depends on, and skips any realization whose output already
exists and is up to date.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// RunE shows full help when invoked with no subcommand. Without RunE,
	// Cobra only prints the Long description (omitting Usage and Flags).
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("no-color") && os.Getenv("NO_COLOR") != "" {
			flagNoColor = true
		}

		rlog.Setup(flagVerbose, flagQuiet, os.Getenv("REBUILD_LOG_FORMAT") == "json")

		if flagNoColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "Increase log verbosity (stackable, e.g. -vv)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only show error-level log messages")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: NO_COLOR)")
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// NewRootCmd returns a new root command for use in external tools such as
// the shell completion generator. It copies rootCmd's Use/Short/Long and
// adds the same subcommand values already registered on rootCmd; rootCmd's
// persistent flags and PersistentPreRunE are not copied.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           rootCmd.Use,
		Short:         rootCmd.Short,
		Long:          rootCmd.Long,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Attach all registered subcommands from the global tree.
	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
