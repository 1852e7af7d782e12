package cli

import (
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/invalidate"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rapp"
)

// Flag values for the run subcommand.
var (
	runFlagConfig     string
	runFlagOutput     string
	runFlagPlan       string
	runFlagTasks      []string
	runFlagBranches   []string
	runFlagBaseline   bool
	runFlagInvalidate bool
	runFlagDryRun     bool
	runFlagYes        bool
)

// runCmd implements "rebuild run", the default build action: materialize
// every realization a target plan or task set needs, skipping anything
// already up to date.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workflow, materializing out-of-date realizations",
	Long: `Run parses a workflow file and brings its target up to date: one
realization per distinct combination of branch values a task actually
depends on, skipping any realization whose output already exists.

A target is either a named plan (-p), or one or more tasks (-t), optionally
restricted to specific branch values (-b) or the baseline branch alone (-B).

With -x/--invalidate, no tasks run; instead the given tasks' realizations
are invalidated so the next run re-runs them: with no branch restriction
every realization is deleted, with -B the baseline realization is deleted,
and with -b only the exit_code file of each matching realization is removed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		branchArg, err := invalidate.ParseBranchArg(runFlagBaseline, runFlagBranches)
		if err != nil {
			return err
		}

		return rapp.Run(rapp.RunOpts{
			Config:     runFlagConfig,
			Output:     runFlagOutput,
			Plan:       runFlagPlan,
			Tasks:      runFlagTasks,
			Branch:     branchArg,
			Invalidate: runFlagInvalidate,
			DryRun:     runFlagDryRun,
			Yes:        runFlagYes,
			Verbose:    flagVerbose > 0,
		})
	},
}

func init() {
	runCmd.Flags().StringVarP(&runFlagConfig, "config", "c", "rebuild.hr", "Workflow file to load")
	runCmd.Flags().StringVarP(&runFlagOutput, "output", "o", "output", "Output directory")
	runCmd.Flags().StringVarP(&runFlagPlan, "plan", "p", "", "Named plan to run")
	runCmd.Flags().StringSliceVarP(&runFlagTasks, "task", "t", nil, "Task to run (repeatable; ignored if --plan is given)")
	runCmd.Flags().StringSliceVarP(&runFlagBranches, "branch", "b", nil, "Restrict to a branch value, Branchpoint.value (repeatable, '+'-joined for multiple pins per flag)")
	runCmd.Flags().BoolVarP(&runFlagBaseline, "baseline", "B", false, "Restrict to the baseline branch only")
	runCmd.Flags().BoolVarP(&runFlagInvalidate, "invalidate", "x", false, "Invalidate matching realizations instead of running them")
	runCmd.Flags().BoolVarP(&runFlagDryRun, "dry-run", "n", false, "Print what would run without running it")
	runCmd.Flags().BoolVarP(&runFlagYes, "yes", "y", false, "Answer yes to all confirmation prompts")
	rootCmd.AddCommand(runCmd)
}
