// Package invalidate implements the -x/--invalidate CLI action: deleting
// previous realizations (or just their exit_code, so they're re-run but not
// re-created from scratch) so a future run redoes the matching work.
package invalidate

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/branch"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rfs"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rui"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

var (
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// Invalidator deletes realizations matching the CLI's -t/-b/-B targets.
type Invalidator struct {
	fs      *rfs.Fs
	yes     bool
	dryRun  bool
	verbose bool
}

// New creates an Invalidator. yes bypasses every confirmation prompt;
// dryRun skips every deletion (and the prompt that would precede it)
// entirely.
func New(fs *rfs.Fs, yes, dryRun, verbose bool) *Invalidator {
	return &Invalidator{fs: fs, yes: yes, dryRun: dryRun, verbose: verbose}
}

// Invalidate deletes realizations of tasks matching branchArg. wf is used
// only to intern/parse branch names for BranchArgSpecified; it is not
// otherwise mutated.
func (inv *Invalidator) Invalidate(wf *workflow.Workflow, tasks []string, branchArg BranchArg) error {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks specified; quitting.")
	}

	switch branchArg.Kind {
	case BranchArgEmpty:
		for _, task := range tasks {
			fmt.Fprintf(os.Stderr, "%s of task %s.\n",
				magentaStyle.Render("No branch specified; invalidating all realizations"), cyanStyle.Render(task))
			if err := inv.deleteDirIfExists(inv.fs.RealizationsDir(task)); err != nil {
				return err
			}
		}
	case BranchArgBaseline:
		for _, task := range tasks {
			fmt.Fprintf(os.Stderr, "%s of task %s.\n",
				magentaStyle.Render("Invalidating baseline realization"), cyanStyle.Render(task))
			if err := inv.deleteDirIfExists(inv.fs.BaselineRealization(task)); err != nil {
				return err
			}
		}
	case BranchArgSpecified:
		argBranch := branch.NewBranchSpec()
		for _, pair := range branchArg.Pairs {
			k, err := wf.Strings.InternBranchpoint(pair.Key)
			if err != nil {
				return err
			}
			v, err := wf.Strings.InternIdent(pair.Value)
			if err != nil {
				return err
			}
			argBranch.Insert(k, v)
		}
		for _, task := range tasks {
			if inv.verbose {
				fmt.Fprintf(os.Stderr, "%s in task %s.\n",
					magentaStyle.Render("Searching for realizations to invalidate"), cyanStyle.Render(task))
			}
			if err := inv.invalidateTaskBranch(task, wf, argBranch); err != nil {
				return err
			}
		}
	}
	return nil
}

func (inv *Invalidator) invalidateTaskBranch(task string, wf *workflow.Workflow, argBranch *branch.BranchSpec) error {
	realizations := inv.fs.RealizationsDir(task)
	foundAny := false

	isDir, err := inv.fs.IsDir(realizations)
	if err != nil {
		return err
	}
	if isDir {
		entries, err := inv.fs.ReadDir(realizations)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			entryBranch, err := wf.Strings.ParseCompactBranchString(entry.Name())
			if err != nil {
				return err
			}
			if !argBranch.IsExactMatch(entryBranch) {
				continue
			}
			foundAny = true
			entryPath := inv.fs.Realization(realizations, entry.Name())
			fmt.Fprintf(os.Stderr, "%s %s\n", magentaStyle.Render("Invalidating"), entryPath)

			exitCode := inv.fs.ExitCode(entryPath)
			if !inv.fs.Exists(exitCode) {
				fmt.Fprintln(os.Stderr, "Task is already invalid; not deleting.")
				continue
			}
			fmt.Fprintf(os.Stderr, "%s %s\n", redStyle.Render("Deleting"), exitCode)
			if inv.dryRun {
				continue
			}
			ok, err := rui.Confirm("Proceed?", inv.yes)
			if err != nil {
				return err
			}
			if ok {
				if err := inv.fs.DeleteFile(exitCode); err != nil {
					return err
				}
			}
		}
	}
	if !foundAny {
		fmt.Fprintln(os.Stderr, "No matching realizations to invalidate.")
	}
	return nil
}

func (inv *Invalidator) deleteDirIfExists(path string) error {
	fmt.Fprintf(os.Stderr, "%s %s.\n", redStyle.Render("Deleting"), path)
	if inv.dryRun {
		return nil
	}
	ok, err := rui.Confirm("Proceed?", inv.yes)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	isDir, err := inv.fs.IsDir(path)
	if err != nil {
		return err
	}
	if !isDir {
		fmt.Fprintf(os.Stderr, "%s does not exist; not deleting.\n", path)
		return nil
	}
	return inv.fs.DeleteDir(path)
}
