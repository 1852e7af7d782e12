package prep

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rfs"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rlog"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

var preRunnerLog = rlog.New("prep")

var (
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

// deleteAction names one stale realization to remove before re-running it.
type deleteAction struct {
	realization ident.RunStrId
	print       ident.RunStrId
}

// Actions is the outcome of resolving a traversal: which realizations are
// already complete, which are stale and must be deleted, and which need a
// fresh TaskRunner built for them.
type Actions struct {
	Completed []ident.RunStrId
	toDelete  []deleteAction
	ToRun     []*TaskRunnerBuilder
	Modules   []ident.ModuleId
}

// NewActions creates an Actions sized for roughly len tasks.
func NewActions(len int) *Actions {
	return &Actions{
		Completed: make([]ident.RunStrId, 0, len),
		toDelete:  make([]deleteAction, 0, len),
		ToRun:     make([]*TaskRunnerBuilder, 0, len),
		Modules:   make([]ident.ModuleId, 0, 4),
	}
}

// HasTasksToRun reports whether any realization needs to run.
func (a *Actions) HasTasksToRun() bool { return len(a.ToRun) > 0 }

// AddDelete records a stale realization for deletion.
func (a *Actions) AddDelete(printID, realizationID ident.RunStrId) {
	a.toDelete = append(a.toDelete, deleteAction{realization: realizationID, print: printID})
}

// AddCompleted records a realization that already exists and needn't run.
func (a *Actions) AddCompleted(printID ident.RunStrId) {
	a.Completed = append(a.Completed, printID)
}

// AddRun queues a realization to be created and executed.
func (a *Actions) AddRun(builder *TaskRunnerBuilder) {
	a.ToRun = append(a.ToRun, builder)
}

// PreRunner cleans up stale run directories and creates fresh ones in
// preparation for executing a resolved traversal.
type PreRunner struct {
	fs      *rfs.Fs
	wf      *workflow.Workflow
	verbose bool
}

// NewPreRunner creates a PreRunner over fs and wf.
func NewPreRunner(fs *rfs.Fs, wf *workflow.Workflow, verbose bool) *PreRunner {
	return &PreRunner{fs: fs, wf: wf, verbose: verbose}
}

// PrintActions reports, to stderr, which tasks are already complete, which
// will be deleted and rebuilt, which are new, and (if verbose) which
// modules will be used.
func (p *PreRunner) PrintActions(actions *Actions) error {
	if len(actions.Completed) > 0 {
		fmt.Fprintf(os.Stderr, "\nThe following tasks are %s and will not run:\n", greenStyle.Render("already complete"))
		for _, id := range actions.Completed {
			s, err := p.wf.Strings.Run.Get(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s %s\n", greenStyle.Render("COMPLETED"), s)
		}
	}

	if len(actions.toDelete) > 0 {
		fmt.Fprintf(os.Stderr, "\nThe following tasks are %s and will be deleted:\n", redStyle.Render("incomplete or invalid"))
		for _, d := range actions.toDelete {
			s, err := p.wf.Strings.Run.Get(d.print)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s %s\n", redStyle.Render("DELETE"), s)
		}
	}

	if len(actions.ToRun) > 0 {
		fmt.Fprintf(os.Stderr, "\nThe following tasks %s:\n", greenStyle.Render("will run"))
		for _, runner := range actions.ToRun {
			s, err := p.wf.Strings.Run.Get(runner.PrintID)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s %s\n", greenStyle.Render("RUN"), s)
		}
	}

	if p.verbose && len(actions.Modules) > 0 {
		fmt.Fprintf(os.Stderr, "\nThe following %s will be used:\n", magentaStyle.Render("modules"))
		for _, module := range actions.Modules {
			name, err := p.wf.Strings.Modules.Get(module)
			if err != nil {
				return err
			}
			path, err := p.wf.GetModulePath(module)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s: %s\n", magentaStyle.Render(name), path)
		}
	}

	fmt.Fprintln(os.Stderr)
	return nil
}

// DoPreRunActions deletes stale realizations, creates fresh ones, writes
// their task.sh scripts, and returns the TaskRunners ready to execute.
func (p *PreRunner) DoPreRunActions(actions *Actions) ([]*TaskRunner, error) {
	if err := p.doDelete(actions); err != nil {
		return nil, err
	}
	return p.prepAndConvertToRunners(actions)
}

func (p *PreRunner) doDelete(actions *Actions) error {
	for _, d := range actions.toDelete {
		realization, err := p.wf.Strings.Run.Get(d.realization)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", redStyle.Render("Deleting"), realization)
		if err := p.fs.DeleteDir(realization); err != nil {
			return err
		}
	}
	return nil
}

func (p *PreRunner) prepAndConvertToRunners(actions *Actions) ([]*TaskRunner, error) {
	runners := make([]*TaskRunner, 0, len(actions.ToRun))
	var taskShContents strings.Builder
	taskShContents.Grow(1024)

	for _, builder := range actions.ToRun {
		realization, err := p.wf.Strings.Run.Get(builder.RealizationID)
		if err != nil {
			return nil, err
		}

		fmt.Fprintf(os.Stderr, "%s %s\n", greenStyle.Render("Creating"), realization)
		if err := p.fs.CreateDir(realization); err != nil {
			return nil, err
		}

		symlink, err := p.wf.Strings.Run.Get(builder.SymlinkID)
		if err != nil {
			return nil, err
		}
		linkTarget, err := p.wf.Strings.Run.Get(builder.LinkTargetID)
		if err != nil {
			return nil, err
		}

		if p.verbose {
			fmt.Fprintf(os.Stderr, "%s %s to %s\n", magentaStyle.Render("Symlinking"), symlink, linkTarget)
		}
		if p.fs.Exists(symlink) {
			preRunnerLog.Info("symlink already exists; deleting", "symlink", symlink)
			if err := p.fs.DeleteFile(symlink); err != nil {
				return nil, err
			}
		}
		if err := p.fs.Symlink(linkTarget, symlink); err != nil {
			return nil, err
		}

		runner, err := builder.IntoTaskRunner(p.wf, &taskShContents)
		if err != nil {
			return nil, err
		}

		if p.verbose {
			fmt.Fprintln(os.Stderr, magentaStyle.Render("Writing task.sh file."))
		}
		taskSh := p.fs.TaskSh(realization)
		if err := p.fs.WriteFile(taskSh, taskShContents.String()); err != nil {
			return nil, err
		}

		runners = append(runners, runner)
	}
	return runners, nil
}
