// Package rrun executes the TaskRunners prep resolves: for each one, it
// confirms every input exists, runs the task's command tee'd to stdout.txt
// and stderr.txt, copies module outputs back to the realization directory,
// confirms every expected output exists, and writes the exit_code file that
// marks the realization complete for future runs.
package rrun

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/prep"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rfs"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

var (
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

// Runner actually executes a schedule of TaskRunners, one at a time and in
// the dependency order prep already resolved them into -- parallel task
// execution is out of scope.
type Runner struct {
	fs        *rfs.Fs
	wf        *workflow.Workflow
	verbose   bool
	writeMeta bool
}

// New creates a Runner over fs and wf. writeMeta controls whether the
// optional meta.yaml sidecar is written alongside each completed
// realization.
func New(fs *rfs.Fs, wf *workflow.Workflow, verbose, writeMeta bool) *Runner {
	return &Runner{fs: fs, wf: wf, verbose: verbose, writeMeta: writeMeta}
}

// Run executes every TaskRunner in tasks in order, stopping at the first
// failure.
func (r *Runner) Run(tasks []*prep.TaskRunner) error {
	for _, task := range tasks {
		if err := r.runOne(task); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "%s\n\n", greenStyle.Render("Completed workflow."))
	return nil
}

func (r *Runner) runOne(task *prep.TaskRunner) error {
	realizationDir, err := r.wf.Strings.Run.Get(task.RealizationDir)
	if err != nil {
		return err
	}
	printStr, err := r.wf.Strings.Run.Get(task.PrintID)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s %s\nin %s\n", greenStyle.Render("RUN"), printStr, realizationDir)

	if r.verbose {
		fmt.Fprintln(os.Stderr, magentaStyle.Render("Checking that all inputs exist..."))
	}
	if err := r.checkFilesExist(task.Inputs); err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "checking for input files")
	}

	success, err := r.fs.RunTeed(task.Cmd, realizationDir, r.verbose)
	if err != nil {
		return err
	}
	if !success {
		return rerrors.New(rerrors.KindSubprocessFailed, "task %s failed", printStr)
	}

	if len(task.CopyOutputsTo) > 0 {
		if r.verbose {
			fmt.Fprintln(os.Stderr, magentaStyle.Render("Copying outputs from module back to task dir..."))
		}
		if err := r.copyModuleOutputs(task); err != nil {
			return rerrors.Wrap(rerrors.KindFilesystemIO, err, "copying module outputs to realization dir")
		}
	} else {
		if r.verbose {
			fmt.Fprintln(os.Stderr, magentaStyle.Render("Checking that all expected outputs exist..."))
		}
		if err := r.checkFilesExist(task.Outputs); err != nil {
			return rerrors.Wrap(rerrors.KindFilesystemIO, err, "checking for output files")
		}
	}

	fmt.Fprintf(os.Stderr, "%s %s. Writing exit_code file.\n\n", greenStyle.Render("COMPLETED"), printStr)
	if err := r.fs.WriteFile(r.fs.ExitCode(realizationDir), "0"); err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "writing exit_code file for successful task")
	}

	if r.writeMeta {
		if err := r.writeMetaFile(task, realizationDir); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) copyModuleOutputs(task *prep.TaskRunner) error {
	for i, fileID := range task.Outputs {
		file, err := r.wf.Strings.Run.Get(fileID)
		if err != nil {
			return err
		}
		copyToFile, err := r.wf.Strings.Run.Get(task.CopyOutputsTo[i])
		if err != nil {
			return err
		}
		if !r.fs.Exists(file) {
			return rerrors.New(rerrors.KindExpectedFileNotFound, "expected output file not found in module: %q", file)
		}
		if err := r.fs.CreateParentDir(copyToFile); err != nil {
			return err
		}
		if err := r.fs.Copy(file, copyToFile); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) checkFilesExist(fileIDs []ident.RunStrId) error {
	for _, id := range fileIDs {
		file, err := r.wf.Strings.Run.Get(id)
		if err != nil {
			return err
		}
		if !r.fs.Exists(file) {
			return rerrors.New(rerrors.KindExpectedFileNotFound, "expected file not found: %q", file)
		}
		if r.verbose {
			fmt.Fprintf(os.Stderr, " - %s\n", file)
		}
	}
	return nil
}

func (r *Runner) writeMetaFile(task *prep.TaskRunner, realizationDir string) error {
	printStr, err := r.wf.Strings.Run.Get(task.PrintID)
	if err != nil {
		return err
	}
	return r.fs.WriteMeta(realizationDir, rfs.Meta{Task: printStr})
}
