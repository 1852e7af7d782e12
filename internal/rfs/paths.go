package rfs

import "path/filepath"

// Common path shapes under the output directory. Each builder documents its
// call-site convention: some take the output prefix implicitly, some expect
// the caller to have already built a base path and pass it in.

// TaskBase returns $OUTPUT/task_name.
func (f *Fs) TaskBase(task string) string {
	return filepath.Join(f.outputPrefix, task)
}

// RealizationsDir returns $OUTPUT/task_name/realizations.
func (f *Fs) RealizationsDir(task string) string {
	return filepath.Join(f.outputPrefix, task, "realizations")
}

// RealizationRelative returns realizations/Branchpt.branch+Branchpt.branch.
func (f *Fs) RealizationRelative(compactBranch string) string {
	return filepath.Join("realizations", compactBranch)
}

// Realization returns base/realizationRelative.
func (f *Fs) Realization(base, realizationRelative string) string {
	return filepath.Join(base, realizationRelative)
}

// LinkSrc returns base/full_branch -- the convenience symlink under the
// task's own directory (as opposed to its realizations subdirectory) that
// points at one specific realization.
func (f *Fs) LinkSrc(base, fullBranch string) string {
	return filepath.Join(base, fullBranch)
}

// BranchpointsTxt returns $OUTPUT/branchpoints.txt.
func (f *Fs) BranchpointsTxt() string {
	return filepath.Join(f.outputPrefix, "branchpoints.txt")
}

// ExitCode returns realization/exit_code.
func (f *Fs) ExitCode(realization string) string {
	return filepath.Join(realization, "exit_code")
}

// Stdout returns realization/stdout.txt.
func (f *Fs) Stdout(realization string) string {
	return filepath.Join(realization, "stdout.txt")
}

// Stderr returns realization/stderr.txt.
func (f *Fs) Stderr(realization string) string {
	return filepath.Join(realization, "stderr.txt")
}

// TaskSh returns realization/task.sh.
func (f *Fs) TaskSh(realization string) string {
	return filepath.Join(realization, "task.sh")
}

// BaselineRealization returns $OUTPUT/task_name/realizations/Baseline.baseline.
func (f *Fs) BaselineRealization(task string) string {
	return filepath.Join(f.outputPrefix, task, "realizations", "Baseline.baseline")
}

// OutputPrefix returns the (now-canonicalized, after EnsureOutputDirExists)
// output directory path.
func (f *Fs) OutputPrefix() string { return f.outputPrefix }
