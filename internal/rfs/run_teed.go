package rfs

import (
	"io"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// RunTeed runs cmd, copying its stdout/stderr into both the process's own
// stdout/stderr and a stdout.txt/stderr.txt pair under artifactsDir, and
// reports whether the command exited successfully.
func (f *Fs) RunTeed(cmd *exec.Cmd, artifactsDir string, verbose bool) (bool, error) {
	if verbose {
		println("Creating stdout and stderr files...")
	}
	outPath := f.Stdout(artifactsDir)
	errPath := f.Stderr(artifactsDir)

	outFile, err := f.createFile(outPath)
	if err != nil {
		return false, rerrors.Wrap(rerrors.KindFilesystemIO, err, "creating stdout.txt file")
	}
	defer outFile.Close()

	errFile, err := f.createFile(errPath)
	if err != nil {
		return false, rerrors.Wrap(rerrors.KindFilesystemIO, err, "creating stderr.txt file")
	}
	defer errFile.Close()

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return false, rerrors.Wrap(rerrors.KindFilesystemIO, err, "attaching to child stdout")
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return false, rerrors.Wrap(rerrors.KindFilesystemIO, err, "attaching to child stderr")
	}

	if verbose {
		println("Running command...")
	}
	if err := cmd.Start(); err != nil {
		return false, rerrors.Wrap(rerrors.KindFilesystemIO, err, "starting command")
	}

	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(io.MultiWriter(outFile, os.Stdout), stdoutPipe)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(io.MultiWriter(errFile, os.Stderr), stderrPipe)
		return err
	})

	teeErr := g.Wait()
	waitErr := cmd.Wait()
	if teeErr != nil {
		return false, rerrors.Wrap(rerrors.KindFilesystemIO, teeErr, "teeing subprocess output")
	}

	if verbose {
		println("Process finished.")
	}
	return waitErr == nil, nil
}

// createFile creates path for writing, whitelist permitting.
func (f *Fs) createFile(path string) (*os.File, error) {
	if err := f.checkWhitelist(path); err != nil {
		return nil, err
	}
	return os.Create(path)
}
