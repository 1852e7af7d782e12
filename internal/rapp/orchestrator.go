// Package rapp wires every stage of a rebuild invocation together: load the
// previous run's branchpoints.txt, optionally invalidate realizations,
// parse and load the workflow file, build a traversal for the requested
// target, resolve it against the output directory, confirm with the user,
// and execute whatever needs to run.
package rapp

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/astshim"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/bitmask"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/branch"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/invalidate"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/prep"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rfs"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rlog"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rrun"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rui"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/traverse"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

var appLog = rlog.New("rapp")

var greenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

// RunOpts carries every CLI flag relevant to a single invocation, already
// parsed into the types the rest of the pipeline expects.
type RunOpts struct {
	Config     string
	Output     string
	Plan       string
	Tasks      []string
	Branch     invalidate.BranchArg
	Invalidate bool
	DryRun     bool
	Yes        bool
	Verbose    bool
}

// Run executes one rebuild invocation end to end, per opts.
func Run(opts RunOpts) error {
	fs := rfs.New(opts.Output, opts.DryRun)
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "Using output directory %q\n", opts.Output)
	}
	if err := fs.EnsureOutputDirExists(opts.Verbose); err != nil {
		return err
	}

	wf, err := workflow.New()
	if err != nil {
		return err
	}

	branchFile := fs.BranchpointsTxt()
	if err := loadBranchpoints(branchFile, wf); err != nil {
		return err
	}

	if opts.Invalidate {
		inv := invalidate.New(fs, opts.Yes, opts.DryRun, opts.Verbose)
		if err := inv.Invalidate(wf, opts.Tasks, opts.Branch); err != nil {
			return err
		}
		return nil
	}

	if err := parseWorkflow(opts.Config, wf, opts.Verbose); err != nil {
		return err
	}

	if !opts.DryRun {
		appLog.Info("writing branchpoints.txt file")
		if err := writeBranchpoints(branchFile, fs, wf); err != nil {
			return err
		}
	}

	plan, err := getTargetPlan(wf, opts)
	if err != nil {
		return err
	}

	trav, err := makeTraversal(wf, plan, opts.Verbose)
	if err != nil {
		return err
	}

	return runTraversal(fs, wf, trav, opts)
}

func loadBranchpoints(branchFile string, wf *workflow.Workflow) error {
	f, err := os.Open(branchFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "opening %q", branchFile)
	}
	defer f.Close()
	return branch.LoadBranchpointsFile(f, wf.Strings, wf.Strings.Baselines)
}

func writeBranchpoints(branchFile string, fs *rfs.Fs, wf *workflow.Workflow) error {
	var buf bytes.Buffer
	if err := branch.WriteBranchpointsFile(&buf, wf.Strings, wf.Strings.Baselines); err != nil {
		return err
	}
	return fs.WriteFile(branchFile, buf.String())
}

func parseWorkflow(configPath string, wf *workflow.Workflow, verbose bool) error {
	text, err := os.ReadFile(configPath)
	if err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "reading config file %q", configPath)
	}
	items, err := astshim.Parse(string(text))
	if err != nil {
		return rerrors.Wrap(rerrors.KindUnsupportedFeature, err, "parsing config file %q", configPath)
	}
	if err := wf.Load(items, filepath.Dir(configPath)); err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Created workflow with %d tasks and %d branchpoints.\n",
			wf.Strings.Tasks.Len(), wf.Strings.Branchpoints.Len())
	}
	return nil
}

func getTargetPlan(wf *workflow.Workflow, opts RunOpts) (workflow.Plan, error) {
	if opts.Plan != "" {
		id, err := wf.Strings.Idents.Intern(opts.Plan)
		if err != nil {
			return workflow.Plan{}, err
		}
		appLog.Debug("using plan specified on command line", "plan", opts.Plan)
		return wf.GetPlan(id)
	}
	if len(opts.Tasks) > 0 {
		appLog.Debug("no plan specified; running tasks specified on command line", "tasks", opts.Tasks)
		spec, err := opts.Branch.ToBranchSpec(wf.Strings)
		if err != nil {
			return workflow.Plan{}, err
		}
		return workflow.CreateAnonymousPlan(wf.Strings, opts.Tasks, spec)
	}
	return workflow.Plan{}, rerrors.New(rerrors.KindEmptyPlan, "nothing to run: no target specified with --plan or --task")
}

func makeTraversal(wf *workflow.Workflow, plan workflow.Plan, verbose bool) (*traverse.Traversal, error) {
	width, err := bitmask.ChooseWidth(wf.Strings.Branchpoints.Len())
	if err != nil {
		return nil, err
	}
	if verbose {
		fmt.Fprintln(os.Stderr, "Creating traversal...")
	}
	trav, err := traverse.Create(wf, plan, width, rlog.New("traverse"))
	if err != nil {
		return nil, err
	}
	appLog.Debug("traversal built", "inputs", len(trav.Inputs), "outputs_params", len(trav.OutputsParams))
	return trav, nil
}

func runTraversal(fs *rfs.Fs, wf *workflow.Workflow, trav *traverse.Traversal, opts RunOpts) error {
	wf.Strings.AllocForRun()

	// Resolving a traversal only reads the filesystem, but dry-run is
	// forced on anyway so any accidental mutation fails loudly instead of
	// silently touching disk before the user has confirmed anything.
	fs.SetDryRun(true)
	resolver := prep.NewTraversalResolver(len(trav.Nodes), fs, wf)
	actions, err := resolver.ResolveToActions(trav)
	if err != nil {
		return err
	}

	if !actions.HasTasksToRun() {
		fmt.Fprintln(os.Stderr, greenStyle.Render("No tasks to run; exiting."))
		return nil
	}

	fs.SetDryRun(opts.DryRun)

	preRunner := prep.NewPreRunner(fs, wf, opts.Verbose)
	if err := preRunner.PrintActions(actions); err != nil {
		return err
	}

	if opts.DryRun {
		return nil
	}
	proceed, err := rui.Confirm("Proceed?", opts.Yes)
	if err != nil {
		return err
	}
	if !proceed {
		return nil
	}

	tasks, err := preRunner.DoPreRunActions(actions)
	if err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "preparing output directory for workflow run")
	}

	fmt.Fprintf(os.Stderr, "\n%s.\n", greenStyle.Render("Workflow preparation complete"))
	fmt.Fprintf(os.Stderr, "\n%s.\n\n", lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Render("Starting workflow execution"))

	runner := rrun.New(fs, wf, opts.Verbose, true)
	return runner.Run(tasks)
}
