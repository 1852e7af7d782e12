package prep

import (
	"os"
	"os/exec"
	"strings"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

// RunVar pairs a declared var name with the run-string id it was resolved to.
type RunVar struct {
	Name  ident.IdentId
	Value ident.RunStrId
}

// TaskRunner holds everything needed to execute one task realization and
// verify its result.
type TaskRunner struct {
	// PrintID names this task for logging.
	PrintID ident.RunStrId
	// Cmd is the bash invocation ready to run, cwd and env already set.
	Cmd *exec.Cmd
	// RealizationDir is where stdout.txt, task.sh, and exit_code live.
	RealizationDir ident.RunStrId
	Inputs         []ident.RunStrId
	Outputs        []ident.RunStrId
	CopyOutputsTo  []ident.RunStrId
}

// TaskRunnerBuilder accumulates a task realization's resolved vars until
// enough is known to build its exec.Cmd and task.sh.
type TaskRunnerBuilder struct {
	RealizationID ident.RunStrId
	PrintID       ident.RunStrId
	ModuleID      *ident.RunStrId
	SymlinkID     ident.RunStrId
	LinkTargetID  ident.RunStrId
	Vars          workflow.TaskVars[RunVar]
	CopyOutputsTo []ident.RunStrId
	Code          ident.LiteralId
}

// IntoTaskRunner resolves every var's string and produces a TaskRunner ready
// to execute, writing the equivalent task.sh into buf as a side effect.
func (b *TaskRunnerBuilder) IntoTaskRunner(wf *workflow.Workflow, buf *strings.Builder) (*TaskRunner, error) {
	inputs := make([]ident.RunStrId, 0, len(b.Vars.Inputs))
	outputs := make([]ident.RunStrId, 0, len(b.Vars.Outputs))

	var cmdDir string
	var outputStrs []string
	if b.ModuleID != nil {
		dir, err := wf.Strings.Run.Get(*b.ModuleID)
		if err != nil {
			return nil, err
		}
		cmdDir = dir
		outputStrs = make([]string, 0, len(b.Vars.Outputs))
	} else {
		dir, err := wf.Strings.Run.Get(b.RealizationID)
		if err != nil {
			return nil, err
		}
		cmdDir = dir
	}

	script := NewTaskScriptBuilder(buf)
	script.WritePrefix()

	cmd := exec.Command("/usr/bin/env", "bash", "-xeuo", "pipefail")
	cmd.Dir = cmdDir
	env := os.Environ()

	addVar := func(v RunVar) (name, file string, err error) {
		name, err = wf.Strings.Idents.Get(v.Name)
		if err != nil {
			return "", "", err
		}
		file, err = wf.Strings.Run.Get(v.Value)
		if err != nil {
			return "", "", err
		}
		env = append(env, name+"="+file)
		script.WriteAssignmentLine(name, file)
		return name, file, nil
	}

	for _, v := range b.Vars.Inputs {
		inputs = append(inputs, v.Value)
		if _, _, err := addVar(v); err != nil {
			return nil, err
		}
	}
	for _, v := range b.Vars.Outputs {
		outputs = append(outputs, v.Value)
		_, file, err := addVar(v)
		if err != nil {
			return nil, err
		}
		if outputStrs != nil {
			outputStrs = append(outputStrs, file)
		}
	}
	for _, v := range b.Vars.Params {
		if _, _, err := addVar(v); err != nil {
			return nil, err
		}
	}

	copyOutputsTo := b.CopyOutputsTo

	code, err := wf.Strings.Literals.Get(b.Code)
	if err != nil {
		return nil, err
	}

	if outputStrs != nil {
		copyStrs := make([]string, 0, len(copyOutputsTo))
		for _, id := range copyOutputsTo {
			s, err := wf.Strings.Run.Get(id)
			if err != nil {
				return nil, err
			}
			copyStrs = append(copyStrs, s)
		}
		script.WriteModuleTaskSuffix(code, cmdDir, outputStrs, copyStrs)
	} else {
		script.WriteNormalTaskSuffix(code)
	}

	cmd.Args = append(cmd.Args, "-c", code)
	cmd.Env = env

	return &TaskRunner{
		PrintID:        b.PrintID,
		Cmd:            cmd,
		RealizationDir: b.RealizationID,
		Inputs:         inputs,
		Outputs:        outputs,
		CopyOutputsTo:  copyOutputsTo,
	}, nil
}
