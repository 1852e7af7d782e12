package workflow

import (
	"os"
	"path/filepath"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/astshim"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/branch"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/idvec"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/value"
)

// SizeHints collects the largest input/output/param/var counts seen across
// every task loaded, for later collections (traversal nodes, real-value
// arenas) to preallocate against instead of growing one element at a time.
type SizeHints struct {
	MaxInputs  int
	MaxOutputs int
	MaxParams  int
	MaxVars    int
}

// namedPlan pairs a plan's interned name with its definition. A plain slice
// is used instead of an IdVec because plan names are assigned from the
// shared idents table (which also holds every branch value name), so an
// IdVec indexed by IdentId would be extremely sparse.
type namedPlan struct {
	name ident.IdentId
	plan Plan
}

// Workflow holds everything parsed from a workflow file, in a form a
// traversal can walk to decide what to build.
type Workflow struct {
	Strings *WorkflowStrings

	config map[ident.IdentId]ident.ValueId
	tasks  *idvec.IdVec[ident.TaskId, Task]
	plans  []namedPlan
	modules *idvec.IdVec[ident.ModuleId, ident.LiteralId]
	values  *idvec.IdVec[ident.ValueId, value.Value]
	sizes   SizeHints
}

// New creates an empty Workflow ready to have Load called on it.
func New() (*Workflow, error) {
	strings, err := NewWorkflowStrings()
	if err != nil {
		return nil, err
	}
	return &Workflow{
		Strings: strings,
		config:  make(map[ident.IdentId]ident.ValueId, 64),
		tasks:   idvec.New[ident.TaskId, Task](16),
		plans:   make([]namedPlan, 0, 8),
		modules: idvec.New[ident.ModuleId, ident.LiteralId](8),
		values:  idvec.New[ident.ValueId, value.Value](128),
	}, nil
}

// Sizes returns the collection-size hints accumulated while loading.
func (w *Workflow) Sizes() SizeHints { return w.sizes }

// Load loads every item parsed from one workflow file into this Workflow.
// configDir is the directory the workflow file lives in, used to resolve
// relative module paths.
func (w *Workflow) Load(items []astshim.Item, configDir string) error {
	for _, item := range items {
		var err error
		switch item.Kind {
		case astshim.ItemGlobalConfig:
			err = w.addConfig(item.Config)
		case astshim.ItemTask:
			err = w.addTask(item.Task)
		case astshim.ItemPlan:
			err = w.addPlan(item.PlanVal)
		case astshim.ItemModule:
			err = w.addModule(item.ModuleName, item.ModulePath, configDir)
		case astshim.ItemImport:
			// Imports are ignored: the imported file is neither parsed
			// nor loaded.
		default:
			err = rerrors.New(rerrors.KindUnsupportedFeature, "unrecognized top-level item kind %v", item.Kind)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// GetModulePath returns the filesystem path string for the given module.
func (w *Workflow) GetModulePath(module ident.ModuleId) (string, error) {
	litID, ok := w.modules.Get(module)
	if !ok {
		return "", rerrors.New(rerrors.KindModuleNotFound, "module %d not found", module)
	}
	return w.Strings.Literals.Get(litID)
}

// GetTask returns the task declared under the given id. Fails if the id was
// only ever referenced (as an output producer) but never declared.
func (w *Workflow) GetTask(task ident.TaskId) (Task, error) {
	t, ok := w.tasks.Get(task)
	if !ok || !t.Exists {
		return Task{}, rerrors.New(rerrors.KindTaskNotFound, "task %d not found", task)
	}
	return t, nil
}

// GetValue returns the abstract value stored under the given id.
func (w *Workflow) GetValue(val ident.ValueId) (value.Value, error) {
	v, ok := w.values.Get(val)
	if !ok {
		return nil, rerrors.New(rerrors.KindValueNotFound, "value %d not found", val)
	}
	return v, nil
}

// GetConfigValue returns the abstract value a config name was bound to.
// ConfigValue wraps it to implement value.ConfigLookup.
func (w *Workflow) GetConfigValue(name ident.IdentId) (value.Value, error) {
	vid, ok := w.config[name]
	if !ok {
		return nil, rerrors.New(rerrors.KindUndefinedConfigValue, "config value %q is not defined", mustName(w, name))
	}
	return w.GetValue(vid)
}

// ConfigValue implements value.ConfigLookup.
func (w *Workflow) ConfigValue(name ident.IdentId) (value.Value, error) {
	return w.GetConfigValue(name)
}

func mustName(w *Workflow, id ident.IdentId) string {
	name, err := w.Strings.Idents.Get(id)
	if err != nil {
		return "?"
	}
	return name
}

// GetPlan returns the plan defined under the given name.
func (w *Workflow) GetPlan(planName ident.IdentId) (Plan, error) {
	for _, np := range w.plans {
		if np.name == planName {
			return np.plan, nil
		}
	}
	return Plan{}, rerrors.New(rerrors.KindPlanNotFound, "plan %q not found in config file", mustName(w, planName))
}

// ParseCompactBranchStr parses a compact branch string into a BranchSpec.
func (w *Workflow) ParseCompactBranchStr(s string) (*branch.BranchSpec, error) {
	return w.Strings.ParseCompactBranchString(s)
}

func (w *Workflow) addConfig(assignments []astshim.ConfigAssignment) error {
	for _, a := range assignments {
		v, err := w.Strings.CreateValue(a.Name, a.Rhs)
		if err != nil {
			return err
		}
		vid := w.values.Push(v)
		k, err := w.Strings.Idents.Intern(a.Name)
		if err != nil {
			return err
		}
		w.config[k] = vid
	}
	return nil
}

func (w *Workflow) addTask(block astshim.TasklikeBlock) error {
	nameID, err := w.Strings.Tasks.Intern(block.Name)
	if err != nil {
		return err
	}
	task, err := CreateTask(block, w.Strings, w.values)
	if err != nil {
		return err
	}
	w.updateSizes(task)
	// A task with the same name as one already loaded simply overwrites it:
	// there's no cheap way to distinguish "redefinition" from "this name was
	// only ever referenced as an output producer so far" without a second
	// lookup table, and the parser-level workflow file format doesn't
	// protect against duplicate task names today.
	w.tasks.GrowTo(nameID)
	w.tasks.Set(nameID, task)
	return nil
}

func (w *Workflow) updateSizes(t Task) {
	numInputs := len(t.Vars.Inputs)
	numOutputs := len(t.Vars.Outputs)
	numParams := len(t.Vars.Params)
	numVars := numInputs + numOutputs + numParams
	w.sizes.MaxInputs = max(w.sizes.MaxInputs, numInputs)
	w.sizes.MaxOutputs = max(w.sizes.MaxOutputs, numOutputs)
	w.sizes.MaxParams = max(w.sizes.MaxParams, numParams)
	w.sizes.MaxVars = max(w.sizes.MaxVars, numVars)
}

func (w *Workflow) addPlan(p astshim.Plan) error {
	planID, err := w.Strings.Idents.Intern(p.Name)
	if err != nil {
		return err
	}
	if len(p.CrossProducts) == 0 {
		return rerrors.New(rerrors.KindEmptyPlan, "plan %q is empty", p.Name)
	}
	plan, err := CreatePlan(w.Strings, p.CrossProducts)
	if err != nil {
		return rerrors.Wrap(rerrors.KindUnsupportedFeature, err, "while creating plan %q", p.Name)
	}
	w.plans = append(w.plans, namedPlan{name: planID, plan: plan})
	return nil
}

func (w *Workflow) addModule(name string, path astshim.Rhs, configDir string) error {
	id, err := w.Strings.Modules.Intern(name)
	if err != nil {
		return err
	}
	if path.Kind != astshim.RhsLiteral {
		return rerrors.New(rerrors.KindUnsupportedFeature, "module values other than literal strings (in module %q)", name)
	}

	p := path.Literal
	if !filepath.IsAbs(p) {
		p = filepath.Join(configDir, p)
	}
	if resolved, err := filepath.Abs(p); err == nil {
		if _, statErr := os.Stat(resolved); statErr == nil {
			p = resolved
		}
	}

	litID, err := w.Strings.Literals.Intern(p)
	if err != nil {
		return err
	}
	w.modules.GrowTo(id)
	w.modules.Set(id, litID)
	return nil
}
