package workflow

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/astshim"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/branch"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// Plan is a named plan declared in a workflow file: a set of subplans, one
// per "reach ... via ..." line.
type Plan struct {
	Subplans []Subplan
}

// CreatePlan builds a Plan from every cross product a plan block declared.
func CreatePlan(strings *WorkflowStrings, crossProducts []astshim.CrossProduct) (Plan, error) {
	subplans := make([]Subplan, 0, len(crossProducts))
	for _, cp := range crossProducts {
		sp, err := CreateSubplan(strings, cp)
		if err != nil {
			return Plan{}, err
		}
		subplans = append(subplans, sp)
	}
	return Plan{Subplans: subplans}, nil
}

// Subplan is one "reach goal1, goal2 via (Bp1: v1 v2) * (Bp2: v3)" line: the
// tasks to realize, crossed with every combination of the named branch
// values.
type Subplan struct {
	Goals    []ident.TaskId
	Branches []*branch.BranchSpec
}

// CreateSubplan expands one cross product into the concrete set of
// BranchSpecs it denotes, by iteratively cloning the branch list once per
// additional value named for each branchpoint (a cross product over N
// branchpoints with v1..vN values each yields v1*v2*...*vN branches).
func CreateSubplan(strings *WorkflowStrings, cp astshim.CrossProduct) (Subplan, error) {
	goals := make([]ident.TaskId, 0, len(cp.Goals))
	for _, g := range cp.Goals {
		id, err := strings.Tasks.Intern(g)
		if err != nil {
			return Subplan{}, err
		}
		goals = append(goals, id)
	}

	branches := []*branch.BranchSpec{branch.NewBranchSpec()}
	for _, cpb := range cp.Branches {
		k, err := strings.AddBranchpoint(cpb.Branchpoint)
		if err != nil {
			return Subplan{}, err
		}
		if cpb.Branches.Glob {
			return Subplan{}, rerrors.New(rerrors.KindUnsupportedFeature, "plans with branch glob specifications")
		}
		vs := cpb.Branches.Values
		switch len(vs) {
		case 0:
			return Subplan{}, rerrors.New(rerrors.KindUnsupportedFeature, "branchpoint %q named in plan with no values", cpb.Branchpoint)
		case 1:
			v, err := strings.AddBranch(k, vs[0])
			if err != nil {
				return Subplan{}, err
			}
			for _, b := range branches {
				b.Insert(k, v)
			}
		default:
			v0, err := strings.AddBranch(k, vs[0])
			if err != nil {
				return Subplan{}, err
			}
			for _, b := range branches {
				b.Insert(k, v0)
			}
			newBranches := make([]*branch.BranchSpec, 0, len(branches)*(len(vs)-1))
			for _, vname := range vs[1:] {
				v, err := strings.AddBranch(k, vname)
				if err != nil {
					return Subplan{}, err
				}
				for _, b := range branches {
					nb := b.Clone()
					nb.Insert(k, v)
					newBranches = append(newBranches, nb)
				}
			}
			branches = append(branches, newBranches...)
		}
	}

	return Subplan{Goals: goals, Branches: branches}, nil
}

// CreateAnonymousPlan builds a single-subplan Plan for the -t/--task CLI
// flags directly, without a declared "plan { }" block: every named task is
// a goal, restricted to the one branch given on the command line. That
// branch may be entirely unspecified, in which case every branched value is
// resolved to its first compatible (baseline) alternative.
func CreateAnonymousPlan(strings *WorkflowStrings, tasks []string, b *branch.BranchSpec) (Plan, error) {
	goals := make([]ident.TaskId, 0, len(tasks))
	for _, t := range tasks {
		id, err := strings.Tasks.Intern(t)
		if err != nil {
			return Plan{}, err
		}
		goals = append(goals, id)
	}
	return Plan{Subplans: []Subplan{{Goals: goals, Branches: []*branch.BranchSpec{b}}}}, nil
}
