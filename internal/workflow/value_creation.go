package workflow

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/astshim"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/branch"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/value"
)

// CreateValue builds a value.Value from the left- and right-hand sides of
// one task spec or config assignment, interning whatever names rhs
// references along the way.
func (s *WorkflowStrings) CreateValue(lhs string, rhs astshim.Rhs) (value.Value, error) {
	if rhs.Kind == astshim.RhsBranchpoint {
		outerK, err := s.Branchpoints.Intern(rhs.BranchpointName)
		if err != nil {
			return nil, err
		}
		flattened := make([]value.BranchedAlt, 0, len(rhs.Alts))
		for _, alt := range rhs.Alts {
			outerV, err := s.Idents.Intern(alt.Name)
			if err != nil {
				return nil, err
			}
			s.Baselines.Add(outerK, outerV)

			nested, err := s.CreateValue(alt.Name, alt.Val)
			if err != nil {
				return nil, err
			}
			switch n := nested.(type) {
			case value.Branched:
				for _, nestedAlt := range n.Alts {
					nestedAlt.Branch.Insert(outerK, outerV)
					flattened = append(flattened, nestedAlt)
				}
			case value.Direct:
				b := branch.Simple(outerK, outerV)
				flattened = append(flattened, value.BranchedAlt{Branch: b, Val: n.Val})
			default:
				return nil, rerrors.New(rerrors.KindUnsupportedFeature, "unrecognized value kind %T while flattening branchpoint expression", nested)
			}
		}
		return value.Branched{Alts: flattened}, nil
	}

	direct, err := s.createDirect(lhs, rhs)
	if err != nil {
		return nil, err
	}
	return value.Direct{Val: direct}, nil
}

func (s *WorkflowStrings) createDirect(lhs string, rhs astshim.Rhs) (value.DirectValue, error) {
	switch rhs.Kind {
	case astshim.RhsGraftedVariable:
		name, err := s.Idents.Intern(rhs.Name)
		if err != nil {
			return nil, err
		}
		b, err := s.createBranch(rhs.Branch)
		if err != nil {
			return nil, err
		}
		return value.Graft{Base: value.Config{Name: name}, Branch: b}, nil

	case astshim.RhsGraftedTaskOutput:
		task, err := s.Tasks.Intern(rhs.Task)
		if err != nil {
			return nil, err
		}
		output, err := s.Idents.Intern(rhs.Output)
		if err != nil {
			return nil, err
		}
		b, err := s.createBranch(rhs.Branch)
		if err != nil {
			return nil, err
		}
		return value.Graft{Base: value.TaskOutput{Task: task, Output: output}, Branch: b}, nil

	case astshim.RhsShorthandGraftedTaskOutput:
		task, err := s.Tasks.Intern(rhs.Task)
		if err != nil {
			return nil, err
		}
		output, err := s.Idents.Intern(lhs)
		if err != nil {
			return nil, err
		}
		b, err := s.createBranch(rhs.Branch)
		if err != nil {
			return nil, err
		}
		return value.Graft{Base: value.TaskOutput{Task: task, Output: output}, Branch: b}, nil

	default:
		base, err := s.createBase(lhs, rhs)
		if err != nil {
			return nil, err
		}
		return value.Simple{Base: base}, nil
	}
}

func (s *WorkflowStrings) createBase(lhs string, rhs astshim.Rhs) (value.BaseValue, error) {
	switch rhs.Kind {
	case astshim.RhsUnbound:
		lit, err := s.Literals.Intern(lhs)
		if err != nil {
			return nil, err
		}
		return value.Literal{Lit: lit}, nil

	case astshim.RhsLiteral:
		lit, err := s.Literals.Intern(rhs.Literal)
		if err != nil {
			return nil, err
		}
		return value.Literal{Lit: lit}, nil

	case astshim.RhsVariable:
		name, err := s.Idents.Intern(rhs.Name)
		if err != nil {
			return nil, err
		}
		return value.Config{Name: name}, nil

	case astshim.RhsShorthandVariable:
		name, err := s.Idents.Intern(lhs)
		if err != nil {
			return nil, err
		}
		return value.Config{Name: name}, nil

	case astshim.RhsTaskOutput:
		task, err := s.Tasks.Intern(rhs.Task)
		if err != nil {
			return nil, err
		}
		output, err := s.Idents.Intern(rhs.Output)
		if err != nil {
			return nil, err
		}
		return value.TaskOutput{Task: task, Output: output}, nil

	case astshim.RhsShorthandTaskOutput:
		task, err := s.Tasks.Intern(rhs.Task)
		if err != nil {
			return nil, err
		}
		output, err := s.Idents.Intern(lhs)
		if err != nil {
			return nil, err
		}
		return value.TaskOutput{Task: task, Output: output}, nil

	case astshim.RhsInterp:
		lit, err := s.Literals.Intern(rhs.InterpText)
		if err != nil {
			return nil, err
		}
		vars := make([]ident.IdentId, 0, len(rhs.InterpVars))
		for _, v := range rhs.InterpVars {
			id, err := s.Idents.Intern(v)
			if err != nil {
				return nil, err
			}
			vars = append(vars, id)
		}
		return value.Interp{Template: lit, Vars: vars}, nil

	default:
		return nil, rerrors.New(rerrors.KindUnsupportedFeature, "grafted or branched values cannot be resolved to a base value")
	}
}

func (s *WorkflowStrings) createBranch(lit astshim.BranchSpecLit) (*branch.BranchSpec, error) {
	b := branch.NewBranchSpec()
	for _, pair := range lit {
		k, err := s.Branchpoints.Intern(pair.Branchpoint)
		if err != nil {
			return nil, err
		}
		v, err := s.Idents.Intern(pair.Value)
		if err != nil {
			return nil, err
		}
		b.Insert(k, v)
	}
	return b, nil
}
