package value

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/bitmask"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/branch"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// ConfigLookup resolves a by-name config reference to the Value it was
// declared with. The workflow's Config arena implements this.
type ConfigLookup interface {
	ConfigValue(name ident.IdentId) (Value, error)
}

// Resolver walks an abstract Value tree down to one concrete RealValue for
// a specific branch, accumulating the branch bits that walk implied (a
// branched alternative adds bits, a graft removes them). Width must match
// the workflow's chosen bitmask width so the returned BranchMasks can be
// folded directly into a traversal node's running mask.
type Resolver struct {
	Width bitmask.Width
}

// Resolve resolves value for branch br using builder to construct the
// concrete RealValue.
func (r *Resolver) Resolve(value Value, br *branch.BranchSpec, wf ConfigLookup, builder Builder) (RealValue, BranchMasks, error) {
	switch v := value.(type) {
	case Direct:
		return r.resolveDirect(v.Val, br, wf, builder)
	case Branched:
		for _, alt := range v.Alts {
			if !alt.Branch.IsCompatible(br) {
				continue
			}
			realVal, masks, err := r.resolveDirect(alt.Val, br, wf, builder)
			if err != nil {
				return nil, BranchMasks{}, err
			}
			altMask, err := alt.Branch.AsMask(r.Width)
			if err != nil {
				return nil, BranchMasks{}, err
			}
			masks.Add.Union(altMask)
			realVal.UpdateBranch(alt.Branch)
			return realVal, masks, nil
		}
		return nil, BranchMasks{}, rerrors.New(rerrors.KindBranchNotFound, "no branched alternative is compatible with the requested branch")
	default:
		return nil, BranchMasks{}, rerrors.New(rerrors.KindUnsupportedFeature, "unrecognized value kind %T", value)
	}
}

func (r *Resolver) resolveDirect(dv DirectValue, br *branch.BranchSpec, wf ConfigLookup, builder Builder) (RealValue, BranchMasks, error) {
	switch d := dv.(type) {
	case Simple:
		return r.resolveBase(d.Base, br, wf, builder)
	case Graft:
		newBranch := br.Clone()
		newBranch.InsertAll(d.Branch)
		realVal, masks, err := r.resolveBase(d.Base, newBranch, wf, builder)
		if err != nil {
			return nil, BranchMasks{}, err
		}
		for i, v := range d.Branch.Raw() {
			if v != ident.NullIdent {
				masks.Rm.Set(i, true)
			}
		}
		return realVal, masks, nil
	default:
		return nil, BranchMasks{}, rerrors.New(rerrors.KindUnsupportedFeature, "unrecognized direct value kind %T", dv)
	}
}

func (r *Resolver) resolveBase(bv BaseValue, br *branch.BranchSpec, wf ConfigLookup, builder Builder) (RealValue, BranchMasks, error) {
	switch b := bv.(type) {
	case Literal:
		rv, err := builder.Literal(b.Lit)
		return rv, NewBranchMasks(r.Width), err
	case TaskOutput:
		rv, err := builder.Task(b.Task, b.Output, br)
		return rv, NewBranchMasks(r.Width), err
	case Config:
		return r.getConfigValAndResolve(b.Name, br, wf, builder)
	case Interp:
		masks := NewBranchMasks(r.Width)
		vars := make([]InterpVar, 0, len(b.Vars))
		for _, varIdent := range b.Vars {
			val, m, err := r.getConfigValAndResolve(varIdent, br, wf, builder)
			if err != nil {
				return nil, BranchMasks{}, err
			}
			litID, err := val.LiteralID()
			if err != nil {
				return nil, BranchMasks{}, err
			}
			vars = append(vars, InterpVar{Ident: varIdent, Lit: litID})
			masks.MergeFrom(m)
		}
		rv, err := builder.Interp(b.Template, vars)
		return rv, masks, err
	default:
		return nil, BranchMasks{}, rerrors.New(rerrors.KindUnsupportedFeature, "unrecognized base value kind %T", bv)
	}
}

func (r *Resolver) getConfigValAndResolve(name ident.IdentId, br *branch.BranchSpec, wf ConfigLookup, builder Builder) (RealValue, BranchMasks, error) {
	val, err := wf.ConfigValue(name)
	if err != nil {
		return nil, BranchMasks{}, err
	}
	return r.Resolve(val, br, wf, builder)
}
