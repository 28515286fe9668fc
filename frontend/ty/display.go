package ty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cottand/canon/util"
)

func (t Apply) String() string {
	switch t.Ctor.Kind {
	case CtorTuple:
		if len(t.Params) == 1 {
			return "(" + t.Params[0].String() + ",)"
		}
		return "(" + util.JoinString(t.Params, ", ") + ")"
	case CtorRef:
		return "&" + t.param(0)
	case CtorSlice:
		return "[" + t.param(0) + "]"
	case CtorArray:
		return "[" + t.param(0) + "; _]"
	case CtorFnPtr:
		if len(t.Params) == 0 {
			return "fn() -> ?"
		}
		last := len(t.Params) - 1
		return fmt.Sprintf("fn(%s) -> %s", util.JoinString(t.Params[:last], ", "), t.Params[last])
	}
	if len(t.Params) == 0 {
		return t.Ctor.Name
	}
	return t.Ctor.Name + "<" + util.JoinString(t.Params, ", ") + ">"
}

func (t Apply) param(i int) string {
	if i < len(t.Params) {
		return t.Params[i].String()
	}
	return "?"
}

func (p ProjectionTy) String() string {
	ref := p.TraitRef()
	return fmt.Sprintf("<%s as %s>::%s", ref.selfString(), traitWithArgs(ref.Trait, ref.Substs), p.Assoc.Name)
}

func (t Param) String() string {
	if t.Name != "" {
		return "$" + t.Name
	}
	return "$" + strconv.FormatUint(uint64(t.Idx), 10)
}

func (t Bound) String() string {
	return "^" + strconv.FormatUint(uint64(t), 10)
}

func (t InferTy) String() string {
	id := strconv.FormatUint(uint64(t.ID), 10)
	switch t.Kind {
	case IntVar:
		return "?i" + id
	case FloatVar:
		return "?f" + id
	default:
		return "?" + id
	}
}

func (Unknown) String() string { return "{unknown}" }

func (r TraitRef) String() string {
	return r.selfString() + ": " + traitWithArgs(r.Trait, r.Substs)
}

func (r TraitRef) selfString() string {
	if self := r.Self(); self != nil {
		return self.String()
	}
	return "?"
}

func (p ProjectionPredicate) String() string {
	return fmt.Sprintf("%s == %s", p.Projection, p.Ty)
}

// traitWithArgs renders Trait<A, B> from the substs of a trait ref, skipping the self type
func traitWithArgs(trait TraitID, substs Substs) string {
	if len(substs) <= 1 {
		return string(trait)
	}
	return string(trait) + "<" + util.JoinString(substs[1:], ", ") + ">"
}

func (c Canonical[T]) String() string {
	return fmt.Sprintf("for<%d> %v", c.NumVars, c.Value)
}

func (e InEnvironment[T]) String() string {
	if e.Environment.Len() == 0 {
		return fmt.Sprint(e.Value)
	}
	var clauses []string
	for clause := range e.Environment.Clauses() {
		clauses = append(clauses, clause.String())
	}
	return fmt.Sprintf("%v where %s", e.Value, strings.Join(clauses, ", "))
}
