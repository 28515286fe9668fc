package ty

import (
	"sort"

	"github.com/xtgo/set"
)

// inferTys sorts by kind, then ID
type inferTys []InferTy

func (s inferTys) Len() int      { return len(s) }
func (s inferTys) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s inferTys) Less(i, j int) bool {
	if s[i].Kind != s[j].Kind {
		return s[i].Kind < s[j].Kind
	}
	return s[i].ID < s[j].ID
}

// Vars returns the distinct inference variables occurring in t, ordered by kind then ID.
// It does not look through the unification table.
func Vars(ts ...Ty) []InferTy {
	var found inferTys
	for _, t := range ts {
		Fold(t, func(t Ty) Ty {
			if v, ok := t.(InferTy); ok {
				found = append(found, v)
			}
			return t
		})
	}
	sort.Sort(found)
	return found[:set.Uniq(found)]
}

// HasVars reports whether any inference variable occurs in t
func HasVars(t Ty) bool {
	has := false
	Fold(t, func(t Ty) Ty {
		if _, ok := t.(InferTy); ok {
			has = true
		}
		return t
	})
	return has
}
