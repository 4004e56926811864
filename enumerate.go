package permrun

import "math"

// Selection filters suites, cases, and permutations. It is independent of
// windowing: listing and summary modes apply selection but never a window.
// The zero value selects everything.
type Selection struct {
	// Suite and Case match descriptor names exactly when non-empty.
	Suite string
	Case  string

	// Types admits suites and cases sharing at least one type bit. Zero
	// admits every type.
	Types TypeMask

	// Geometry matches the decomposed geometry's name when non-empty.
	Geometry string

	// Permutation pins one global index when PermutationSet is true.
	Permutation    int
	PermutationSet bool
}

// MatchSuite reports whether the suite passes suite-level selection.
func (s Selection) MatchSuite(suite *Suite) bool {
	if suite == nil {
		return false
	}
	if s.Suite != "" && suite.Name != s.Suite {
		return false
	}
	if s.Types != 0 && suite.Types&s.Types == 0 {
		return false
	}
	return true
}

// MatchCase reports whether the case passes case-level selection.
func (s Selection) MatchCase(kase *Case) bool {
	if kase == nil {
		return false
	}
	if s.Case != "" && kase.Name != s.Case {
		return false
	}
	if s.Types != 0 && kase.Types&s.Types == 0 {
		return false
	}
	return true
}

// MatchIndex applies the explicit index and geometry-name filters to one
// global permutation index. Indices passing MatchIndex are "selected".
func (s Selection) MatchIndex(catalog []Geometry, index int) bool {
	if s.PermutationSet && index != s.Permutation {
		return false
	}
	if s.Geometry != "" && len(catalog) > 0 {
		if catalog[index%len(catalog)].Name != s.Geometry {
			return false
		}
	}
	return true
}

// Window is the skip/count/every mechanism limiting which selected
// permutations execute. It operates over the raw selected sequence, before
// the case predicate runs. DefaultWindow admits everything.
type Window struct {
	Skip int
	// Count limits executions after Skip; negative means unlimited.
	Count int
	// Every executes one of each n selected permutations; values below 1
	// behave as 1.
	Every int
}

// DefaultWindow returns the window that admits every selected permutation.
func DefaultWindow() Window {
	return Window{Count: -1, Every: 1}
}

// Admits reports whether the selected-sequence position step falls inside
// the window.
func (w Window) Admits(step int) bool {
	count := w.Count
	if count < 0 {
		count = math.MaxInt
	}
	every := w.Every
	if every < 1 {
		every = 1
	}
	return step >= w.Skip && step-w.Skip < count && (step-w.Skip)%every == 0
}

// Decompose splits a global permutation index into its case permutation and
// geometry index over a catalog of size geometries.
func Decompose(index, geometries int) (casePerm, geometry int) {
	return index / geometries, index % geometries
}

// Enumerator walks the geometry cross case-permutation space, classifying
// each global index against a Selection and the case predicate. The Context
// must be the same one transitions were applied to; the enumerator installs
// permutation and geometry state before any predicate runs.
type Enumerator struct {
	Context   *Context
	Catalog   []Geometry
	Selection Selection
}

// VisitSelected calls fn for every selected global index of kase in
// ascending order. It applies only the explicit index and geometry filters;
// the case predicate is the caller's concern.
func (e *Enumerator) VisitSelected(kase *Case, fn func(index int) error) error {
	if kase == nil || len(e.Catalog) == 0 {
		return nil
	}
	for index := 0; index < len(e.Catalog)*kase.Permutations; index++ {
		if !e.Selection.MatchIndex(e.Catalog, index) {
			continue
		}
		if err := fn(index); err != nil {
			return err
		}
	}
	return nil
}

// install makes the decomposed permutation/geometry pair current so that
// resolution and predicates see the right configuration.
func (e *Enumerator) install(kase *Case, index int) (casePerm, geometry int) {
	casePerm, geometry = Decompose(index, len(e.Catalog))
	e.Context.SetPermutation(kase, casePerm)
	e.Context.SetGeometry(e.Catalog[geometry])
	return casePerm, geometry
}

// admit evaluates the case predicate for the installed permutation.
func (e *Enumerator) admit(kase *Case, casePerm int) (bool, error) {
	if kase.Filter == nil {
		return true, nil
	}
	return kase.Filter.Admit(e.Context, casePerm)
}

// CountCase reports the selected and admitted permutation counts for one
// case without executing anything. The case must already be installed via
// SetSuite/SetCase on the enumerator's context.
func (e *Enumerator) CountCase(kase *Case) (selected, admitted int, err error) {
	err = e.VisitSelected(kase, func(index int) error {
		selected++
		casePerm, _ := e.install(kase, index)
		ok, admitErr := e.admit(kase, casePerm)
		if admitErr != nil {
			return admitErr
		}
		if ok {
			admitted++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return selected, admitted, nil
}
