package permrun

// Slot optionally maps a key to an index inside a layer's value array. The
// zero Slot means "no mapping": the layer contributes nothing for that key.
type Slot struct {
	Index int
	Valid bool
}

// SlotAt builds a valid slot pointing at index i.
func SlotAt(i int) Slot {
	return Slot{Index: i, Valid: true}
}

// Suite groups cases that share one suite-local define namespace.
// Descriptors are immutable once handed to a driver or enumerator.
type Suite struct {
	ID   string
	Name string

	Types TypeMask

	// DefineNames fixes the suite-local namespace: DefineKey(i) resolves
	// through the name at index i.
	DefineNames []string

	Cases []*Case
}

// DefineName returns the name behind a suite-local key.
func (s *Suite) DefineName(key DefineKey) string {
	if s == nil || int(key) < 0 || int(key) >= len(s.DefineNames) {
		return "UNKNOWN"
	}
	return s.DefineNames[key]
}

// Case describes one test body and the permutation table it runs under.
type Case struct {
	ID   string
	Name string
	Path string

	Types TypeMask

	// Permutations is the per-case permutation count P. The global index
	// space for the case is [0, G*P) where G is the catalog size.
	Permutations int

	// DefineMap maps each suite-local key to a slot in a permutation's
	// value row. Unmapped entries leave the key to weaker layers. May be
	// nil when the case supplies no defines.
	DefineMap []Slot

	// Defines is the optional P-row value table; row i is installed when
	// permutation i of this case is active.
	Defines [][]Value

	// Filter optionally rejects individual case permutations. Rejection is
	// reported as skipped, never as an error.
	Filter Predicate

	// Run is the externally supplied test body.
	Run RunFunc
}

// RunFunc is a case entry point. A non-nil error aborts the whole run; the
// driver provides no cross-permutation isolation.
type RunFunc func(run *Run) error

// Run carries everything an entry point may touch while executing one
// permutation.
type Run struct {
	// Context resolves defines for the active permutation.
	Context *Context

	// Fixture is the simulated storage device built for this permutation.
	Fixture Fixture

	// Permutation is the case-local permutation number.
	Permutation int

	// Index is the global permutation index the driver decomposed.
	Index int
}
