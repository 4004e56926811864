package permrun

// Layer order, strongest to weakest. Resolution returns the first tier whose
// mapping for the key is valid.
const (
	layerOverride = iota
	layerPermutation
	layerGeometry
	layerDefault

	layerCount
)

var layerNames = [layerCount]string{
	layerOverride:    "override",
	layerPermutation: "permutation",
	layerGeometry:    "geometry",
	layerDefault:     "default",
}

// layer is one precedence tier: a dense value array plus an optional
// key-to-slot mapping per namespace. A tier missing either half contributes
// nothing to that namespace.
type layer struct {
	values []Value
	premap []Slot // predefine namespace
	defmap []Slot // suite-local namespace
}

// Context owns the resolution state for one logical permutation stream. It
// is not safe for concurrent use; concurrent workers need a Context each.
//
// Transition methods fully recompute the affected mappings rather than
// patching them, so stale state from a previous suite or case can never leak
// into a lookup. The backing arrays are reused across transitions.
type Context struct {
	suite     *Suite
	overrides []Override
	layers    [layerCount]layer
}

// NewContext builds a Context with only the Default layer populated.
func NewContext() *Context {
	c := &Context{}
	def := &c.layers[layerDefault]
	def.values = append([]Value(nil), defaultValues[:]...)
	def.premap = make([]Slot, predefineCount)
	for i := range def.premap {
		def.premap[i] = SlotAt(i)
	}
	return c
}

// resetSlots clears and resizes a slot mapping, reusing capacity when it can.
func resetSlots(slots []Slot, n int) []Slot {
	if cap(slots) < n {
		return make([]Slot, n)
	}
	slots = slots[:n]
	for i := range slots {
		slots[i] = Slot{}
	}
	return slots
}

// SetOverrides installs the user-supplied override pairs as the strongest
// layer and maps them into the predefine namespace by exact name match. The
// suite-local mapping is recomputed as well when a suite is active.
func (c *Context) SetOverrides(overrides []Override) {
	c.overrides = append(c.overrides[:0], overrides...)
	tier := &c.layers[layerOverride]
	if len(c.overrides) == 0 {
		tier.values = nil
		tier.premap = nil
		tier.defmap = nil
		return
	}

	tier.values = tier.values[:0]
	for _, o := range c.overrides {
		tier.values = append(tier.values, o.Value)
	}
	tier.premap = resetSlots(tier.premap, int(predefineCount))
	for i, o := range c.overrides {
		if key, ok := LookupPredefine(o.Name); ok {
			tier.premap[key] = SlotAt(i)
		}
	}
	c.remapOverrideDefines()
}

// remapOverrideDefines rebuilds the Override layer's suite-local mapping
// against the active suite's define names. Suite-local indices are
// suite-specific, so this repeats on every suite change.
func (c *Context) remapOverrideDefines() {
	tier := &c.layers[layerOverride]
	if c.suite == nil || len(c.overrides) == 0 {
		tier.defmap = nil
		return
	}
	tier.defmap = resetSlots(tier.defmap, len(c.suite.DefineNames))
	for i, o := range c.overrides {
		for j, name := range c.suite.DefineNames {
			if o.Name == name {
				tier.defmap[j] = SlotAt(i)
			}
		}
	}
}

// SetSuite activates a suite, remapping overrides into its namespace and
// invalidating any case-dependent state until SetCase runs.
func (c *Context) SetSuite(suite *Suite) {
	c.suite = suite
	c.remapOverrideDefines()
	tier := &c.layers[layerPermutation]
	tier.values = nil
	tier.premap = nil
	tier.defmap = nil
}

// Suite returns the active suite, if any.
func (c *Context) Suite() *Suite {
	return c.suite
}

// SetCase installs the case's define map as the CasePermutation layer's
// suite-local mapping and derives the predefine mapping by matching
// suite-local names against predefine names. Suite-local keys that share a
// name with a predefine become visible through both namespaces.
func (c *Context) SetCase(kase *Case) {
	tier := &c.layers[layerPermutation]
	tier.values = nil
	if kase == nil || kase.DefineMap == nil {
		tier.premap = nil
		tier.defmap = nil
		return
	}

	tier.defmap = append(tier.defmap[:0], kase.DefineMap...)
	tier.premap = resetSlots(tier.premap, int(predefineCount))
	if c.suite == nil {
		return
	}
	for i, name := range c.suite.DefineNames {
		if i >= len(tier.defmap) {
			break
		}
		if key, ok := LookupPredefine(name); ok {
			tier.premap[key] = tier.defmap[i]
		}
	}
}

// SetPermutation installs the case's value row for one permutation. The
// mappings installed by SetCase stay valid across permutations of the same
// case.
func (c *Context) SetPermutation(kase *Case, perm int) {
	tier := &c.layers[layerPermutation]
	if kase == nil || kase.Defines == nil || perm < 0 || perm >= len(kase.Defines) {
		tier.values = nil
		return
	}
	tier.values = kase.Defines[perm]
}

// SetGeometry installs the geometry's values into the Geometry layer. The
// Geometry layer never populates the suite-local namespace.
func (c *Context) SetGeometry(geometry Geometry) {
	tier := &c.layers[layerGeometry]
	tier.values = tier.values[:0]
	tier.premap = resetSlots(tier.premap, int(predefineCount))
	for i, d := range geometry.Defines {
		tier.values = append(tier.values, d.Value)
		if d.Key >= 0 && d.Key < predefineCount {
			tier.premap[d.Key] = SlotAt(i)
		}
	}
}

// Predefine resolves a key through the predefine namespace, returning the
// value from the strongest defining layer. A key no layer defines is a
// configuration error, not a runtime condition.
func (c *Context) Predefine(key PredefineKey) (Value, error) {
	if key < 0 || key >= predefineCount {
		return 0, undefinedKeyError(key.String())
	}
	for i := range c.layers {
		tier := &c.layers[i]
		if tier.values == nil || tier.premap == nil {
			continue
		}
		if slot := tier.premap[key]; slot.Valid {
			return tier.values[slot.Index], nil
		}
	}
	return 0, undefinedKeyError(key.String())
}

// Define resolves a key through the active suite's namespace.
func (c *Context) Define(key DefineKey) (Value, error) {
	if c.suite == nil || int(key) < 0 || int(key) >= len(c.suite.DefineNames) {
		return 0, undefinedKeyError(c.suite.DefineName(key))
	}
	for i := range c.layers {
		tier := &c.layers[i]
		if tier.values == nil || tier.defmap == nil {
			continue
		}
		if int(key) >= len(tier.defmap) {
			continue
		}
		if slot := tier.defmap[key]; slot.Valid {
			return tier.values[slot.Index], nil
		}
	}
	return 0, undefinedKeyError(c.suite.DefineName(key))
}
