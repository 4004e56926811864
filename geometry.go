package permrun

// GeometryDefine binds one predefine key to the value a geometry supplies
// for it.
type GeometryDefine struct {
	Key   PredefineKey
	Value Value
}

// Geometry is a named, fixed combination of storage-shape parameters. A
// geometry only ever populates the predefine namespace.
type Geometry struct {
	Name    string
	Defines []GeometryDefine
}

// DefaultGeometries returns the built-in geometry catalog. Catalog order is
// significant: the global permutation index decomposes against it.
func DefaultGeometries() []Geometry {
	return []Geometry{
		{
			Name: "default",
			Defines: []GeometryDefine{
				{ReadSize, 16},
				{ProgSize, 16},
				{BlockSize, 512},
				{BlockCount, 2048},
			},
		},
		{
			Name: "eeprom",
			Defines: []GeometryDefine{
				{ReadSize, 1},
				{ProgSize, 1},
				{BlockSize, 512},
				{BlockCount, 2048},
			},
		},
		{
			Name: "emmc",
			Defines: []GeometryDefine{
				{ReadSize, 512},
				{ProgSize, 512},
				{BlockSize, 512},
				{BlockCount, 2048},
			},
		},
		{
			Name: "nor",
			Defines: []GeometryDefine{
				{ReadSize, 1},
				{ProgSize, 1},
				{BlockSize, 4096},
				{BlockCount, 256},
			},
		},
		{
			Name: "nand",
			Defines: []GeometryDefine{
				{ReadSize, 4096},
				{ProgSize, 4096},
				{BlockSize, 32768},
				{BlockCount, 32},
			},
		},
	}
}

// LookupGeometry finds a geometry by name within a catalog.
func LookupGeometry(catalog []Geometry, name string) (Geometry, bool) {
	for _, g := range catalog {
		if g.Name == name {
			return g, true
		}
	}
	return Geometry{}, false
}
