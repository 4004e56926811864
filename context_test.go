package permrun

import (
	"errors"
	"testing"
)

func testSuite() *Suite {
	suite := &Suite{
		ID:          "test_demo",
		Name:        "demo",
		Types:       TypeNormal,
		DefineNames: []string{"CYCLES", "BLOCK_COUNT"},
	}
	suite.Cases = []*Case{
		{
			ID:           "test_demo_case",
			Name:         "case",
			Types:        TypeNormal,
			Permutations: 2,
			DefineMap:    []Slot{SlotAt(0), SlotAt(1)},
			Defines: [][]Value{
				{10, 100},
				{20, 200},
			},
		},
	}
	return suite
}

func TestPredefineDefaultsResolve(t *testing.T) {
	ctx := NewContext()
	value, err := ctx.Predefine(ReadSize)
	if err != nil {
		t.Fatalf("expected default READ_SIZE, got %v", err)
	}
	if value != 16 {
		t.Fatalf("expected READ_SIZE=16, got %d", value)
	}
}

func TestPredefinePrecedenceStrongestWins(t *testing.T) {
	ctx := NewContext()
	ctx.SetGeometry(Geometry{
		Name:    "custom",
		Defines: []GeometryDefine{{Key: BlockSize, Value: 4096}},
	})

	value, err := ctx.Predefine(BlockSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 4096 {
		t.Fatalf("expected geometry BLOCK_SIZE=4096, got %d", value)
	}

	ctx.SetOverrides([]Override{{Name: "BLOCK_SIZE", Value: 512}})
	value, err = ctx.Predefine(BlockSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 512 {
		t.Fatalf("expected override BLOCK_SIZE=512, got %d", value)
	}
}

func TestLastMatchingOverrideWins(t *testing.T) {
	ctx := NewContext()
	ctx.SetOverrides([]Override{
		{Name: "READ_SIZE", Value: 1},
		{Name: "READ_SIZE", Value: 2},
	})
	value, err := ctx.Predefine(ReadSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 2 {
		t.Fatalf("expected the later override to win, got %d", value)
	}
}

func TestDefineResolvesThroughPermutationRow(t *testing.T) {
	ctx := NewContext()
	suite := testSuite()
	kase := suite.Cases[0]

	ctx.SetSuite(suite)
	ctx.SetCase(kase)
	ctx.SetPermutation(kase, 1)

	value, err := ctx.Define(DefineKey(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 20 {
		t.Fatalf("expected CYCLES=20 for perm 1, got %d", value)
	}
}

func TestDefineOverrideOutranksPermutation(t *testing.T) {
	ctx := NewContext()
	suite := testSuite()
	kase := suite.Cases[0]

	ctx.SetOverrides([]Override{{Name: "CYCLES", Value: 99}})
	ctx.SetSuite(suite)
	ctx.SetCase(kase)
	ctx.SetPermutation(kase, 0)

	value, err := ctx.Define(DefineKey(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 99 {
		t.Fatalf("expected override CYCLES=99, got %d", value)
	}
}

func TestSuiteLocalNameSharedWithPredefine(t *testing.T) {
	// BLOCK_COUNT exists in both namespaces; the case's value must be
	// visible through the predefine namespace too
	ctx := NewContext()
	suite := testSuite()
	kase := suite.Cases[0]

	ctx.SetSuite(suite)
	ctx.SetCase(kase)
	ctx.SetPermutation(kase, 0)

	viaDefine, err := ctx.Define(DefineKey(1))
	if err != nil {
		t.Fatalf("unexpected define error: %v", err)
	}
	viaPredefine, err := ctx.Predefine(BlockCount)
	if err != nil {
		t.Fatalf("unexpected predefine error: %v", err)
	}
	if viaDefine != 100 || viaPredefine != 100 {
		t.Fatalf("expected BLOCK_COUNT=100 in both namespaces, got %d and %d",
			viaDefine, viaPredefine)
	}
}

func TestGeometryNeverLeaksIntoSuiteNamespace(t *testing.T) {
	ctx := NewContext()
	suite := &Suite{
		ID:          "test_geom",
		Name:        "geom",
		DefineNames: []string{"BLOCK_SIZE"},
	}
	ctx.SetSuite(suite)
	ctx.SetGeometry(Geometry{
		Name:    "custom",
		Defines: []GeometryDefine{{Key: BlockSize, Value: 4096}},
	})

	if _, err := ctx.Define(DefineKey(0)); err == nil {
		t.Fatalf("expected suite-local BLOCK_SIZE to stay unresolved")
	}
}

func TestUnresolvedKeyErrorNamesKey(t *testing.T) {
	ctx := NewContext()
	suite := testSuite()
	ctx.SetSuite(suite)

	_, err := ctx.Define(DefineKey(0))
	if err == nil {
		t.Fatalf("expected error for unmapped suite-local key")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
	if cfgErr.Name != "CYCLES" {
		t.Fatalf("expected error to name CYCLES, got %q", cfgErr.Name)
	}
}

func TestSuiteTransitionRecomputesMappings(t *testing.T) {
	ctx := NewContext()
	ctx.SetOverrides([]Override{{Name: "CYCLES", Value: 7}})

	first := testSuite()
	ctx.SetSuite(first)
	ctx.SetCase(first.Cases[0])
	ctx.SetPermutation(first.Cases[0], 0)
	if value, err := ctx.Define(DefineKey(0)); err != nil || value != 7 {
		t.Fatalf("expected CYCLES=7 in first suite, got %d, %v", value, err)
	}

	// second suite binds key 0 to a different name, so the override must
	// stop matching after the transition
	second := &Suite{
		ID:          "test_other",
		Name:        "other",
		DefineNames: []string{"DEPTH"},
		Cases: []*Case{{
			ID:           "test_other_case",
			Name:         "case",
			Permutations: 1,
			DefineMap:    []Slot{SlotAt(0)},
			Defines:      [][]Value{{3}},
		}},
	}
	ctx.SetSuite(second)
	ctx.SetCase(second.Cases[0])
	ctx.SetPermutation(second.Cases[0], 0)
	if value, err := ctx.Define(DefineKey(0)); err != nil || value != 3 {
		t.Fatalf("expected DEPTH=3 in second suite, got %d, %v", value, err)
	}
}

func TestUnmappedSlotFallsThroughToWeakerLayer(t *testing.T) {
	ctx := NewContext()
	suite := &Suite{
		ID:          "test_sparse",
		Name:        "sparse",
		DefineNames: []string{"READ_SIZE"},
	}
	kase := &Case{
		ID:           "test_sparse_case",
		Name:         "case",
		Permutations: 1,
		DefineMap:    []Slot{{}}, // key 0 unmapped
		Defines:      [][]Value{{123}},
	}
	ctx.SetSuite(suite)
	ctx.SetCase(kase)
	ctx.SetPermutation(kase, 0)

	value, err := ctx.Predefine(ReadSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 16 {
		t.Fatalf("expected fallthrough to default READ_SIZE=16, got %d", value)
	}
}

func TestTracePredefineRecordsEveryLayer(t *testing.T) {
	ctx := NewContext()
	ctx.SetOverrides([]Override{{Name: "BLOCK_SIZE", Value: 111}})
	ctx.SetGeometry(Geometry{
		Name:    "custom",
		Defines: []GeometryDefine{{Key: BlockSize, Value: 222}},
	})

	trace := ctx.TracePredefine(BlockSize)
	if trace.Key != "BLOCK_SIZE" {
		t.Fatalf("expected trace key BLOCK_SIZE, got %q", trace.Key)
	}
	if len(trace.Layers) != 4 {
		t.Fatalf("expected 4 layers, got %d", len(trace.Layers))
	}
	expect := map[string]struct {
		found bool
		value Value
	}{
		"override":    {true, 111},
		"permutation": {false, 0},
		"geometry":    {true, 222},
		"default":     {true, 512},
	}
	for _, layer := range trace.Layers {
		want, ok := expect[layer.Layer]
		if !ok {
			t.Fatalf("unexpected layer %q", layer.Layer)
		}
		if layer.Found != want.found || (layer.Found && layer.Value != want.value) {
			t.Fatalf("layer %q: got found=%v value=%d, want found=%v value=%d",
				layer.Layer, layer.Found, layer.Value, want.found, want.value)
		}
	}

	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if decoded.Key != trace.Key || len(decoded.Layers) != len(trace.Layers) {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}
