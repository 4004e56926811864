package permrun

import "testing"

func TestLookupPredefineRoundTrips(t *testing.T) {
	for key := PredefineKey(0); key < PredefineKey(PredefineCount()); key++ {
		name := key.String()
		found, ok := LookupPredefine(name)
		if !ok || found != key {
			t.Fatalf("%s: lookup returned %v %v", name, found, ok)
		}
	}
	if _, ok := LookupPredefine("NOT_A_DEFINE"); ok {
		t.Fatalf("expected miss for unknown name")
	}
}

func TestTypeMaskString(t *testing.T) {
	cases := []struct {
		mask TypeMask
		want string
	}{
		{0, ""},
		{TypeNormal, "n"},
		{TypeReentrant, "r"},
		{TypeValgrind, "V"},
		{TypeNormal | TypeValgrind, "nV"},
		{TypeNormal | TypeReentrant | TypeValgrind, "nrV"},
	}
	for _, tc := range cases {
		if got := tc.mask.String(); got != tc.want {
			t.Fatalf("mask %b: got %q, want %q", tc.mask, got, tc.want)
		}
	}
}

func TestLookupGeometry(t *testing.T) {
	catalog := DefaultGeometries()
	geometry, ok := LookupGeometry(catalog, "emmc")
	if !ok || geometry.Name != "emmc" {
		t.Fatalf("expected emmc, got %+v %v", geometry, ok)
	}
	if _, ok := LookupGeometry(catalog, "floppy"); ok {
		t.Fatalf("expected miss for unknown geometry")
	}
}

func TestSuiteDefineNameOutOfRange(t *testing.T) {
	suite := &Suite{DefineNames: []string{"CYCLES"}}
	if got := suite.DefineName(0); got != "CYCLES" {
		t.Fatalf("expected CYCLES, got %q", got)
	}
	if got := suite.DefineName(5); got != "UNKNOWN" {
		t.Fatalf("expected UNKNOWN, got %q", got)
	}
	var nilSuite *Suite
	if got := nilSuite.DefineName(0); got != "UNKNOWN" {
		t.Fatalf("expected UNKNOWN for nil suite, got %q", got)
	}
}
