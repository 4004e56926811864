package permrun

import (
	"errors"
	"testing"
)

func TestParseOverrideBases(t *testing.T) {
	cases := []struct {
		arg  string
		name string
		want Value
	}{
		{"READ_SIZE=16", "READ_SIZE", 16},
		{"BLOCK_SIZE=0x200", "BLOCK_SIZE", 512},
		{"ERASE_VALUE=0b1111", "ERASE_VALUE", 15},
		{"MODE=010", "MODE", 8},
		{"BLOCK_CYCLES=-1", "BLOCK_CYCLES", -1},
	}
	for _, tc := range cases {
		override, err := ParseOverride(tc.arg)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.arg, err)
		}
		if override.Name != tc.name || override.Value != tc.want {
			t.Fatalf("%s: got %s=%d, want %s=%d",
				tc.arg, override.Name, override.Value, tc.name, tc.want)
		}
	}
}

func TestParseOverrideRejectsMalformed(t *testing.T) {
	for _, arg := range []string{"", "READ_SIZE", "=16", "READ_SIZE=abc", "READ_SIZE="} {
		_, err := ParseOverride(arg)
		if err == nil {
			t.Fatalf("%q: expected error", arg)
		}
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%q: expected ConfigurationError, got %T", arg, err)
		}
	}
}

func TestParseOverridesPreservesOrder(t *testing.T) {
	overrides, err := ParseOverrides([]string{"READ_SIZE=1", "PROG_SIZE=2", "READ_SIZE=3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(overrides) != 3 {
		t.Fatalf("expected 3 overrides, got %d", len(overrides))
	}
	if overrides[2].Name != "READ_SIZE" || overrides[2].Value != 3 {
		t.Fatalf("expected repeated name kept in order, got %+v", overrides)
	}
}

func TestParseOverridesStopsAtFirstError(t *testing.T) {
	if _, err := ParseOverrides([]string{"READ_SIZE=1", "bogus"}); err == nil {
		t.Fatalf("expected error for malformed argument")
	}
}
