package runner

import (
	"os"
	"path/filepath"
	"testing"

	permrun "github.com/goliatone/go-permrun"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runner.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	return path
}

func TestLoadConfigCatalogAndDefaults(t *testing.T) {
	path := writeConfig(t, `
geometries:
  - name: tiny
    defines:
      READ_SIZE: 1
      PROG_SIZE: 1
      BLOCK_SIZE: 64
      BLOCK_COUNT: 16
defaults:
  ERASE_VALUE: 0
  ERASE_CYCLES: 100
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	catalog := cfg.Catalog()
	if len(catalog) != 1 || catalog[0].Name != "tiny" {
		t.Fatalf("unexpected catalog: %+v", catalog)
	}
	if len(catalog[0].Defines) != 4 {
		t.Fatalf("expected 4 geometry defines, got %d", len(catalog[0].Defines))
	}
	// emitted in predefine-key order
	if catalog[0].Defines[0].Key != permrun.ReadSize || catalog[0].Defines[3].Key != permrun.BlockCount {
		t.Fatalf("unexpected define order: %+v", catalog[0].Defines)
	}

	overrides := cfg.Overrides()
	if len(overrides) != 2 {
		t.Fatalf("expected 2 overrides, got %+v", overrides)
	}
	if overrides[0].Name != "ERASE_VALUE" || overrides[1].Name != "ERASE_CYCLES" {
		t.Fatalf("unexpected override order: %+v", overrides)
	}
	if overrides[1].Value != 100 {
		t.Fatalf("unexpected override value: %+v", overrides[1])
	}
}

func TestLoadConfigEmptySections(t *testing.T) {
	path := writeConfig(t, "defaults: {}\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Catalog() != nil {
		t.Fatalf("expected nil catalog for empty config")
	}
	if cfg.Overrides() != nil {
		t.Fatalf("expected nil overrides for empty config")
	}
}

func TestLoadConfigRejectsUnknownPredefine(t *testing.T) {
	path := writeConfig(t, `
defaults:
  NOT_A_DEFINE: 1
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown predefine rejected")
	}
}

func TestLoadConfigRejectsUnnamedGeometry(t *testing.T) {
	path := writeConfig(t, `
geometries:
  - defines:
      READ_SIZE: 1
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unnamed geometry rejected")
	}
}

func TestLoadConfigRejectsUnknownTopLevelKey(t *testing.T) {
	path := writeConfig(t, "geoometries: []\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown key rejected")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
