package confload

import (
	"errors"
	"testing"
)

type settings struct {
	Name  string `yaml:"name"`
	Limit int    `yaml:"limit"`
}

func TestDecodeBasic(t *testing.T) {
	decoder := NewDecoder[settings]()
	got, err := decoder.Decode(Context{Source: "test"}, map[string]any{
		"name":  "demo",
		"limit": 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "demo" || got.Limit != 3 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestDecodeNilPayload(t *testing.T) {
	decoder := NewDecoder[settings]()
	if _, err := decoder.Decode(Context{Source: "test"}, nil); err == nil {
		t.Fatalf("expected error for nil payload")
	}
}

func TestDecodeKnownFieldsRejectsUnknown(t *testing.T) {
	decoder := NewDecoder(WithKnownFields[settings]())
	_, err := decoder.Decode(Context{Source: "test"}, map[string]any{
		"name":  "demo",
		"bogus": true,
	})
	if err == nil {
		t.Fatalf("expected unknown field rejected")
	}
}

func TestDecodePreHookMutatesPayload(t *testing.T) {
	decoder := NewDecoder(
		WithPreHook[settings](func(_ Context, payload map[string]any) (map[string]any, error) {
			payload["limit"] = 9
			return payload, nil
		}),
	)
	got, err := decoder.Decode(Context{Source: "test"}, map[string]any{"limit": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Limit != 9 {
		t.Fatalf("expected pre-hook value, got %d", got.Limit)
	}
}

func TestDecodePreHookDoesNotMutateOriginal(t *testing.T) {
	decoder := NewDecoder(
		WithPreHook[settings](func(_ Context, payload map[string]any) (map[string]any, error) {
			payload["name"] = "changed"
			return payload, nil
		}),
	)
	original := map[string]any{"name": "demo"}
	if _, err := decoder.Decode(Context{Source: "test"}, original); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if original["name"] != "demo" {
		t.Fatalf("expected original payload untouched, got %+v", original)
	}
}

func TestDecodePostHookValidates(t *testing.T) {
	failure := errors.New("limit too small")
	decoder := NewDecoder(
		WithPostHook[settings](func(_ Context, s *settings) error {
			if s.Limit < 1 {
				return failure
			}
			return nil
		}),
	)
	_, err := decoder.Decode(Context{Source: "test"}, map[string]any{"limit": 0})
	if !errors.Is(err, failure) {
		t.Fatalf("expected post-hook error, got %v", err)
	}
}
