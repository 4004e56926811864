//go:build !js_eval

package permrun

import (
	"errors"
	"testing"
)

func TestJSPredicateUnavailableWithoutTag(t *testing.T) {
	if jsPredicateAvailable() {
		t.Fatalf("expected js predicates unavailable in the default build")
	}
	_, err := NewJSPredicate("perm == 0")
	var predErr *PredicateError
	if !errors.As(err, &predErr) {
		t.Fatalf("expected PredicateError, got %v", err)
	}
	if predErr.Engine != "js" {
		t.Fatalf("expected js engine, got %q", predErr.Engine)
	}
}
