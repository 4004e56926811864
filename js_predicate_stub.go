//go:build !js_eval

package permrun

import "fmt"

// NewJSPredicate is unavailable without the js_eval build tag.
func NewJSPredicate(expression string, opts ...JSPredicateOption) (Predicate, error) {
	_ = applyJSPredicateOptions(opts)
	return nil, wrapPredicateError("js", expression,
		fmt.Errorf("js predicates require the js_eval build tag"))
}

func jsPredicateAvailable() bool {
	return false
}
