package permrun

import "fmt"

// Predicate decides whether one case permutation should run. Predicates may
// read resolved configuration through the Context, so callers must install
// the permutation and geometry before evaluating. Returning false is a skip,
// not an error.
type Predicate interface {
	Admit(ctx *Context, perm int) (bool, error)
}

// PredicateFunc adapts a plain function to Predicate.
type PredicateFunc func(ctx *Context, perm int) (bool, error)

// Admit implements Predicate.
func (fn PredicateFunc) Admit(ctx *Context, perm int) (bool, error) {
	if fn == nil {
		return true, nil
	}
	return fn(ctx, perm)
}

// PredicateError captures predicate engine metadata alongside the
// originating error.
type PredicateError struct {
	Engine string
	Expr   string
	Err    error
}

func (e *PredicateError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("permrun: %s predicate expr=%q: %v", e.Engine, e.Expr, e.Err)
}

func (e *PredicateError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapPredicateError(engine, expr string, err error) error {
	if err == nil {
		return nil
	}
	return &PredicateError{Engine: engine, Expr: expr, Err: err}
}

// predicateEnv binds the case permutation number and every currently
// resolvable define into an expression environment. Values come through as
// int64 so the engines treat them as plain integers.
func predicateEnv(ctx *Context, perm int) map[string]any {
	env := map[string]any{
		"perm": int64(perm),
	}
	if ctx == nil {
		return env
	}
	for key := PredefineKey(0); key < predefineCount; key++ {
		if value, err := ctx.Predefine(key); err == nil {
			env[key.String()] = int64(value)
		}
	}
	if suite := ctx.Suite(); suite != nil {
		for key := range suite.DefineNames {
			if value, err := ctx.Define(DefineKey(key)); err == nil {
				env[suite.DefineNames[key]] = int64(value)
			}
		}
	}
	return env
}

// coerceBool interprets an engine result as a predicate verdict.
func coerceBool(engine, expr string, result any) (bool, error) {
	switch v := result.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case int:
		return v != 0, nil
	default:
		return false, wrapPredicateError(engine, expr,
			fmt.Errorf("expression returned %T, want bool", result))
	}
}
