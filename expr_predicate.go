package permrun

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprPredicateOption configures an expr predicate instance.
type ExprPredicateOption func(*exprPredicate)

// ExprWithProgramCache wires a ProgramCache into the expr predicate.
func ExprWithProgramCache(cache ProgramCache) ExprPredicateOption {
	return func(p *exprPredicate) {
		p.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr predicate.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprPredicateOption {
	return func(p *exprPredicate) {
		if registry == nil {
			return
		}
		p.registry = registry.Clone()
	}
}

// exprPredicate evaluates admission expressions using
// github.com/expr-lang/expr.
type exprPredicate struct {
	expression string
	program    *exprvm.Program
	cache      ProgramCache
	registry   *FunctionRegistry
}

// NewExprPredicate compiles expression into a Predicate. The expression sees
// "perm" plus every resolvable define by name and must produce a boolean.
func NewExprPredicate(expression string, opts ...ExprPredicateOption) (Predicate, error) {
	if expression == "" {
		return nil, wrapPredicateError("expr", expression, fmt.Errorf("expression must not be empty"))
	}
	p := &exprPredicate{expression: expression}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	program, err := p.loadOrCompile()
	if err != nil {
		return nil, err
	}
	p.program = program
	return p, nil
}

// Admit implements Predicate.
func (p *exprPredicate) Admit(ctx *Context, perm int) (bool, error) {
	env := p.environment(ctx, perm)
	result, err := exprlang.Run(p.program, env)
	if err != nil {
		return false, wrapPredicateError("expr", p.expression, err)
	}
	return coerceBool("expr", p.expression, result)
}

func (p *exprPredicate) loadOrCompile() (*exprvm.Program, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Get(p.expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range p.registryNames() {
		fn := p.registryFunction(name)
		options = append(options, exprlang.Function(name, fn))
	}
	program, err := exprlang.Compile(p.expression, options...)
	if err != nil {
		return nil, wrapPredicateError("expr", p.expression, err)
	}
	if p.cache != nil {
		p.cache.Set(p.expression, program)
	}
	return program, nil
}

func (p *exprPredicate) environment(ctx *Context, perm int) map[string]any {
	env := predicateEnv(ctx, perm)
	if p.registry != nil {
		env["call"] = func(name string, arguments ...any) (any, error) {
			return p.registry.Call(name, arguments...)
		}
		for _, name := range p.registry.Names() {
			fn := name
			env[fn] = func(arguments ...any) (any, error) {
				return p.registry.Call(fn, arguments...)
			}
		}
	}
	return env
}

func (p *exprPredicate) registryNames() []string {
	if p == nil || p.registry == nil {
		return nil
	}
	return p.registry.Names()
}

func (p *exprPredicate) registryFunction(name string) func(...any) (any, error) {
	if p == nil || p.registry == nil {
		return nil
	}
	return func(arguments ...any) (any, error) {
		return p.registry.Call(name, arguments...)
	}
}
