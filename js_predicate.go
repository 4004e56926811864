//go:build js_eval

package permrun

import (
	"fmt"

	"github.com/dop251/goja"
)

// jsPredicate evaluates admission expressions using goja.
type jsPredicate struct {
	expression string
	cache      ProgramCache
	registry   *FunctionRegistry
}

// NewJSPredicate constructs a Predicate backed by goja. Requires the js_eval
// build tag.
func NewJSPredicate(expression string, opts ...JSPredicateOption) (Predicate, error) {
	if expression == "" {
		return nil, wrapPredicateError("js", expression, fmt.Errorf("expression must not be empty"))
	}
	cfg := applyJSPredicateOptions(opts)
	p := &jsPredicate{
		expression: expression,
		cache:      cfg.cache,
		registry:   cfg.registry,
	}
	if _, err := p.loadOrCompile(); err != nil {
		return nil, err
	}
	return p, nil
}

// Admit implements Predicate.
func (p *jsPredicate) Admit(ctx *Context, perm int) (bool, error) {
	program, err := p.loadOrCompile()
	if err != nil {
		return false, err
	}
	vm := goja.New()
	p.injectEnv(vm, ctx, perm)
	value, err := vm.RunProgram(program)
	if err != nil {
		return false, wrapPredicateError("js", p.expression, err)
	}
	exported := value.Export()
	if b, ok := exported.(bool); ok {
		return b, nil
	}
	return coerceBool("js", p.expression, exported)
}

func (p *jsPredicate) loadOrCompile() (*goja.Program, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Get(p.expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", p.wrapExpression(), false)
	if err != nil {
		return nil, wrapPredicateError("js", p.expression, err)
	}
	if p.cache != nil {
		p.cache.Set(p.expression, program)
	}
	return program, nil
}

func (p *jsPredicate) injectEnv(vm *goja.Runtime, ctx *Context, perm int) {
	for key, value := range predicateEnv(ctx, perm) {
		vm.Set(key, value)
	}
	if p.registry != nil {
		vm.Set("call", func(name string, arguments ...any) (any, error) {
			return p.registry.Call(name, arguments...)
		})
		for _, name := range p.registry.Names() {
			fn := name
			vm.Set(fn, func(arguments ...any) (any, error) {
				return p.registry.Call(fn, arguments...)
			})
		}
	}
}

func (p *jsPredicate) wrapExpression() string {
	return fmt.Sprintf("(function(){ return (%s); })()", p.expression)
}

func jsPredicateAvailable() bool {
	return true
}
