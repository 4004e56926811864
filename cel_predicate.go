package permrun

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELPredicateOption configures the CEL predicate.
type CELPredicateOption func(*celPredicate)

// CELWithProgramCache wires a ProgramCache into the CEL predicate.
func CELWithProgramCache(cache ProgramCache) CELPredicateOption {
	return func(p *celPredicate) {
		p.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL predicate.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELPredicateOption {
	return func(p *celPredicate) {
		if registry == nil {
			return
		}
		p.registry = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

// celPredicate evaluates admission expressions using cel-go. Compilation is
// deferred to the first Admit because CEL needs the environment's variable
// names up front.
type celPredicate struct {
	expression string
	cache      ProgramCache
	registry   *FunctionRegistry
}

// NewCELPredicate constructs a Predicate backed by cel-go.
func NewCELPredicate(expression string, opts ...CELPredicateOption) (Predicate, error) {
	if expression == "" {
		return nil, wrapPredicateError("cel", expression, fmt.Errorf("expression must not be empty"))
	}
	p := &celPredicate{expression: expression}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Admit implements Predicate.
func (p *celPredicate) Admit(ctx *Context, perm int) (bool, error) {
	activation := predicateEnv(ctx, perm)
	program, err := p.loadOrCompile(activation)
	if err != nil {
		return false, err
	}
	if p.registry != nil {
		activation["call"] = func(name string, arguments ...any) (any, error) {
			return p.registry.Call(name, arguments...)
		}
	}
	out, _, err := program.program.Eval(activation)
	if err != nil {
		return false, wrapPredicateError("cel", p.expression, err)
	}
	return coerceBool("cel", p.expression, out.Value())
}

func (p *celPredicate) loadOrCompile(activation map[string]any) (*celProgram, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Get(p.expression); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := p.buildEnv(activation)
	if err != nil {
		return nil, wrapPredicateError("cel", p.expression, err)
	}
	ast, issues := env.Parse(p.expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapPredicateError("cel", p.expression, issues.Err())
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, wrapPredicateError("cel", p.expression, issues.Err())
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, wrapPredicateError("cel", p.expression, err)
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if p.cache != nil {
		p.cache.Set(p.expression, bundle)
	}
	return bundle, nil
}

func (p *celPredicate) buildEnv(activation map[string]any) (*celgo.Env, error) {
	opts := make([]celgo.EnvOption, 0, len(activation)+1)
	for key := range activation {
		opts = append(opts, celgo.Variable(key, celgo.IntType))
	}
	if p.registry != nil {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_dyn",
				[]*celgo.Type{celgo.StringType},
				celgo.DynType,
				celgo.FunctionBinding(p.callBinding()),
			),
		))
	}
	return celgo.NewEnv(opts...)
}

func (p *celPredicate) callBinding() func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if p.registry == nil {
			return types.NewErr("permrun: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("permrun: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("permrun: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := p.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
