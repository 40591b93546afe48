// Package expression evaluates the `{...}` expressions embedded in markup
// attribute values and text.
package expression

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"retort-go/packages/retort/src/util"
)

// Evaluator evaluates one expression against a component's state and props.
type Evaluator interface {
	Evaluate(expression string, state, props any) (any, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(expression string, state, props any) (any, error)

// Evaluate calls f(expression, state, props).
func (f EvaluatorFunc) Evaluate(expression string, state, props any) (any, error) {
	return f(expression, state, props)
}

// ExprEvaluator evaluates expressions with expr-lang. Compiled programs are
// cached by source, so an evaluator is meant to live as long as the
// components it renders. It is safe for concurrent use.
type ExprEvaluator struct {
	mu       sync.Mutex
	programs map[string]*vm.Program
	options  []expr.Option
}

// NewExprEvaluator creates an evaluator. Extra options are passed to
// expr.Compile after the `state`/`props` environment.
func NewExprEvaluator(options ...expr.Option) *ExprEvaluator {
	return &ExprEvaluator{
		programs: map[string]*vm.Program{},
		options:  options,
	}
}

// Env is the environment an expression runs in.
func Env(state, props any) map[string]any {
	if state == nil {
		state = map[string]any{}
	}
	if props == nil {
		props = map[string]any{}
	}
	return map[string]any{"state": state, "props": props}
}

// Evaluate compiles (or reuses) the program for expression and runs it.
func (e *ExprEvaluator) Evaluate(expression string, state, props any) (any, error) {
	program, err := e.compile(expression)
	if err != nil {
		return nil, util.Wrap(util.KindEvaluation, nil, err,
			fmt.Sprintf("failed to compile the following expression: %s", expression))
	}
	out, err := expr.Run(program, Env(state, props))
	if err != nil {
		return nil, util.Wrap(util.KindEvaluation, nil, err,
			fmt.Sprintf("failed to evaluate the following expression: %s", expression))
	}
	return out, nil
}

func (e *ExprEvaluator) compile(source string) (*vm.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if program, ok := e.programs[source]; ok {
		return program, nil
	}
	options := append([]expr.Option{expr.Env(Env(nil, nil))}, e.options...)
	program, err := expr.Compile(source, options...)
	if err != nil {
		return nil, err
	}
	e.programs[source] = program
	return program, nil
}

// Cached returns the number of compiled programs held by the evaluator.
func (e *ExprEvaluator) Cached() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.programs)
}
