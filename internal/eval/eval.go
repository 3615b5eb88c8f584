// Package eval defines the expression-evaluator boundary the directive
// processor consumes, plus the default implementation backed by a goja
// JavaScript runtime.
//
// Evaluators must never panic for malformed expressions reachable from
// user data: any failure comes back as an error, and callers fall back to
// an empty-safe render instead of aborting the directive pass.
package eval

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

// Scope is the flat variable namespace visible to one expression: the
// render context's state merged with computed values and loop variables.
type Scope map[string]interface{}

// Evaluator evaluates one expression against a scope.
type Evaluator interface {
	Evaluate(expression string, scope Scope) (interface{}, error)
}

// JSEvaluator evaluates directive expressions on a goja runtime. One
// runtime is reused across evaluations; scope keys are installed before a
// run and cleared afterward so state never leaks between bindings.
type JSEvaluator struct {
	vm *goja.Runtime
	mu sync.Mutex
}

// NewJSEvaluator creates an evaluator with a fresh runtime.
func NewJSEvaluator() *JSEvaluator {
	return &JSEvaluator{vm: goja.New()}
}

// Evaluate runs the expression with the scope's keys as globals.
func (e *JSEvaluator) Evaluate(expression string, scope Scope) (result interface{}, err error) {
	if expression == "" {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("evaluator panic: %v", r)
		}
	}()

	for key, value := range scope {
		if setErr := e.vm.Set(key, value); setErr != nil {
			return nil, fmt.Errorf("installing scope variable %q: %w", key, setErr)
		}
	}
	defer func() {
		for key := range scope {
			_ = e.vm.Set(key, goja.Undefined())
		}
	}()

	value, runErr := e.vm.RunString(expression)
	if runErr != nil {
		return nil, runErr
	}
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, nil
	}

	return value.Export(), nil
}

// Truthy reports whether a value renders as "present" for conditional and
// class directives. Mirrors JavaScript truthiness for exported values.
func Truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int32:
		return val != 0
	case int64:
		return val != 0
	case float32:
		return val != 0
	case float64:
		return val != 0
	case []interface{}:
		return true
	case map[string]interface{}:
		return true
	default:
		return true
	}
}

// Stringify renders a value for text interpolation and attribute
// assignment. Nil renders empty, never "<nil>".
func Stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// goja exports whole numbers as int64 and fractions as float64;
		// keep whole floats free of a trailing ".0" mismatch.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
