// Package condition evaluates the typed predicates attached to rules. Every
// condition is total: invalid or missing parameters evaluate to false rather
// than raising, so a misconfigured rule fails closed instead of firing
// spuriously.
package condition

import (
	"fmt"
	"sort"
	"sync"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// HistoryNeed declares one history slice a condition wants loaded: events of
// EventType, optionally bounded to WindowMinutes before the trigger. The
// evaluator fetches only declared slices instead of the full user history.
type HistoryNeed struct {
	EventType     string
	WindowMinutes *int64
}

// Result is one condition evaluation outcome with its trace reason.
type Result struct {
	Passed bool
	Reason string
}

// Spec binds a condition type tag to its parameter schema, history needs and
// evaluation function.
type Spec struct {
	Type     string
	Params   []ParamSpec
	Needs    func(p Params) []HistoryNeed
	Evaluate func(history []domain.Event, trigger domain.Event, p Params) Result
}

// Engine holds the registered condition specs, built-in and plugin alike.
type Engine struct {
	mu       sync.RWMutex
	registry map[string]Spec
}

// NewEngine creates an engine with every built-in condition registered.
func NewEngine() *Engine {
	e := &Engine{registry: make(map[string]Spec)}
	for _, spec := range builtinSpecs() {
		// Built-ins are static; a registration failure here is a programming
		// error.
		if err := e.Register(spec); err != nil {
			panic(err)
		}
	}
	return e
}

// Register adds a condition spec. Plugins use this to extend the closed set;
// duplicate tags are rejected.
func (e *Engine) Register(spec Spec) error {
	if spec.Type == "" {
		return fmt.Errorf("%w: condition type tag is required", domain.ErrInvalidInput)
	}
	if spec.Evaluate == nil {
		return fmt.Errorf("%w: condition %q has no evaluate function", domain.ErrInvalidInput, spec.Type)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.registry[spec.Type]; exists {
		return fmt.Errorf("%w: condition type %q", domain.ErrDuplicateID, spec.Type)
	}
	e.registry[spec.Type] = spec
	return nil
}

// Known reports whether a condition type tag is registered.
func (e *Engine) Known(conditionType string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.registry[conditionType]
	return ok
}

// Types returns the registered type tags sorted ascending.
func (e *Engine) Types() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.registry))
	for tag := range e.registry {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Evaluate runs one condition against the history slice and trigger. Unknown
// types, schema violations and panicking plugin evaluators all yield false.
func (e *Engine) Evaluate(cond domain.Condition, history []domain.Event, trigger domain.Event) (result Result) {
	e.mu.RLock()
	spec, ok := e.registry[cond.Type]
	e.mu.RUnlock()
	if !ok {
		return Result{Passed: false, Reason: fmt.Sprintf("unknown condition type %q", cond.Type)}
	}

	params := Params(cond.Parameters)
	if valid, reason := validate(spec.Params, params); !valid {
		return Result{Passed: false, Reason: reason}
	}

	// Plugin evaluators are not trusted to be total.
	defer func() {
		if r := recover(); r != nil {
			result = Result{Passed: false, Reason: fmt.Sprintf("condition %q panicked: %v", cond.Type, r)}
		}
	}()

	return spec.Evaluate(history, trigger, params)
}

// Needs returns the history slices a condition declares, resolving the
// trigger-typed need ("" event type) against the trigger's type.
func (e *Engine) Needs(cond domain.Condition, triggerType string) []HistoryNeed {
	e.mu.RLock()
	spec, ok := e.registry[cond.Type]
	e.mu.RUnlock()
	if !ok || spec.Needs == nil {
		return nil
	}
	needs := spec.Needs(Params(cond.Parameters))
	for i := range needs {
		if needs[i].EventType == "" {
			needs[i].EventType = triggerType
		}
	}
	return needs
}
