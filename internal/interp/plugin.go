package interp

import "fmt"

// StagedGlobals accumulates global-property bindings plugins want
// installed on the global object once every plugin's intrinsics exist
// (spec.md §6 "stages global properties").
type StagedGlobals struct {
	entries []stagedGlobal
}

type stagedGlobal struct {
	name  string
	value Value
}

func (s *StagedGlobals) Stage(name string, v Value) {
	s.entries = append(s.entries, stagedGlobal{name: name, value: v})
}

// Plugin is the extension interface a realm composes its intrinsics
// from (spec.md §6). A plugin installs intrinsic objects and stages
// global properties in CreateIntrinsics; RegisterPlugins then defines
// the staged globals on the global object — splitting the two steps
// lets every plugin's CreateIntrinsics run (and reference each other's
// already-created intrinsics, per its declared dependencies) before any
// of them commits to the global object.
type Plugin interface {
	ID() string
	Dependencies() []string
	CreateIntrinsics(realm *Realm, staged *StagedGlobals) error
}

// GlobalBinder is implemented by plugins that need a second pass after
// every plugin's intrinsics exist to define non-staged global bindings
// (e.g. bindings that reference another plugin's staged globals).
type GlobalBinder interface {
	SetDefaultGlobalBindings(realm *Realm) error
}

// NodeEvaluator is implemented by plugins that contribute Evaluation or
// NamedEvaluation handlers for AST node types without modifying the
// dispatcher core (spec.md §4.7). The evaluator never calls
// EvaluationHandlers: Eval dispatches only the node types in its own
// switch, and an unrecognized node type fails an internal assertion.
type NodeEvaluator interface {
	EvaluationHandlers() map[string]func(e *Evaluator, env *Environment, node interface{}) Completion
}

// RegisterPlugins topologically orders plugins by declared dependency and
// runs each one's CreateIntrinsics, then each GlobalBinder's
// SetDefaultGlobalBindings, against realm. Cycles are rejected.
func RegisterPlugins(realm *Realm, plugins []Plugin) error {
	ordered, err := topoSortPlugins(plugins)
	if err != nil {
		return err
	}
	realm.plugins = append(realm.plugins, ordered...)

	staged := &StagedGlobals{}
	for _, p := range ordered {
		if err := p.CreateIntrinsics(realm, staged); err != nil {
			return fmt.Errorf("plugin %q: %w", p.ID(), err)
		}
	}
	for _, g := range staged.entries {
		realm.GlobalObject.CreateDataProperty(StringKey(g.name), g.value)
		realm.GlobalEnv.VarNames[g.name] = true
	}
	for _, p := range ordered {
		if binder, ok := p.(GlobalBinder); ok {
			if err := binder.SetDefaultGlobalBindings(realm); err != nil {
				return fmt.Errorf("plugin %q: %w", p.ID(), err)
			}
		}
	}
	return nil
}

func topoSortPlugins(plugins []Plugin) ([]Plugin, error) {
	byID := make(map[string]Plugin, len(plugins))
	for _, p := range plugins {
		byID[p.ID()] = p
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(plugins))
	var order []Plugin

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("plugin dependency cycle: %v -> %s", path, id)
		}
		color[id] = gray
		p, ok := byID[id]
		if !ok {
			return fmt.Errorf("plugin %q depends on unregistered plugin %q", path[len(path)-1], id)
		}
		for _, dep := range p.Dependencies() {
			if err := visit(dep, append(path, id)); err != nil {
				return err
			}
		}
		color[id] = black
		order = append(order, p)
		return nil
	}

	for _, p := range plugins {
		if err := visit(p.ID(), nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}
