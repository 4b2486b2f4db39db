package resolver

import (
	"slices"

	"github.com/StinkyLord/stella/internal/model"
)

// accumulator collects the compilable surface of every acquired dependency
// into a private copy of the root component. It is used for a single
// resolution run and frozen into a ResolvedComponent at the end.
type accumulator struct {
	root    model.Component
	sources map[string]bool
	deps    []model.ResolvedDependency
	frozen  bool
}

func newAccumulator(root *model.Component) *accumulator {
	a := &accumulator{
		root:    *root,
		sources: make(map[string]bool, len(root.Sources)),
	}
	a.root.Sources = nil
	a.root.PrivateHeaderPaths = slices.Clone(root.PrivateHeaderPaths)
	for _, u := range root.Sources {
		a.addSource(u)
	}
	return a
}

func (a *accumulator) addSource(u model.SourceUnit) {
	if a.sources[u.Path] {
		return
	}
	a.sources[u.Path] = true
	a.root.Sources = append(a.root.Sources, u)
}

// merge appends dep's private then public header paths to the root's private
// header paths, and its library sources to the root's sources. The
// dependency's public headers are not re-exported by the root, and its apps,
// tests and product flags are not carried over.
func (a *accumulator) merge(dep *model.Component, acquired model.ResolvedDependency) {
	if a.frozen {
		panic("resolver: merge into a frozen accumulator")
	}
	a.root.PrivateHeaderPaths = append(a.root.PrivateHeaderPaths, dep.PrivateHeaderPaths...)
	a.root.PrivateHeaderPaths = append(a.root.PrivateHeaderPaths, dep.PublicHeaderPaths...)
	for _, u := range dep.LibraryUnits() {
		a.addSource(u)
	}
	a.deps = append(a.deps, acquired)
}

func (a *accumulator) freeze() *model.ResolvedComponent {
	a.frozen = true
	return model.NewResolvedComponent(&a.root, a.deps)
}
