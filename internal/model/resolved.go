package model

import "slices"

// ResolvedDependency records one dependency acquired during resolution.
type ResolvedDependency struct {
	Identity  string
	URL       string
	Revision  string
	LocalPath string   // Working copy, relative to the workspace
	Children  []string // Identities the dependency itself declares
}

// ResolvedComponent is the root component after its dependency closure has
// been merged in. It is built once by the resolver and never mutated after.
type ResolvedComponent struct {
	component    Component
	dependencies []ResolvedDependency
}

// NewResolvedComponent freezes c and deps. Both are deep-copied so later
// changes to the inputs cannot leak into the resolved value.
func NewResolvedComponent(c *Component, deps []ResolvedDependency) *ResolvedComponent {
	r := &ResolvedComponent{component: cloneComponent(c)}
	for _, d := range deps {
		d.Children = slices.Clone(d.Children)
		r.dependencies = append(r.dependencies, d)
	}
	return r
}

// Component returns a copy of the merged root component.
func (r *ResolvedComponent) Component() Component {
	return cloneComponent(&r.component)
}

// Identity is the root component's identity.
func (r *ResolvedComponent) Identity() string { return r.component.Identity }

// Dependencies returns the resolved dependencies in resolution order.
func (r *ResolvedComponent) Dependencies() []ResolvedDependency {
	out := make([]ResolvedDependency, len(r.dependencies))
	for i, d := range r.dependencies {
		d.Children = slices.Clone(d.Children)
		out[i] = d
	}
	return out
}

// ResolvedIdentities lists the root identity followed by every dependency
// identity in resolution order.
func (r *ResolvedComponent) ResolvedIdentities() []string {
	ids := make([]string, 0, len(r.dependencies)+1)
	ids = append(ids, r.component.Identity)
	for _, d := range r.dependencies {
		ids = append(ids, d.Identity)
	}
	return ids
}

func cloneComponent(c *Component) Component {
	out := *c
	out.Sources = slices.Clone(c.Sources)
	out.Apps = slices.Clone(c.Apps)
	out.Tests = slices.Clone(c.Tests)
	out.PublicHeaderPaths = slices.Clone(c.PublicHeaderPaths)
	out.PrivateHeaderPaths = slices.Clone(c.PrivateHeaderPaths)
	out.TestHeaderPaths = slices.Clone(c.TestHeaderPaths)
	out.PublicHeaders = slices.Clone(c.PublicHeaders)
	out.Dependencies = slices.Clone(c.Dependencies)
	return out
}
