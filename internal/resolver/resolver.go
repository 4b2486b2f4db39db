// Package resolver computes the transitive dependency closure of a component
// and merges the compilable surface of every dependency into it.
package resolver

import (
	"context"

	log "github.com/charmbracelet/log"
	"github.com/samber/lo"

	errUtils "github.com/StinkyLord/stella/internal/errors"
	"github.com/StinkyLord/stella/internal/model"
)

// Fetcher ensures a local working copy of a dependency exists and returns its
// path relative to the workspace.
type Fetcher interface {
	EnsurePresent(ctx context.Context, identity, url, revision string) (string, error)
}

// ComponentLoader builds dependency components from their working copies.
type ComponentLoader interface {
	HasDescriptor(root string) bool
	Load(root string) (*model.Component, error)
	FromDescriptor(d *model.Descriptor, root, fallbackIdentity string) (*model.Component, error)
}

// Resolver performs breadth-first dependency resolution.
type Resolver struct {
	fetcher Fetcher
	loader  ComponentLoader
}

// New returns a Resolver fetching through f and loading through l.
func New(f Fetcher, l ComponentLoader) *Resolver {
	return &Resolver{fetcher: f, loader: l}
}

// Resolve acquires every dependency reachable from root, in discovery order,
// and returns the merged, frozen result. root itself is left untouched.
//
// A dependency is fetched and merged at most once per identity; a reference
// to an identity that is already resolved, including the root's own, is
// skipped. Resolution stops at the first error.
func (r *Resolver) Resolve(ctx context.Context, root *model.Component) (*model.ResolvedComponent, error) {
	log.Info("Resolving dependencies", "component", root.Identity)

	resolved := newIdentitySet(root.Identity)
	queue := newFrontier()
	acc := newAccumulator(root)

	for _, ref := range root.Dependencies {
		r.discover(root.Identity, ref, resolved, queue)
	}

	for queue.len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ref := queue.pop()
		if resolved.has(ref.Identity) {
			log.Info("Already covered", "dependency", ref.Identity)
			continue
		}

		log.Info("Resolving dependency", "dependency", ref.Identity)
		localPath, err := r.fetcher.EnsurePresent(ctx, ref.Identity, ref.URL, ref.Revision)
		if err != nil {
			return nil, errUtils.FetchFailure(ref.Identity, ref.URL, err)
		}

		dep, err := r.load(ref, localPath)
		if err != nil {
			return nil, err
		}

		acc.merge(dep, model.ResolvedDependency{
			Identity:  ref.Identity,
			URL:       ref.URL,
			Revision:  ref.Revision,
			LocalPath: localPath,
			Children: lo.Map(dep.Dependencies, func(d model.DependencyRef, _ int) string {
				return d.Identity
			}),
		})

		for _, sub := range dep.Dependencies {
			if sub.Identity == ref.Identity {
				log.Warn("Ignoring self-reference", "dependency", ref.Identity)
				continue
			}
			r.discover(ref.Identity, sub, resolved, queue)
		}
		resolved.add(ref.Identity)
		log.Info("Acquired", "dependency", ref.Identity, "sources", len(dep.LibraryUnits()))
	}

	return acc.freeze(), nil
}

// discover queues ref unless its identity is resolved or already waiting.
func (r *Resolver) discover(owner string, ref model.DependencyRef, resolved *identitySet, queue *frontier) {
	if resolved.has(ref.Identity) || queue.has(ref.Identity) {
		log.Debug("Already covered", "owner", owner, "dependency", ref.Identity)
		return
	}
	queue.push(ref)
	log.Info("Discovered dependency", "owner", owner, "dependency", ref.Identity)
}

// load builds the dependency's component. A descriptor found in the working
// copy wins over an inline one carried by the reference.
func (r *Resolver) load(ref model.DependencyRef, localPath string) (*model.Component, error) {
	var (
		dep *model.Component
		err error
	)
	switch {
	case r.loader.HasDescriptor(localPath):
		log.Debug("Dependency carries its own descriptor", "dependency", ref.Identity, "path", localPath)
		if ref.Inline != nil {
			log.Warn("Ignoring inline descriptor, the dependency has its own", "dependency", ref.Identity)
		}
		dep, err = r.loader.Load(localPath)
	case ref.Inline != nil:
		log.Debug("Using inline descriptor", "dependency", ref.Identity)
		dep, err = r.loader.FromDescriptor(ref.Inline, localPath, ref.Identity)
	default:
		return nil, errUtils.UnresolvableDependency(ref.Identity, localPath)
	}
	if err != nil {
		return nil, err
	}

	if dep.Identity != ref.Identity {
		log.Warn("Descriptor name differs from the dependency reference; using the reference",
			"reference", ref.Identity, "descriptor", dep.Identity)
		dep.Identity = ref.Identity
	}
	return dep, nil
}
