// Package generator runs the configure pipeline: load the root descriptor,
// pick the toolchain, resolve dependencies and synthesize the build graph.
package generator

import (
	"context"

	log "github.com/charmbracelet/log"

	"github.com/StinkyLord/stella/internal/descriptor"
	"github.com/StinkyLord/stella/internal/graph"
	"github.com/StinkyLord/stella/internal/model"
	"github.com/StinkyLord/stella/internal/resolver"
	"github.com/StinkyLord/stella/internal/toolchain"
)

// Result holds everything derived from one configure run.
type Result struct {
	Resolved *model.ResolvedComponent
	Graph    *graph.Graph
	Tree     *model.DependencyTree
}

// Generator configures the component rooted at Workspace.
type Generator struct {
	Workspace string
	Layout    model.Layout
	Fetcher   resolver.Fetcher

	// Platform selects the default toolchain from Table. Override fields,
	// when set, take precedence over that default.
	Platform string
	Table    toolchain.Table
	Override *toolchain.Toolchain
	Profile  toolchain.Profile
}

// New creates a Generator for the current platform with the default
// toolchain table and the release profile.
func New(workspace string, f resolver.Fetcher) *Generator {
	return &Generator{
		Workspace: workspace,
		Layout:    model.DefaultLayout(),
		Fetcher:   f,
		Platform:  toolchain.CurrentPlatform(),
		Table:     toolchain.DefaultTable(),
		Profile:   toolchain.Profiles[toolchain.Release],
	}
}

// Resolve loads the root descriptor and resolves its dependency closure.
func (g *Generator) Resolve(ctx context.Context) (*model.ResolvedComponent, error) {
	loader := descriptor.NewLoader(g.Workspace)
	root, err := loader.Load(".")
	if err != nil {
		return nil, err
	}
	return resolver.New(g.Fetcher, loader).Resolve(ctx, root)
}

// Generate runs the whole pipeline. Either every stage succeeds or nothing
// is returned; there is no partial result.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	tc, err := g.Table.Resolve(g.Platform, g.Override)
	if err != nil {
		return nil, err
	}
	log.Debug("Using toolchain", "platform", g.Platform, "compiler", tc.Compiler, "archiver", tc.Archiver)

	resolved, err := g.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	gr := graph.Synthesize(resolved, graph.Config{Profile: g.Profile, Toolchain: tc, Layout: g.Layout})
	log.Info("Synthesized build graph",
		"component", resolved.Identity(),
		"profile", g.Profile.Name,
		"actions", len(gr.Actions),
		"dependencies", len(resolved.Dependencies()))

	return &Result{
		Resolved: resolved,
		Graph:    gr,
		Tree:     model.BuildDependencyTree(resolved),
	}, nil
}
