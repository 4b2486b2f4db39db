// Package graph synthesizes the declarative build graph of a resolved
// component: compile, archive, link and copy actions with their inputs and
// outputs. It does not schedule or execute anything.
package graph

import (
	"path"
	"strings"

	"github.com/StinkyLord/stella/internal/model"
	"github.com/StinkyLord/stella/internal/toolchain"
)

// Config selects the profile, tools and build tree for synthesis.
type Config struct {
	Profile   toolchain.Profile
	Toolchain toolchain.Toolchain
	Layout    model.Layout
}

// Graph is the synthesized action graph.
type Graph struct {
	Identity  string
	Variables []Variable
	Actions   []Action
	Defaults  []string // Outputs built when the executor is given no target

	StaticLib  string
	SharedLib  string
	TestBinary string // Empty when the component has no tests
}

// Synthesize derives the action graph of r. The output is a pure function of
// its inputs: equal inputs give equal graphs, action for action.
func Synthesize(r *model.ResolvedComponent, cfg Config) *Graph {
	c := r.Component()
	l := cfg.Layout
	tc := cfg.Toolchain

	g := &Graph{
		Identity:  c.Identity,
		Variables: variables(&c, cfg),
		StaticLib: path.Join(l.LibDir, "lib"+c.Identity+tc.StaticLibSuffix),
		SharedLib: path.Join(l.LibDir, "lib"+c.Identity+tc.SharedLibSuffix),
	}

	libUnits := c.LibraryUnits()
	objects := make([]string, 0, len(libUnits))
	picObjects := make([]string, 0, len(libUnits))
	for _, u := range libUnits {
		obj := u.ObjectPath(l)
		pic := u.PICObjectPath(l)
		g.add(KindCompile, obj, u.Path)
		g.add(KindCompilePIC, pic, u.Path)
		objects = append(objects, obj)
		picObjects = append(picObjects, pic)
	}

	g.add(KindArchive, g.StaticLib, objects...)
	if c.Products.StaticLib {
		g.Defaults = append(g.Defaults, g.StaticLib)
	}

	g.add(KindLinkShared, g.SharedLib, picObjects...)
	if c.Products.SharedLib {
		g.Defaults = append(g.Defaults, g.SharedLib)
	}

	for _, app := range c.Apps {
		obj := app.ObjectPath(l)
		exe := app.ExecutablePath(l, tc.ExecutableSuffix)
		g.add(KindCompileApp, obj, app.Path)
		g.add(KindLinkExecutable, exe, append(append([]string{}, objects...), obj)...)
		if c.Products.Apps {
			g.Defaults = append(g.Defaults, exe)
		}
	}

	stageHeaders := c.Products.StaticLib || c.Products.SharedLib
	for _, h := range c.PublicHeaders {
		dst := path.Join(l.IncludeDir, stagedHeaderPath(&c, h))
		g.add(KindCopy, dst, h.Path)
		if stageHeaders {
			g.Defaults = append(g.Defaults, dst)
		}
	}

	if len(c.Tests) > 0 {
		testObjects := make([]string, 0, len(c.Tests))
		for _, u := range c.Tests {
			obj := u.ObjectPath(l)
			g.add(KindCompileTest, obj, u.Path)
			testObjects = append(testObjects, obj)
		}
		g.TestBinary = path.Join(l.BinDir, c.Identity+"_tests"+tc.ExecutableSuffix)
		g.add(KindLinkTest, g.TestBinary, append(testObjects, objects...)...)
		g.Defaults = append(g.Defaults, g.TestBinary)
	}

	return g
}

func (g *Graph) add(kind Kind, output string, inputs ...string) {
	g.Actions = append(g.Actions, Action{Kind: kind, Inputs: inputs, Output: output})
}

// stagedHeaderPath is h relative to its header path, or relative to the
// component root when the component has several public header paths, so
// that files with the same name under different header paths cannot collide.
func stagedHeaderPath(c *model.Component, h model.HeaderFile) string {
	base := h.HeaderPath
	if len(c.PublicHeaderPaths) > 1 {
		base = c.RootPath
	}
	return relative(base, h.Path)
}

func relative(base, p string) string {
	if base == "." || base == "" {
		return p
	}
	return strings.TrimPrefix(p, base+"/")
}
