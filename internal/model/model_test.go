package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceUnitNaming(t *testing.T) {
	l := DefaultLayout()
	u := SourceUnit{Path: "deps/libcore/src/parser.cpp"}

	assert.Equal(t, "build/obj/deps/libcore/src/parser.cpp.o", u.ObjectPath(l))
	assert.Equal(t, "build/obj/deps/libcore/src/parser.cpp.fPIC.o", u.PICObjectPath(l))
	assert.Equal(t, "build/bin/parser", u.ExecutablePath(l, ""))
	assert.Equal(t, "build/bin/parser.exe", u.ExecutablePath(l, ".exe"))
}

func TestSourceUnitStem(t *testing.T) {
	assert.Equal(t, "main", SourceUnit{Path: "apps/main.cpp"}.Stem())
	assert.Equal(t, "archive.tar", SourceUnit{Path: "archive.tar.cc"}.Stem())
	assert.Equal(t, "Makefile", SourceUnit{Path: "Makefile"}.Stem())
	assert.Equal(t, ".hidden", SourceUnit{Path: "src/.hidden"}.Stem())
}

func TestLibraryUnitsExcludeAppsAndTests(t *testing.T) {
	c := &Component{
		Sources: []SourceUnit{{"src/a.cpp"}, {"src/main.cpp"}, {"src/b.cpp"}, {"src/a_test.cpp"}},
		Apps:    []SourceUnit{{"src/main.cpp"}},
		Tests:   []SourceUnit{{"src/a_test.cpp"}},
	}

	assert.Equal(t, []SourceUnit{{"src/a.cpp"}, {"src/b.cpp"}}, c.LibraryUnits())
}

func TestDescriptorProductsDefaultAppsOn(t *testing.T) {
	d := &Descriptor{BuildStaticLib: true}
	assert.Equal(t, ProductFlags{StaticLib: true, Apps: true}, d.Products())

	off := false
	d.BuildApps = &off
	assert.False(t, d.Products().Apps)
}

func TestResolvedComponentIsFrozen(t *testing.T) {
	c := &Component{Identity: "app", Sources: []SourceUnit{{"src/a.cpp"}}}
	deps := []ResolvedDependency{{Identity: "libcore", Children: []string{"libutil"}}}
	r := NewResolvedComponent(c, deps)

	c.Sources[0].Path = "mutated"
	deps[0].Children[0] = "mutated"
	got := r.Component()
	got.Sources = append(got.Sources, SourceUnit{"extra"})

	assert.Equal(t, []SourceUnit{{"src/a.cpp"}}, r.Component().Sources)
	assert.Equal(t, []string{"libutil"}, r.Dependencies()[0].Children)
	assert.Equal(t, []string{"app", "libcore"}, r.ResolvedIdentities())
}

func TestBuildDependencyTree(t *testing.T) {
	root := &Component{
		Identity: "app",
		Dependencies: []DependencyRef{
			{Identity: "libcore"},
			{Identity: "libutil"},
		},
	}
	r := NewResolvedComponent(root, []ResolvedDependency{
		{Identity: "libcore", URL: "https://example.com/libcore.git", Children: []string{"libutil", "app"}},
		{Identity: "libutil", Children: []string{"libcore"}},
		{Identity: "libfmt"},
	})

	tree := BuildDependencyTree(r)

	require.Len(t, tree.Roots, 2)
	assert.Len(t, tree.Direct, 2)
	require.Len(t, tree.Transitive, 1)
	assert.Equal(t, "libfmt", tree.Transitive[0].Identity)

	core := tree.Roots[0]
	assert.Equal(t, "libcore", core.Name)
	assert.Equal(t, "direct", core.DependencyType)
	require.Len(t, core.Children, 2)

	// libcore -> libutil -> libcore closes a cycle and stops there.
	util := core.Children[0]
	assert.Equal(t, "libutil", util.Name)
	require.Len(t, util.Children, 1)
	assert.Equal(t, "libcore", util.Children[0].Name)
	assert.Empty(t, util.Children[0].Children)

	// A reference back to the root is a leaf.
	assert.Equal(t, "app", core.Children[1].Name)
	assert.Empty(t, core.Children[1].Children)
}
