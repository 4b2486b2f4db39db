package model

import (
	"path"
	"strings"
)

// SourceUnit is a single translation unit. Every artifact name is derived
// from Path alone.
type SourceUnit struct {
	Path string // Slash path relative to the workspace
}

// ObjectPath is the plain object produced from the unit.
func (s SourceUnit) ObjectPath(l Layout) string {
	return path.Join(l.ObjDir, s.Path) + ".o"
}

// PICObjectPath is the position-independent object produced from the unit.
func (s SourceUnit) PICObjectPath(l Layout) string {
	return path.Join(l.ObjDir, s.Path) + ".fPIC.o"
}

// ExecutablePath is the executable an app entry point links into, named
// after the unit's base name without its extension.
func (s SourceUnit) ExecutablePath(l Layout, suffix string) string {
	return path.Join(l.BinDir, s.Stem()) + suffix
}

// Stem returns the base name of the unit without its final extension.
func (s SourceUnit) Stem() string {
	base := path.Base(s.Path)
	if ext := path.Ext(base); ext != "" && ext != base {
		return strings.TrimSuffix(base, ext)
	}
	return base
}

// Layout describes the build tree. Paths are relative to the workspace.
type Layout struct {
	BuildDir   string
	ObjDir     string
	LibDir     string
	BinDir     string
	IncludeDir string
	DepsDir    string
}

// DefaultLayout is build/{obj,lib,bin,include} with dependencies under deps/.
func DefaultLayout() Layout {
	return Layout{
		BuildDir:   "build",
		ObjDir:     "build/obj",
		LibDir:     "build/lib",
		BinDir:     "build/bin",
		IncludeDir: "build/include",
		DepsDir:    "deps",
	}
}

// Dirs lists the build tree directories in creation order.
func (l Layout) Dirs() []string {
	return []string{l.DepsDir, l.BuildDir, l.BinDir, l.LibDir, l.ObjDir, l.IncludeDir}
}
