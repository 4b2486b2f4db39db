// Package model defines the records shared by the descriptor loader, the
// dependency resolver and the build graph synthesizer.
package model

// Component is one buildable unit: a library, a set of apps and a test suite
// rooted at RootPath. All paths are slash separated and relative to the
// workspace so that generated graphs do not depend on where the workspace
// lives.
type Component struct {
	Identity string // Unique name used as the deduplication key
	RootPath string // Component root, relative to the workspace ("." for the root component)

	Sources []SourceUnit // Expanded source globs, directories excluded, unique by path
	Apps    []SourceUnit // Entry points, one executable each
	Tests   []SourceUnit // Expanded test globs

	PublicHeaderPaths  []string // Staged and exposed to dependents
	PrivateHeaderPaths []string // Compile-only
	TestHeaderPaths    []string // Added to test compiles only

	// PublicHeaders lists every file found beneath PublicHeaderPaths when
	// the component was loaded.
	PublicHeaders []HeaderFile

	Dependencies []DependencyRef
	Products     ProductFlags
}

// ProductFlags selects which products are default build outputs for a
// component. Dependencies never contribute their flags to the root.
type ProductFlags struct {
	StaticLib bool
	SharedLib bool
	Apps      bool
}

// HeaderFile is a public header together with the header path it was found
// under.
type HeaderFile struct {
	Path       string // Slash path relative to the workspace
	HeaderPath string // The public header path containing Path
}

// DependencyRef points at another component. Two references denote the same
// dependency iff their identities match.
type DependencyRef struct {
	Identity string
	URL      string
	Revision string      // Optional pinned revision (commit, tag or branch)
	Inline   *Descriptor // Used when the dependency carries no descriptor of its own
}

// LibraryUnits returns the sources that make up the library products: every
// source that is neither an app entry point nor a test.
func (c *Component) LibraryUnits() []SourceUnit {
	excluded := make(map[string]bool, len(c.Apps)+len(c.Tests))
	for _, u := range c.Apps {
		excluded[u.Path] = true
	}
	for _, u := range c.Tests {
		excluded[u.Path] = true
	}

	units := make([]SourceUnit, 0, len(c.Sources))
	for _, u := range c.Sources {
		if !excluded[u.Path] {
			units = append(units, u)
		}
	}
	return units
}

// DependsOn reports whether c declares a dependency with the given identity.
func (c *Component) DependsOn(identity string) bool {
	for _, d := range c.Dependencies {
		if d.Identity == identity {
			return true
		}
	}
	return false
}
