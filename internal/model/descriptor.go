package model

// Descriptor is the on-disk (stella.yaml) or inline description of a
// component, before any glob or path expansion.
type Descriptor struct {
	Name               string            `yaml:"name"`
	SourceGlobs        []string          `yaml:"source-globs"`
	PublicHeaderPaths  []string          `yaml:"public-header-paths"`
	PrivateHeaderPaths []string          `yaml:"private-header-paths"`
	Apps               []string          `yaml:"apps"`
	TestGlobs          []string          `yaml:"test-globs"`
	TestHeaderPaths    []string          `yaml:"test-header-paths"`
	Dependencies       []DependencyEntry `yaml:"dependencies"`
	BuildStaticLib     bool              `yaml:"build-static-lib"`
	BuildSharedLib     bool              `yaml:"build-shared-lib"`
	BuildApps          *bool             `yaml:"build-apps"`
}

// DependencyEntry is one item of a descriptor's dependency list.
type DependencyEntry struct {
	Name     string      `yaml:"name"`
	URL      string      `yaml:"url"`
	Checkout string      `yaml:"checkout"`
	Inline   *Descriptor `yaml:"stella-yaml"`
}

// Ref converts the entry into a DependencyRef.
func (e DependencyEntry) Ref() DependencyRef {
	return DependencyRef{
		Identity: e.Name,
		URL:      e.URL,
		Revision: e.Checkout,
		Inline:   e.Inline,
	}
}

// Products returns the product flags declared by the descriptor. Apps are
// built by default unless build-apps is explicitly false.
func (d *Descriptor) Products() ProductFlags {
	apps := true
	if d.BuildApps != nil {
		apps = *d.BuildApps
	}
	return ProductFlags{
		StaticLib: d.BuildStaticLib,
		SharedLib: d.BuildSharedLib,
		Apps:      apps,
	}
}
