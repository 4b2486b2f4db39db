// Package descriptor loads stella.yaml component descriptors and expands
// their globs and path fragments into model.Component records.
package descriptor

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	errUtils "github.com/StinkyLord/stella/internal/errors"
	"github.com/StinkyLord/stella/internal/model"
)

// FileName is the descriptor file looked up at a component root.
const FileName = "stella.yaml"

// Parse decodes a descriptor document.
func Parse(data []byte) (*model.Descriptor, error) {
	var d model.Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Loader turns descriptors into components. Component roots handed to the
// loader are slash paths relative to Workspace.
type Loader struct {
	Workspace string
}

// NewLoader returns a Loader rooted at workspace.
func NewLoader(workspace string) *Loader {
	return &Loader{Workspace: workspace}
}

// HasDescriptor reports whether root carries its own stella.yaml.
func (l *Loader) HasDescriptor(root string) bool {
	info, err := os.Stat(l.abs(path.Join(root, FileName)))
	return err == nil && !info.IsDir()
}

// Load reads root/stella.yaml and expands it into a component.
func (l *Loader) Load(root string) (*model.Component, error) {
	rel := path.Join(root, FileName)
	data, err := os.ReadFile(l.abs(rel))
	if err != nil {
		return nil, errUtils.InvalidDescriptor(rel, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, errUtils.InvalidDescriptor(rel, err)
	}
	if d.Name == "" {
		return nil, errUtils.InvalidDescriptor(rel, errors.New("missing required key `name`"))
	}
	return l.FromDescriptor(d, root, "")
}

// FromDescriptor expands d against root. fallbackIdentity names the
// component when d has no name of its own, which is the case for inline
// descriptors.
func (l *Loader) FromDescriptor(d *model.Descriptor, root, fallbackIdentity string) (*model.Component, error) {
	identity := d.Name
	if identity == "" {
		identity = fallbackIdentity
	}
	if identity == "" {
		return nil, errUtils.InvalidDescriptor(path.Join(root, FileName), errors.New("component has no name"))
	}

	root = path.Clean(filepath.ToSlash(root))
	c := &model.Component{
		Identity: identity,
		RootPath: root,
		Products: d.Products(),
	}

	var err error
	if c.Sources, err = l.expandGlobs(identity, root, d.SourceGlobs); err != nil {
		return nil, err
	}
	if c.Tests, err = l.expandGlobs(identity, root, d.TestGlobs); err != nil {
		return nil, err
	}
	if c.Apps, err = l.files(identity, root, d.Apps); err != nil {
		return nil, err
	}
	if c.PublicHeaderPaths, err = l.dirs(identity, root, d.PublicHeaderPaths); err != nil {
		return nil, err
	}
	if c.PrivateHeaderPaths, err = l.dirs(identity, root, d.PrivateHeaderPaths); err != nil {
		return nil, err
	}
	if c.TestHeaderPaths, err = l.dirs(identity, root, d.TestHeaderPaths); err != nil {
		return nil, err
	}
	if c.PublicHeaders, err = l.headerFiles(identity, c.PublicHeaderPaths); err != nil {
		return nil, err
	}

	for _, entry := range d.Dependencies {
		if entry.Name == "" {
			return nil, errUtils.InvalidDescriptor(path.Join(root, FileName), errors.Newf("component %q declares a dependency without a name", identity))
		}
		c.Dependencies = append(c.Dependencies, entry.Ref())
	}

	return c, nil
}

// expandGlobs matches every pattern against root. Matches of one pattern are
// sorted, directories are dropped and a path matched by several patterns is
// kept once, at its first match.
func (l *Loader) expandGlobs(identity, root string, patterns []string) ([]model.SourceUnit, error) {
	var units []model.SourceUnit
	seen := map[string]bool{}
	fsys := os.DirFS(l.abs(root))

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errUtils.InvalidPath(identity, pattern, doublestar.ErrBadPattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errUtils.InvalidPath(identity, pattern, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			p := path.Join(root, m)
			if seen[p] {
				continue
			}
			seen[p] = true
			units = append(units, model.SourceUnit{Path: p})
		}
	}
	return units, nil
}

// files resolves explicit file fragments, each of which must exist. A path
// named more than once is kept at its first occurrence.
func (l *Loader) files(identity, root string, fragments []string) ([]model.SourceUnit, error) {
	var units []model.SourceUnit
	seen := map[string]bool{}
	for _, f := range fragments {
		p, err := l.fragment(identity, root, f)
		if err != nil {
			return nil, err
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		info, err := os.Stat(l.abs(p))
		if err != nil {
			return nil, errUtils.InvalidPath(identity, f, err)
		}
		if info.IsDir() {
			return nil, errUtils.InvalidPath(identity, f+" is a directory", nil)
		}
		units = append(units, model.SourceUnit{Path: p})
	}
	return units, nil
}

// dirs resolves header path fragments, each of which must be a directory.
// Order is preserved: it sets compiler search precedence.
func (l *Loader) dirs(identity, root string, fragments []string) ([]string, error) {
	var out []string
	for _, f := range fragments {
		p, err := l.fragment(identity, root, f)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(l.abs(p))
		if err != nil {
			return nil, errUtils.InvalidPath(identity, f, err)
		}
		if !info.IsDir() {
			return nil, errUtils.InvalidPath(identity, f+" is not a directory", nil)
		}
		out = append(out, p)
	}
	return out, nil
}

// headerFiles lists every regular file beneath each public header path.
// Header paths may nest; a file is recorded under the first path that
// contains it.
func (l *Loader) headerFiles(identity string, headerPaths []string) ([]model.HeaderFile, error) {
	var headers []model.HeaderFile
	seen := map[string]bool{}
	for _, hp := range headerPaths {
		err := fs.WalkDir(os.DirFS(l.abs(hp)), ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			file := path.Join(hp, p)
			if seen[file] {
				return nil
			}
			seen[file] = true
			headers = append(headers, model.HeaderFile{Path: file, HeaderPath: hp})
			return nil
		})
		if err != nil {
			return nil, errUtils.InvalidPath(identity, hp, err)
		}
	}
	return headers, nil
}

// fragment joins a descriptor path fragment onto root, rejecting fragments
// that are absolute or climb out of the component.
func (l *Loader) fragment(identity, root, f string) (string, error) {
	clean := path.Clean(filepath.ToSlash(f))
	if f == "" || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errUtils.InvalidPath(identity, f+" must be relative to the component root", nil)
	}
	return path.Join(root, clean), nil
}

func (l *Loader) abs(rel string) string {
	return filepath.Join(l.Workspace, filepath.FromSlash(rel))
}
