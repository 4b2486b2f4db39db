// Package toolchain maps build platforms to the tools a generated graph
// invokes, and defines the optimization profiles.
package toolchain

import (
	"os"
	"runtime"

	"dario.cat/mergo"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	errUtils "github.com/StinkyLord/stella/internal/errors"
)

// Toolchain names the tools and artifact suffixes for one platform.
type Toolchain struct {
	Compiler string `yaml:"compiler"`
	Linker   string `yaml:"linker"`
	Archiver string `yaml:"archiver"`
	Copier   string `yaml:"copier"`

	StaticLibSuffix  string `yaml:"static-lib-suffix"`
	SharedLibSuffix  string `yaml:"shared-lib-suffix"`
	ExecutableSuffix string `yaml:"executable-suffix"`
}

// Table maps a platform name (runtime.GOOS values) to its default toolchain.
// Tables are plain values so callers can substitute their own.
type Table map[string]Toolchain

// DefaultTable returns the built-in platform defaults.
func DefaultTable() Table {
	gnu := Toolchain{
		Compiler:        "g++",
		Linker:          "ld",
		Archiver:        "ar",
		Copier:          "cp",
		StaticLibSuffix: ".a",
		SharedLibSuffix: ".so",
	}
	darwin := gnu
	darwin.Compiler = "clang++"
	darwin.SharedLibSuffix = ".dylib"

	return Table{
		"linux":   gnu,
		"freebsd": gnu,
		"netbsd":  gnu,
		"openbsd": gnu,
		"darwin":  darwin,
	}
}

// CurrentPlatform is the platform stella runs on.
func CurrentPlatform() string { return runtime.GOOS }

// Resolve returns the toolchain for platform. Fields set in override replace
// the platform default; with no default, override must be complete. A
// platform missing from the table with no override is ErrUnknownPlatform.
func (t Table) Resolve(platform string, override *Toolchain) (Toolchain, error) {
	def, known := t[platform]
	if !known && override == nil {
		return Toolchain{}, errUtils.UnknownPlatform(platform)
	}

	var tc Toolchain
	if override != nil {
		tc = *override
	}
	if known {
		if err := mergo.Merge(&tc, def); err != nil {
			return Toolchain{}, errors.Wrap(err, "merging toolchain override")
		}
	}

	if missing := tc.missing(); len(missing) > 0 {
		return Toolchain{}, errors.WithHint(
			errors.Wrapf(errUtils.ErrInvalidConfig, "toolchain for platform %q is missing %v", platform, missing),
			"the --env file must name every tool when the platform has no default",
		)
	}
	return tc, nil
}

func (tc Toolchain) missing() []string {
	var out []string
	for _, f := range []struct {
		name, value string
	}{
		{"compiler", tc.Compiler},
		{"linker", tc.Linker},
		{"archiver", tc.Archiver},
		{"copier", tc.Copier},
	} {
		if f.value == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// LoadOverride reads a YAML build environment such as
//
//	compiler: clang++
//	archiver: llvm-ar
func LoadOverride(path string) (*Toolchain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "reading build environment %s", path), errUtils.ErrInvalidConfig)
	}
	var tc Toolchain
	if err := yaml.Unmarshal(data, &tc); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parsing build environment %s", path), errUtils.ErrInvalidConfig)
	}
	return &tc, nil
}
