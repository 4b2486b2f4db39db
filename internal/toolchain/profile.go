package toolchain

import (
	"github.com/cockroachdb/errors"

	errUtils "github.com/StinkyLord/stella/internal/errors"
)

// BaseCompilerFlags are passed to every compile regardless of profile.
var BaseCompilerFlags = []string{"-std=c++17", "-Wall", "-Wextra", "-Wno-unused-parameter", "-Werror", "-pedantic"}

// Profile is an optimization level with its fixed flag set.
type Profile struct {
	Name          string
	CompilerFlags []string
	LinkerFlags   []string
}

const (
	Release = "release"
	Debug   = "debug"
)

// Profiles lists the recognized profiles:
//
//	release: -O3 -flto (compile and link)
//	debug:   -g
var Profiles = map[string]Profile{
	Release: {Name: Release, CompilerFlags: []string{"-O3", "-flto"}, LinkerFlags: []string{"-flto"}},
	Debug:   {Name: Debug, CompilerFlags: []string{"-g"}},
}

// ProfileByName looks up a profile; "" selects release.
func ProfileByName(name string) (Profile, error) {
	if name == "" {
		name = Release
	}
	p, ok := Profiles[name]
	if !ok {
		return Profile{}, errors.WithHint(
			errors.Wrapf(errUtils.ErrInvalidProfile, "%q", name),
			`config must be either "release" or "debug"`,
		)
	}
	return p, nil
}
