package graph

import (
	"strings"

	"github.com/StinkyLord/stella/internal/model"
	"github.com/StinkyLord/stella/internal/toolchain"
)

const archiverFlags = "-rcs"

// variables builds the tool and flag variables. Include flags list public
// header paths before private ones, each in declaration order.
func variables(c *model.Component, cfg Config) []Variable {
	includes := make([]string, 0, len(c.PublicHeaderPaths)+len(c.PrivateHeaderPaths))
	for _, p := range c.PublicHeaderPaths {
		includes = append(includes, "-I"+p)
	}
	for _, p := range c.PrivateHeaderPaths {
		includes = append(includes, "-I"+p)
	}

	cxxflags := joinFlags(toolchain.BaseCompilerFlags, cfg.Profile.CompilerFlags, includes)

	testIncludes := make([]string, 0, len(c.TestHeaderPaths))
	for _, p := range c.TestHeaderPaths {
		testIncludes = append(testIncludes, "-I"+p)
	}

	return []Variable{
		{Name: "cxx", Value: cfg.Toolchain.Compiler},
		{Name: "ld", Value: cfg.Toolchain.Linker},
		{Name: "ar", Value: cfg.Toolchain.Archiver},
		{Name: "cp", Value: cfg.Toolchain.Copier},
		{Name: "cxxflags", Value: cxxflags},
		{Name: "testflags", Value: joinFlags([]string{"$cxxflags"}, testIncludes)},
		{Name: "ldflags", Value: joinFlags(cfg.Profile.LinkerFlags)},
		{Name: "arflags", Value: archiverFlags},
	}
}

func joinFlags(groups ...[]string) string {
	var all []string
	for _, g := range groups {
		all = append(all, g...)
	}
	return strings.Join(all, " ")
}

// Variable returns the value of the named variable.
func (g *Graph) Variable(name string) string {
	for _, v := range g.Variables {
		if v.Name == name {
			return v.Value
		}
	}
	return ""
}
