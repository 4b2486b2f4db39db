package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/renameio/v2"

	"github.com/StinkyLord/stella/internal/graph"
)

// NoopTarget is the phony default emitted when the graph has no default
// outputs, so that running the executor without a target builds nothing.
const NoopTarget = "stella_noop"

// NinjaWriter writes ninja syntax. The first write error is kept and every
// later call becomes a no-op; Err reports it.
type NinjaWriter struct {
	w   io.Writer
	err error
}

// NewNinjaWriter returns a writer emitting to w.
func NewNinjaWriter(w io.Writer) *NinjaWriter {
	return &NinjaWriter{w: w}
}

// Err returns the first write error, if any.
func (n *NinjaWriter) Err() error { return n.err }

func (n *NinjaWriter) line(format string, args ...any) {
	if n.err != nil {
		return
	}
	_, n.err = fmt.Fprintf(n.w, format+"\n", args...)
}

// Newline writes an empty line.
func (n *NinjaWriter) Newline() { n.line("") }

// Comment writes a comment line.
func (n *NinjaWriter) Comment(text string) { n.line("# %s", text) }

// Variable writes a top-level variable binding. Values are written verbatim
// so they can reference other variables.
func (n *NinjaWriter) Variable(name, value string) { n.line("%s = %s", name, value) }

// Rule writes a rule with its command and optional depfile.
func (n *NinjaWriter) Rule(name, command, depfile string) {
	n.line("rule %s", name)
	n.line("  command = %s", command)
	if depfile != "" {
		n.line("  depfile = %s", depfile)
	}
}

// Build writes a build statement. Paths are escaped.
func (n *NinjaWriter) Build(output, rule string, inputs ...string) {
	var b strings.Builder
	b.WriteString("build ")
	b.WriteString(EscapePath(output))
	b.WriteString(": ")
	b.WriteString(rule)
	for _, in := range inputs {
		b.WriteByte(' ')
		b.WriteString(EscapePath(in))
	}
	n.line("%s", b.String())
}

// Default marks outputs as built when no target is named.
func (n *NinjaWriter) Default(outputs ...string) {
	escaped := make([]string, len(outputs))
	for i, o := range outputs {
		escaped[i] = EscapePath(o)
	}
	n.line("default %s", strings.Join(escaped, " "))
}

var pathEscaper = strings.NewReplacer("$", "$$", " ", "$ ", ":", "$:")

// EscapePath escapes a path for use in a build or default statement.
func EscapePath(p string) string { return pathEscaper.Replace(p) }

var sectionComments = map[string]string{
	"objects": "Build static and fPIC objects from sources, except apps",
	"static":  "Build a static library from the static objects",
	"shared":  "Build a shared library from the fPIC objects",
	"apps":    "Build executables for the apps",
	"headers": "Copy the public header files into the build products",
	"tests":   "Build the test binary",
}

func section(k graph.Kind) string {
	switch k {
	case graph.KindCompile, graph.KindCompilePIC:
		return "objects"
	case graph.KindArchive:
		return "static"
	case graph.KindLinkShared:
		return "shared"
	case graph.KindCompileApp, graph.KindLinkExecutable:
		return "apps"
	case graph.KindCopy:
		return "headers"
	default:
		return "tests"
	}
}

// WriteNinja writes g as a ninja build file. Equal graphs give byte-identical
// output.
func WriteNinja(g *graph.Graph, w io.Writer) error {
	n := NewNinjaWriter(w)

	n.Comment("Generated file - do not edit!")
	n.Comment("Component: " + g.Identity)
	n.Newline()

	n.Comment("Tools and flags")
	for _, v := range g.Variables {
		n.Variable(v.Name, v.Value)
	}
	n.Newline()

	n.Comment("Build rule definitions")
	for _, r := range graph.Rules {
		n.Rule(r.Name, r.Command, r.Depfile)
	}
	n.Newline()

	current := ""
	for _, a := range g.Actions {
		if s := section(a.Kind); s != current {
			if current != "" {
				n.Newline()
			}
			n.Comment(sectionComments[s])
			current = s
		}
		n.Build(a.Output, a.Kind.RuleName(), a.Inputs...)
	}
	if current != "" {
		n.Newline()
	}

	if len(g.Defaults) == 0 {
		n.Comment("Nothing is built by default")
		n.Build(NoopTarget, "phony")
		n.Default(NoopTarget)
	} else {
		for _, d := range g.Defaults {
			n.Default(d)
		}
	}

	return errors.Wrap(n.Err(), "writing ninja file")
}

// WriteNinjaFile writes g to path atomically. The file is only replaced once
// the whole graph has been rendered.
func WriteNinjaFile(g *graph.Graph, path string) error {
	var buf bytes.Buffer
	if err := WriteNinja(g, &buf); err != nil {
		return err
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
