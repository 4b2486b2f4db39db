package output

import (
	"strings"

	"github.com/StinkyLord/stella/internal/graph"
)

// CompileCommand represents one entry in compile_commands.json.
type CompileCommand struct {
	Directory string   `json:"directory"`
	Arguments []string `json:"arguments"`
	File      string   `json:"file"`
	Output    string   `json:"output"`
}

// CompileCommands derives the compilation database of g. directory is the
// absolute workspace path every action path is relative to.
func CompileCommands(g *graph.Graph, directory string) []CompileCommand {
	cxx := g.Variable("cxx")
	cxxflags := strings.Fields(g.Variable("cxxflags"))
	testflags := expandFlags(g.Variable("testflags"), cxxflags)

	commands := []CompileCommand{}
	for _, a := range g.Actions {
		var flags, extra []string
		switch a.Kind {
		case graph.KindCompile, graph.KindCompileApp:
			flags = cxxflags
		case graph.KindCompilePIC:
			flags, extra = cxxflags, []string{"-fPIC"}
		case graph.KindCompileTest:
			flags = testflags
		default:
			continue
		}

		args := make([]string, 0, len(flags)+len(extra)+5)
		args = append(args, cxx)
		args = append(args, flags...)
		args = append(args, "-c")
		args = append(args, extra...)
		args = append(args, a.Inputs[0], "-o", a.Output)

		commands = append(commands, CompileCommand{
			Directory: directory,
			Arguments: args,
			File:      a.Inputs[0],
			Output:    a.Output,
		})
	}
	return commands
}

// expandFlags splits value and substitutes $cxxflags.
func expandFlags(value string, cxxflags []string) []string {
	var out []string
	for _, f := range strings.Fields(value) {
		if f == "$cxxflags" {
			out = append(out, cxxflags...)
			continue
		}
		out = append(out, f)
	}
	return out
}

// WriteCompileCommands writes the compilation database of g to outputPath,
// or to stdout when outputPath is "-".
func WriteCompileCommands(g *graph.Graph, directory, outputPath string) error {
	return writeJSON(outputPath, CompileCommands(g, directory))
}
