package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/stella/internal/graph"
	"github.com/StinkyLord/stella/internal/model"
	"github.com/StinkyLord/stella/internal/toolchain"
)

func synthesize(t *testing.T, c *model.Component) *graph.Graph {
	t.Helper()
	tc, err := toolchain.DefaultTable().Resolve("linux", nil)
	require.NoError(t, err)
	p, err := toolchain.ProfileByName("")
	require.NoError(t, err)
	return graph.Synthesize(model.NewResolvedComponent(c, nil), graph.Config{
		Profile: p, Toolchain: tc, Layout: model.DefaultLayout(),
	})
}

func sampleComponent() *model.Component {
	return &model.Component{
		Identity:           "app",
		RootPath:           ".",
		Sources:            []model.SourceUnit{{Path: "src/a.cpp"}, {Path: "src/main.cpp"}},
		Apps:               []model.SourceUnit{{Path: "src/main.cpp"}},
		Tests:              []model.SourceUnit{{Path: "test/a_test.cpp"}},
		PrivateHeaderPaths: []string{"src"},
		Products:           model.ProductFlags{StaticLib: true, Apps: true},
	}
}

func render(t *testing.T, g *graph.Graph) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteNinja(g, &buf))
	return buf.String()
}

func TestWriteNinja(t *testing.T) {
	out := render(t, synthesize(t, sampleComponent()))

	assert.True(t, strings.HasPrefix(out, "# Generated file - do not edit!\n"))
	assert.Contains(t, out, "cxx = g++\n")
	assert.Contains(t, out, "arflags = -rcs\n")
	assert.Contains(t, out, "rule compile_fpic\n  command = $cxx -MD -MF $out.d $cxxflags -c -fPIC $in -o $out\n  depfile = $out.d\n")
	assert.Contains(t, out, "rule copy_file\n  command = $cp $in $out\n")
	assert.Contains(t, out, "build build/obj/src/a.cpp.o: compile_static src/a.cpp\n")
	assert.Contains(t, out, "build build/obj/src/a.cpp.fPIC.o: compile_fpic src/a.cpp\n")
	assert.Contains(t, out, "build build/lib/libapp.a: link_static build/obj/src/a.cpp.o\n")
	assert.Contains(t, out, "build build/bin/main: compile_exe build/obj/src/a.cpp.o build/obj/src/main.cpp.o\n")
	assert.Contains(t, out, "build build/bin/app_tests: link_test build/obj/test/a_test.cpp.o build/obj/src/a.cpp.o\n")
	assert.Contains(t, out, "default build/lib/libapp.a\ndefault build/bin/main\ndefault build/bin/app_tests\n")
	assert.NotContains(t, out, NoopTarget)
}

func TestWriteNinjaIsByteIdentical(t *testing.T) {
	first := render(t, synthesize(t, sampleComponent()))
	second := render(t, synthesize(t, sampleComponent()))
	assert.Equal(t, first, second)
}

func TestWriteNinjaEmptyComponentBuildsNothing(t *testing.T) {
	out := render(t, synthesize(t, &model.Component{Identity: "empty", RootPath: "."}))

	assert.Contains(t, out, "build build/lib/libempty.a: link_static\n")
	assert.Contains(t, out, "build build/lib/libempty.so: link_shared\n")
	assert.Contains(t, out, "build "+NoopTarget+": phony\n")
	assert.True(t, strings.HasSuffix(out, "default "+NoopTarget+"\n"))
	assert.Equal(t, 1, strings.Count(out, "\ndefault "))
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "src/my$ file.cpp", EscapePath("src/my file.cpp"))
	assert.Equal(t, "c$:/x", EscapePath("c:/x"))
	assert.Equal(t, "a$$b", EscapePath("a$b"))
}

func TestWriteNinjaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.ninja")
	g := synthesize(t, sampleComponent())
	require.NoError(t, WriteNinjaFile(g, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, render(t, g), string(data))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, os.ErrClosed }

func TestWriteNinjaReportsWriteError(t *testing.T) {
	err := WriteNinja(synthesize(t, sampleComponent()), failingWriter{})
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestCompileCommands(t *testing.T) {
	g := synthesize(t, sampleComponent())
	commands := CompileCommands(g, "/work")

	// a.cpp plain + fPIC, main.cpp as an app, one test.
	require.Len(t, commands, 4)
	assert.Equal(t, "/work", commands[0].Directory)
	assert.Equal(t, "src/a.cpp", commands[0].File)
	assert.Equal(t, "g++", commands[0].Arguments[0])
	assert.Equal(t, []string{"-c", "src/a.cpp", "-o", "build/obj/src/a.cpp.o"}, commands[0].Arguments[len(commands[0].Arguments)-4:])
	assert.Contains(t, commands[1].Arguments, "-fPIC")
	assert.Contains(t, commands[0].Arguments, "-Isrc")

	test := commands[3]
	assert.Equal(t, "test/a_test.cpp", test.File)
	assert.Contains(t, test.Arguments, "-std=c++17")
	assert.NotContains(t, test.Arguments, "$cxxflags")
}

func TestWriteCompileCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compile_commands.json")
	require.NoError(t, WriteCompileCommands(synthesize(t, &model.Component{Identity: "e", RootPath: "."}), "/w", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var commands []CompileCommand
	require.NoError(t, json.Unmarshal(data, &commands))
	assert.Empty(t, commands)
	assert.Equal(t, "[]\n", string(data))
}
