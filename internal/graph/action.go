package graph

// Kind is the type of a build action.
type Kind string

const (
	KindCompile        Kind = "compile"
	KindCompilePIC     Kind = "compile_fpic"
	KindCompileApp     Kind = "compile_app"
	KindArchive        Kind = "link_static"
	KindLinkShared     Kind = "link_shared"
	KindLinkExecutable Kind = "link_exe"
	KindCopy           Kind = "copy_file"
	KindCompileTest    Kind = "compile_test"
	KindLinkTest       Kind = "link_test"
)

// Rule is the tool invocation template for one or more action kinds. $in,
// $out and the graph variables are expanded by the executor.
type Rule struct {
	Name    string
	Command string
	Depfile string
}

// Rules lists every rule in emission order.
var Rules = []Rule{
	{Name: "compile_exe", Command: "$cxx -MD -MF $out.d $cxxflags $ldflags $in -o $out", Depfile: "$out.d"},
	{Name: "compile_static", Command: "$cxx -MD -MF $out.d $cxxflags -c $in -o $out", Depfile: "$out.d"},
	{Name: "compile_fpic", Command: "$cxx -MD -MF $out.d $cxxflags -c -fPIC $in -o $out", Depfile: "$out.d"},
	{Name: "compile_test", Command: "$cxx -MD -MF $out.d $testflags -c $in -o $out", Depfile: "$out.d"},
	{Name: "link_static", Command: "$ar $arflags $out $in"},
	{Name: "link_shared", Command: "$cxx $cxxflags $ldflags -shared -o $out $in"},
	{Name: "link_test", Command: "$cxx $testflags $ldflags $in -o $out"},
	{Name: "copy_file", Command: "$cp $in $out"},
}

var ruleByKind = map[Kind]string{
	KindCompile:        "compile_static",
	KindCompileApp:     "compile_static",
	KindCompilePIC:     "compile_fpic",
	KindCompileTest:    "compile_test",
	KindArchive:        "link_static",
	KindLinkShared:     "link_shared",
	KindLinkExecutable: "compile_exe",
	KindLinkTest:       "link_test",
	KindCopy:           "copy_file",
}

// RuleName returns the name of the rule executing actions of kind k.
func (k Kind) RuleName() string { return ruleByKind[k] }

// Action produces one output file from its inputs. Every file an action
// consumes that another action produces is listed in Inputs, which is how
// the executor learns the ordering.
type Action struct {
	Kind   Kind
	Inputs []string
	Output string
}

// Variable is a named value referenced by rule commands.
type Variable struct {
	Name  string
	Value string
}
