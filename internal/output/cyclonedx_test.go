package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/StinkyLord/stella/internal/model"
)

// makeTestTree builds a resolved tree for testing.
// libcore and libutil are DIRECT; libext is TRANSITIVE (pulled in by libcore).
// libcore also declares libutil, which the root already depends on.
func makeTestTree() *model.DependencyTree {
	root := &model.Component{
		Identity: "app",
		Dependencies: []model.DependencyRef{
			{Identity: "libcore", URL: "https://github.com/Acme/libcore.git", Revision: "v1.2.0"},
			{Identity: "libutil", URL: "https://gitlab.com/acme/libutil"},
		},
	}
	deps := []model.ResolvedDependency{
		{Identity: "libcore", URL: "https://github.com/Acme/libcore.git", Revision: "v1.2.0", LocalPath: "deps/libcore", Children: []string{"libutil", "libext"}},
		{Identity: "libutil", URL: "https://gitlab.com/acme/libutil", LocalPath: "deps/libutil"},
		{Identity: "libext", URL: "/srv/mirror/libext", LocalPath: "deps/libext"},
	}
	return model.BuildDependencyTree(model.NewResolvedComponent(root, deps))
}

func readBOM(t *testing.T, path string) cdxBOM {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read output file: %v", err)
	}
	var bom cdxBOM
	if err := json.Unmarshal(data, &bom); err != nil {
		t.Fatalf("cannot unmarshal CycloneDX BOM: %v", err)
	}
	return bom
}

// TestCycloneDXSchema verifies that the output is valid JSON and contains the
// required CycloneDX 1.4 top-level fields.
func TestCycloneDXSchema(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "sbom.json")
	if err := WriteCycloneDX(makeTestTree(), tmp, "1.0.0-test"); err != nil {
		t.Fatalf("WriteCycloneDX failed: %v", err)
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		t.Fatalf("cannot read output file: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("output is not valid JSON: %v\nContent:\n%s", err, string(data))
	}

	for _, field := range []string{"bomFormat", "specVersion", "version", "serialNumber", "metadata"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("missing required field %q in CycloneDX output", field)
		}
	}

	var bomFormat string
	if err := json.Unmarshal(raw["bomFormat"], &bomFormat); err != nil || bomFormat != "CycloneDX" {
		t.Errorf("bomFormat = %q, want %q", bomFormat, "CycloneDX")
	}

	var serialNumber string
	if err := json.Unmarshal(raw["serialNumber"], &serialNumber); err != nil || !strings.HasPrefix(serialNumber, "urn:uuid:") {
		t.Errorf("serialNumber = %q, want prefix %q", serialNumber, "urn:uuid:")
	}
}

// TestCycloneDXComponents verifies components are sorted, versioned and typed.
func TestCycloneDXComponents(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "sbom.json")
	if err := WriteCycloneDX(makeTestTree(), tmp, "1.0.0-test"); err != nil {
		t.Fatalf("WriteCycloneDX failed: %v", err)
	}
	bom := readBOM(t, tmp)

	if len(bom.Components) != 3 {
		t.Fatalf("components count = %d, want 3", len(bom.Components))
	}
	wantOrder := []string{"libcore", "libext", "libutil"}
	for i, name := range wantOrder {
		if bom.Components[i].Name != name {
			t.Errorf("components[%d].name = %q, want %q", i, bom.Components[i].Name, name)
		}
	}

	core := bom.Components[0]
	if core.Version != "v1.2.0" {
		t.Errorf("libcore version = %q, want v1.2.0", core.Version)
	}
	if core.PURL != "pkg:github/acme/libcore@v1.2.0" {
		t.Errorf("libcore purl = %q", core.PURL)
	}

	ext := bom.Components[1]
	if ext.PURL != "pkg:generic/libext" {
		t.Errorf("libext purl = %q, want pkg:generic/libext", ext.PURL)
	}
	if ext.Version != "unversioned" {
		t.Errorf("libext version = %q, want unversioned", ext.Version)
	}
	var depType string
	for _, p := range ext.Properties {
		if p.Name == "stella:dependencyType" {
			depType = p.Value
		}
	}
	if depType != "transitive" {
		t.Errorf("libext dependencyType = %q, want transitive", depType)
	}

	if bom.Metadata.Component == nil || bom.Metadata.Component.Name != "app" {
		t.Errorf("metadata.component = %+v, want app", bom.Metadata.Component)
	}
}

// TestCycloneDXDependencies verifies the dependency graph section.
func TestCycloneDXDependencies(t *testing.T) {
	bom := buildCycloneDX(makeTestTree(), "test")

	byRef := map[string][]string{}
	for _, d := range bom.Dependencies {
		byRef[d.Ref] = d.DependsOn
	}

	rootDeps, ok := byRef["pkg:generic/app"]
	if !ok {
		t.Fatal("root component missing from dependencies")
	}
	if len(rootDeps) != 2 {
		t.Errorf("root dependsOn = %v, want 2 entries", rootDeps)
	}

	coreDeps := byRef["pkg:github/acme/libcore@v1.2.0"]
	if len(coreDeps) != 2 || coreDeps[1] != "pkg:generic/libext" {
		t.Errorf("libcore dependsOn = %v", coreDeps)
	}
}

// TestDependencyTreeInOutput verifies that x-dependencyTree appears in the
// JSON output and has the correct recursive structure.
func TestDependencyTreeInOutput(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "sbom.json")
	if err := WriteCycloneDX(makeTestTree(), tmp, "1.0.0-test"); err != nil {
		t.Fatalf("WriteCycloneDX failed: %v", err)
	}
	bom := readBOM(t, tmp)

	if len(bom.DependencyTree) != 2 {
		t.Fatalf("dependencyTree root count = %d, want 2", len(bom.DependencyTree))
	}

	coreNode := bom.DependencyTree[0]
	if coreNode.Name != "libcore" || !coreNode.Direct {
		t.Fatalf("dependencyTree[0] = %+v, want direct libcore", coreNode)
	}
	if len(coreNode.Children) != 2 {
		t.Fatalf("libcore.children count = %d, want 2", len(coreNode.Children))
	}
	if coreNode.Children[1].Name != "libext" || coreNode.Children[1].Direct {
		t.Errorf("libcore.children[1] = %+v, want transitive libext", coreNode.Children[1])
	}
}

// TestCycloneDXStdout verifies that writing to "-" does not error.
func TestCycloneDXStdout(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := WriteCycloneDX(makeTestTree(), "-", "1.0.0-test")

	w.Close()
	os.Stdout = old

	buf := make([]byte, 1<<20)
	n, _ := r.Read(buf)
	r.Close()

	if err != nil {
		t.Errorf("WriteCycloneDX to stdout failed: %v", err)
	}
	if n == 0 {
		t.Error("no output written to stdout")
	}
}

// TestCycloneDXMetadata verifies the metadata block.
func TestCycloneDXMetadata(t *testing.T) {
	bom := buildCycloneDX(makeTestTree(), "test-version")

	if bom.Metadata.Timestamp == "" {
		t.Error("metadata.timestamp is empty")
	}
	if len(bom.Metadata.Tools) == 0 {
		t.Fatal("metadata.tools is empty")
	}
	tool := bom.Metadata.Tools[0]
	if tool.Name != "stella" {
		t.Errorf("tool name = %q, want %q", tool.Name, "stella")
	}
	if tool.Version != "test-version" {
		t.Errorf("tool version = %q, want %q", tool.Version, "test-version")
	}
}

// TestWriteDependencyTreeEmpty verifies an empty tree is written as [].
func TestWriteDependencyTreeEmpty(t *testing.T) {
	tree := model.BuildDependencyTree(model.NewResolvedComponent(&model.Component{Identity: "solo"}, nil))

	tmp := filepath.Join(t.TempDir(), "tree.json")
	if err := WriteDependencyTree(tree, tmp); err != nil {
		t.Fatalf("WriteDependencyTree failed: %v", err)
	}
	data, err := os.ReadFile(tmp)
	if err != nil {
		t.Fatalf("cannot read output file: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("empty tree = %s, want []", data)
	}
}

// TestWriteDependencyTree verifies the recursive JSON shape.
func TestWriteDependencyTree(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "tree.json")
	if err := WriteDependencyTree(makeTestTree(), tmp); err != nil {
		t.Fatalf("WriteDependencyTree failed: %v", err)
	}
	data, err := os.ReadFile(tmp)
	if err != nil {
		t.Fatalf("cannot read output file: %v", err)
	}

	var roots []*model.TreeNode
	if err := json.Unmarshal(data, &roots); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(roots) != 2 || roots[0].Name != "libcore" || roots[1].Name != "libutil" {
		t.Fatalf("roots = %+v", roots)
	}
	if roots[0].LocalPath != "deps/libcore" {
		t.Errorf("libcore localPath = %q", roots[0].LocalPath)
	}
	if len(roots[0].Children) != 2 || roots[0].Children[0].Name != "libutil" {
		t.Errorf("libcore children = %+v", roots[0].Children)
	}
}
