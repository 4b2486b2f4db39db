// Package output renders a synthesized build graph and its resolved
// dependencies: the ninja build file, the compilation database, a CycloneDX
// SBOM and a JSON dependency tree.
package output

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	giturl "github.com/kubescape/go-git-url"

	"github.com/StinkyLord/stella/internal/model"
)

// ---- CycloneDX 1.4 JSON schema types ----

type cdxBOM struct {
	BOMFormat      string          `json:"bomFormat"`
	SpecVersion    string          `json:"specVersion"`
	Version        int             `json:"version"`
	SerialNumber   string          `json:"serialNumber"`
	Metadata       cdxMetadata     `json:"metadata"`
	Components     []cdxComponent  `json:"components"`
	Dependencies   []cdxDependency `json:"dependencies,omitempty"`
	DependencyTree []*cdxTreeNode  `json:"x-dependencyTree,omitempty"`
}

// cdxTreeNode is a recursive tree node for the x-dependencyTree extension.
// Only direct dependencies appear at the root; each node carries its full
// subtree of children inline.
type cdxTreeNode struct {
	Name     string         `json:"name"`
	Version  string         `json:"version"`
	PURL     string         `json:"purl,omitempty"`
	Direct   bool           `json:"direct,omitempty"`
	Children []*cdxTreeNode `json:"children,omitempty"`
}

type cdxMetadata struct {
	Timestamp string        `json:"timestamp"`
	Tools     []cdxTool     `json:"tools"`
	Component *cdxComponent `json:"component,omitempty"`
}

type cdxTool struct {
	Vendor  string `json:"vendor"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

type cdxComponent struct {
	BOMRef     string        `json:"bom-ref,omitempty"`
	Type       string        `json:"type"`
	Name       string        `json:"name"`
	Version    string        `json:"version"`
	PURL       string        `json:"purl,omitempty"`
	Properties []cdxProperty `json:"properties,omitempty"`
}

type cdxProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// cdxDependency represents one node in the CycloneDX dependency graph.
// "ref" is the PURL of the component; "dependsOn" lists the PURLs of its children.
type cdxDependency struct {
	Ref       string   `json:"ref"`
	DependsOn []string `json:"dependsOn"`
}

const unversioned = "unversioned"

// WriteCycloneDX serialises the resolved dependencies as a CycloneDX 1.4 JSON
// SBOM and writes it to the given output path. If outputPath is "-", it
// writes to stdout.
func WriteCycloneDX(tree *model.DependencyTree, outputPath string, toolVersion string) error {
	bom := buildCycloneDX(tree, toolVersion)

	data, err := json.MarshalIndent(bom, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal CycloneDX JSON")
	}
	data = append(data, '\n')

	if outputPath == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}

	return renameio.WriteFile(outputPath, data, 0o644)
}

func buildCycloneDX(tree *model.DependencyTree, toolVersion string) cdxBOM {
	// Sort dependencies by name for deterministic output
	deps := make([]model.ResolvedDependency, 0, len(tree.ByName))
	for _, d := range tree.ByName {
		deps = append(deps, d)
	}
	sort.Slice(deps, func(i, j int) bool {
		return deps[i].Identity < deps[j].Identity
	})

	purlByName := make(map[string]string, len(deps))
	for _, d := range deps {
		purlByName[d.Identity] = PackageURL(d.Identity, d.URL, d.Revision)
	}
	refOf := func(name string) string {
		if p, ok := purlByName[name]; ok {
			return p
		}
		return "pkg:generic/" + name
	}

	rootRef := "pkg:generic/" + tree.Root
	root := &cdxComponent{BOMRef: rootRef, Type: "application", Name: tree.Root, Version: unversioned}

	rootDeps := cdxDependency{Ref: rootRef, DependsOn: []string{}}
	for _, d := range tree.Direct {
		rootDeps.DependsOn = append(rootDeps.DependsOn, refOf(d.Identity))
	}
	sort.Strings(rootDeps.DependsOn)
	cdxDeps := []cdxDependency{rootDeps}

	cdxComps := make([]cdxComponent, 0, len(deps))
	for _, d := range deps {
		purl := purlByName[d.Identity]
		comp := cdxComponent{
			BOMRef:  purl,
			Type:    "library",
			Name:    d.Identity,
			Version: versionOf(d.Revision),
			PURL:    purl,
			Properties: []cdxProperty{
				{Name: "stella:dependencyType", Value: dependencyType(tree, d.Identity)},
			},
		}
		if d.URL != "" {
			comp.Properties = append(comp.Properties, cdxProperty{Name: "stella:url", Value: d.URL})
		}
		if d.LocalPath != "" {
			comp.Properties = append(comp.Properties, cdxProperty{Name: "stella:localPath", Value: d.LocalPath})
		}
		cdxComps = append(cdxComps, comp)

		dep := cdxDependency{Ref: purl, DependsOn: []string{}}
		for _, child := range d.Children {
			if child == d.Identity {
				continue
			}
			if child == tree.Root {
				dep.DependsOn = append(dep.DependsOn, rootRef)
				continue
			}
			dep.DependsOn = append(dep.DependsOn, refOf(child))
		}
		cdxDeps = append(cdxDeps, dep)
	}

	// Sort dependencies by ref for deterministic output
	sort.Slice(cdxDeps, func(i, j int) bool {
		return cdxDeps[i].Ref < cdxDeps[j].Ref
	})

	var depTree []*cdxTreeNode
	for _, n := range tree.Roots {
		depTree = append(depTree, modelNodeToCDX(n, purlByName))
	}

	return cdxBOM{
		BOMFormat:    "CycloneDX",
		SpecVersion:  "1.4",
		Version:      1,
		SerialNumber: uuid.New().URN(),
		Metadata: cdxMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Tools: []cdxTool{
				{
					Vendor:  "StinkyLord",
					Name:    "stella",
					Version: toolVersion,
				},
			},
			Component: root,
		},
		Components:     cdxComps,
		Dependencies:   cdxDeps,
		DependencyTree: depTree,
	}
}

// modelNodeToCDX converts a model.TreeNode to a cdxTreeNode recursively.
func modelNodeToCDX(n *model.TreeNode, purlByName map[string]string) *cdxTreeNode {
	node := &cdxTreeNode{
		Name:    n.Name,
		Version: versionOf(n.Revision),
		PURL:    purlByName[n.Name],
		Direct:  n.DependencyType == "direct",
	}
	for _, child := range n.Children {
		node.Children = append(node.Children, modelNodeToCDX(child, purlByName))
	}
	return node
}

func dependencyType(tree *model.DependencyTree, identity string) string {
	for _, d := range tree.Direct {
		if d.Identity == identity {
			return "direct"
		}
	}
	return "transitive"
}

func versionOf(revision string) string {
	if revision == "" {
		return unversioned
	}
	return revision
}

var purlTypeByHost = map[string]string{
	"github.com":    "github",
	"gitlab.com":    "gitlab",
	"bitbucket.org": "bitbucket",
}

// PackageURL derives a purl for a dependency. Repositories on a known git
// host are named by owner and repository; anything else is a generic
// package named after its identity.
func PackageURL(identity, url, revision string) string {
	purl := "pkg:generic/" + identity
	if gitURL, err := giturl.NewGitURL(url); err == nil {
		if typ, ok := purlTypeByHost[gitURL.GetHostName()]; ok && gitURL.GetOwnerName() != "" {
			purl = "pkg:" + typ + "/" + strings.ToLower(gitURL.GetOwnerName()) + "/" +
				strings.ToLower(strings.TrimSuffix(gitURL.GetRepoName(), ".git"))
		}
	}
	if revision != "" {
		purl += "@" + revision
	}
	return purl
}
