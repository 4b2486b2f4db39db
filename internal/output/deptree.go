package output

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/renameio/v2"

	"github.com/StinkyLord/stella/internal/model"
)

// WriteDependencyTree serialises the dependency tree as JSON and writes it to
// the given output path. If outputPath is "-", it writes to stdout.
//
// The output is a JSON array of direct dependency nodes, each carrying a
// "children" array that recursively contains its own dependencies.
//
// Example output:
//
//	[
//	  {
//	    "name": "libcore",
//	    "url": "https://github.com/acme/libcore.git",
//	    "revision": "v1.2.0",
//	    "localPath": "deps/libcore",
//	    "dependencyType": "direct",
//	    "children": [
//	      {
//	        "name": "libutil",
//	        "url": "https://github.com/acme/libutil.git",
//	        "localPath": "deps/libutil",
//	        "dependencyType": "direct"
//	      }
//	    ]
//	  }
//	]
func WriteDependencyTree(tree *model.DependencyTree, outputPath string) error {
	if tree == nil || len(tree.Roots) == 0 {
		// Emit an empty array rather than null
		return writeJSON(outputPath, []struct{}{})
	}

	return writeJSON(outputPath, tree.Roots)
}

// writeJSON marshals v as indented JSON and writes it to outputPath (or stdout if "-").
func writeJSON(outputPath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	data = append(data, '\n')

	if outputPath == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}

	return renameio.WriteFile(outputPath, data, 0o644)
}
