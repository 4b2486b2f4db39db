package cmd

import (
	"github.com/spf13/cobra"

	"github.com/StinkyLord/stella/internal/config"
	"github.com/StinkyLord/stella/internal/fetcher"
	"github.com/StinkyLord/stella/internal/generator"
	"github.com/StinkyLord/stella/internal/model"
	"github.com/StinkyLord/stella/internal/output"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Resolve dependencies and print the dependency tree",
	Long: `Fetch every dependency of the component and print the resolved tree as
JSON. Direct dependencies are at the top level; each node lists the
dependencies it declares itself.`,
	Args: cobra.NoArgs,
	RunE: runDeps,
}

func init() {
	depsCmd.Flags().StringP(config.KeyTree, "o", "-", "Output file path (use '-' for stdout)")
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, _ []string) error {
	layout := model.DefaultLayout()
	g := generator.New(cfg.Workspace, fetcher.New(cfg.Workspace, layout))
	g.Layout = layout

	resolved, err := g.Resolve(cmd.Context())
	if err != nil {
		return err
	}
	return output.WriteDependencyTree(model.BuildDependencyTree(resolved), cfg.Path(cfg.Tree))
}
