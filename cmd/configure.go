package cmd

import (
	"os"

	log "github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/StinkyLord/stella/internal/config"
	"github.com/StinkyLord/stella/internal/fetcher"
	"github.com/StinkyLord/stella/internal/generator"
	"github.com/StinkyLord/stella/internal/model"
	"github.com/StinkyLord/stella/internal/output"
	"github.com/StinkyLord/stella/internal/toolchain"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Resolve dependencies and generate build.ninja",
	Long: `Fetch every dependency of the component, merge them into it and write
the ninja build file. Run ninja afterwards to build.

Examples:
  stella configure
  stella configure --config debug --compdb compile_commands.json
  stella configure --dir path/to/component --env toolchain.yaml --sbom sbom.json`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringP(config.KeyProfile, "c", toolchain.Release, "Build profile: release or debug")
	configureCmd.Flags().StringP(config.KeyEnvFile, "e", "", "YAML file overriding the platform-default build environment")
	configureCmd.Flags().StringP(config.KeyOutput, "o", "build.ninja", "Ninja file to write")
	configureCmd.Flags().String(config.KeyCompDB, "", "Also write a compilation database to this path")
	configureCmd.Flags().String(config.KeySBOM, "", "Also write a CycloneDX SBOM of the dependencies to this path ('-' for stdout)")
	configureCmd.Flags().String(config.KeyTree, "", "Also write the dependency tree as JSON to this path ('-' for stdout)")

	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	layout := model.DefaultLayout()
	if err := createLayout(cfg, layout); err != nil {
		return err
	}

	profile, err := toolchain.ProfileByName(cfg.Profile)
	if err != nil {
		return err
	}

	g := generator.New(cfg.Workspace, fetcher.New(cfg.Workspace, layout))
	g.Layout = layout
	g.Profile = profile
	if cfg.EnvFile != "" {
		if g.Override, err = toolchain.LoadOverride(cfg.Path(cfg.EnvFile)); err != nil {
			return err
		}
	}

	res, err := g.Generate(cmd.Context())
	if err != nil {
		return err
	}

	ninjaPath := cfg.Path(cfg.Output)
	if err := output.WriteNinjaFile(res.Graph, ninjaPath); err != nil {
		return err
	}
	log.Info("Wrote build file", "path", ninjaPath, "defaults", len(res.Graph.Defaults))

	if cfg.CompDB != "" {
		if err := output.WriteCompileCommands(res.Graph, cfg.Workspace, cfg.Path(cfg.CompDB)); err != nil {
			return errors.Wrap(err, "writing compilation database")
		}
	}
	if cfg.SBOM != "" {
		if err := output.WriteCycloneDX(res.Tree, cfg.Path(cfg.SBOM), toolVersion); err != nil {
			return errors.Wrap(err, "writing CycloneDX output")
		}
	}
	if cfg.Tree != "" {
		if err := output.WriteDependencyTree(res.Tree, cfg.Path(cfg.Tree)); err != nil {
			return errors.Wrap(err, "writing dependency tree")
		}
	}
	return nil
}

// createLayout creates the build tree directories.
func createLayout(c *config.Config, l model.Layout) error {
	for _, d := range l.Dirs() {
		if err := os.MkdirAll(c.Path(d), 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", d)
		}
	}
	return nil
}
