// Package config loads stella's settings from flags, STELLA_* environment
// variables, an optional .env file and an optional .stella.yaml in the
// workspace, in decreasing order of precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	errUtils "github.com/StinkyLord/stella/internal/errors"
	"github.com/StinkyLord/stella/internal/toolchain"
)

const (
	EnvPrefix      = "STELLA"
	ConfigFileName = ".stella"
	DotEnvFileName = ".env"
)

// Keys shared by flags, environment variables and the config file.
const (
	KeyDir      = "dir"
	KeyProfile  = "config"
	KeyEnvFile  = "env"
	KeyOutput   = "output"
	KeyCompDB   = "compdb"
	KeySBOM     = "sbom"
	KeyTree     = "tree"
	KeyLogLevel = "log-level"
)

// Config holds the settings of one invocation.
type Config struct {
	Workspace string // Absolute path of the component root
	Profile   string // release or debug
	EnvFile   string // Optional YAML toolchain override
	Output    string // Ninja file, relative to the workspace unless absolute
	CompDB    string // compile_commands.json path; empty disables it
	SBOM      string // CycloneDX output; empty disables it
	Tree      string // Dependency tree JSON output; empty disables it
	LogLevel  log.Level
}

// New validates c and fills defaults.
func New(c Config) (*Config, error) {
	if c.Workspace == "" {
		return nil, errors.Wrap(errUtils.ErrInvalidConfig, "workspace directory is empty")
	}
	abs, err := filepath.Abs(c.Workspace)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "workspace %s", c.Workspace), errUtils.ErrInvalidConfig)
	}
	c.Workspace = abs
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return nil, errors.Wrapf(errUtils.ErrInvalidConfig, "%s is not a directory", abs)
	}

	if _, err := toolchain.ProfileByName(c.Profile); err != nil {
		return nil, err
	}
	if c.Profile == "" {
		c.Profile = toolchain.Release
	}
	if c.Output == "" {
		c.Output = "build.ninja"
	}
	return &c, nil
}

// Viper returns a viper instance bound to the parsed flags in fs and reading
// STELLA_* variables. The workspace directory is resolved first, from the
// dir flag when set, then STELLA_DIR, then the flag default; a .env file in
// it is loaded into the process environment without overriding variables
// that are already set, and <dir>/.stella.yaml is read when present. The
// resolved directory is pinned so Load uses the one the files came from.
func Viper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(KeyDir, ".")
	v.SetDefault(KeyProfile, toolchain.Release)
	v.SetDefault(KeyOutput, "build.ninja")
	v.SetDefault(KeyLogLevel, "info")
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "binding flags")
	}

	dir := v.GetString(KeyDir)

	if err := godotenv.Load(filepath.Join(dir, DotEnvFileName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Mark(errors.Wrapf(err, "loading %s", DotEnvFileName), errUtils.ErrInvalidConfig)
	}

	v.SetConfigType("yaml")
	v.SetConfigName(ConfigFileName)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Mark(errors.Wrapf(err, "reading %s.yaml", ConfigFileName), errUtils.ErrInvalidConfig)
		}
		log.Debug("No config file found", "dir", dir)
	} else {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
	}

	v.Set(KeyDir, dir)
	return v, nil
}

// Load builds a validated Config from v.
func Load(v *viper.Viper) (*Config, error) {
	level, err := log.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, errors.WithHint(
			errors.Mark(errors.Wrapf(err, "log level %q", v.GetString(KeyLogLevel)), errUtils.ErrInvalidConfig),
			"use one of debug, info, warn, error",
		)
	}
	return New(Config{
		Workspace: v.GetString(KeyDir),
		Profile:   v.GetString(KeyProfile),
		EnvFile:   v.GetString(KeyEnvFile),
		Output:    v.GetString(KeyOutput),
		CompDB:    v.GetString(KeyCompDB),
		SBOM:      v.GetString(KeySBOM),
		Tree:      v.GetString(KeyTree),
		LogLevel:  level,
	})
}

// Path resolves p against the workspace unless it is absolute or "-".
func (c *Config) Path(p string) string {
	if p == "" || p == "-" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Workspace, p)
}
