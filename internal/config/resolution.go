package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Environment variables consulted by Resolve.
const (
	EnvFormat  = "CARGO_JUNIT_FORMAT"
	EnvTheme   = "CARGO_JUNIT_THEME"
	EnvOutput  = "CARGO_JUNIT_OUTPUT"
	EnvDebug   = "CARGO_JUNIT_DEBUG"
	EnvNoColor = "NO_COLOR"
)

// Value sources, recorded for --debug output.
const (
	SourceCLI     = "cli"
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// ErrInvalidValue is returned for an unrecognized format or theme name.
var ErrInvalidValue = errors.New("invalid value")

// Formats and themes accepted by Resolve.
var (
	Formats = []string{"auto", "junit", "sarif", "json", "terminal", "llm"}
	Themes  = []string{"default", "orca", "mono"}
)

// CliFlags holds command-line values. Empty strings are unset; bools carry
// an explicit Set marker.
type CliFlags struct {
	Format      string
	Theme       string
	Output      string
	SuitePrefix string
	Debug       bool
	DebugSet    bool
	NoColor     bool
	NoColorSet  bool

	// ConfigPath overrides the configuration file search.
	ConfigPath string
	// Dir is where the local configuration file is looked up; "" means the
	// working directory.
	Dir string
}

// Resolved is the final configuration with the origin of each value.
type Resolved struct {
	Format      string
	Theme       string
	Output      string
	SuitePrefix string
	CargoArgs   []string
	Debug       bool
	NoColor     bool

	ConfigPath   string // "" when no file was loaded
	FormatSource string
	ThemeSource  string
	OutputSource string
}

// Resolve merges flags, environment, configuration file and defaults in
// that priority order and validates the result.
func Resolve(flags CliFlags) (*Resolved, error) {
	path := flags.ConfigPath
	if path == "" {
		path = FindConfigPath(flags.Dir)
	}
	file := &FileConfig{}
	if path != "" {
		var err error
		if file, err = LoadFile(path); err != nil {
			return nil, err
		}
	}

	r := &Resolved{
		SuitePrefix: file.SuitePrefix,
		CargoArgs:   file.CargoArgs,
		ConfigPath:  path,
	}
	r.Format, r.FormatSource = pick(flags.Format, EnvFormat, file.Format, DefaultFormat)
	r.Theme, r.ThemeSource = pick(flags.Theme, EnvTheme, file.Theme, DefaultTheme)
	r.Output, r.OutputSource = pick(flags.Output, EnvOutput, file.Output, "")
	if flags.SuitePrefix != "" {
		r.SuitePrefix = flags.SuitePrefix
	}

	r.Debug = pickBool(flags.Debug, flags.DebugSet, getEnvBool(EnvDebug), file.Debug)
	r.NoColor = pickBool(flags.NoColor, flags.NoColorSet, getEnvPresent(EnvNoColor), file.NoColor)
	if r.NoColor {
		r.Theme = "mono"
	}

	if !slices.Contains(Formats, r.Format) {
		return nil, fmt.Errorf("%w: format %q from %s (want one of %s)",
			ErrInvalidValue, r.Format, r.FormatSource, strings.Join(Formats, ", "))
	}
	if !slices.Contains(Themes, r.Theme) {
		return nil, fmt.Errorf("%w: theme %q from %s (want one of %s)",
			ErrInvalidValue, r.Theme, r.ThemeSource, strings.Join(Themes, ", "))
	}
	return r, nil
}

func pick(cli, env, file, def string) (string, string) {
	if cli != "" {
		return cli, SourceCLI
	}
	if v := os.Getenv(env); v != "" {
		return v, SourceEnv
	}
	if file != "" {
		return file, SourceFile
	}
	return def, SourceDefault
}

func pickBool(cli, cliSet bool, env, file *bool) bool {
	if cliSet {
		return cli
	}
	if env != nil {
		return *env
	}
	if file != nil {
		return *file
	}
	return false
}

// getEnvBool parses a boolean environment variable. A non-empty value that
// is not a boolean counts as true.
func getEnvBool(key string) *bool {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		b = true
	}
	return &b
}

// getEnvPresent reports a non-empty variable as true whatever its value, as
// no-color.org defines NO_COLOR. It returns nil when the variable is unset.
func getEnvPresent(key string) *bool {
	if os.Getenv(key) == "" {
		return nil
	}
	b := true
	return &b
}
