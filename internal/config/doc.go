// Package config resolves cargo-junit settings from command-line flags,
// environment variables, a YAML file and built-in defaults.
//
// Priority order (highest to lowest):
//  1. CLI flags (--format, --theme, --output, --suite-prefix, --debug, --no-color)
//  2. Environment (CARGO_JUNIT_FORMAT, CARGO_JUNIT_THEME, CARGO_JUNIT_OUTPUT,
//     CARGO_JUNIT_DEBUG, NO_COLOR)
//  3. .cargo-junit.yaml in the working directory, then
//     $XDG_CONFIG_HOME/cargo-junit/config.yaml
//  4. Defaults
package config
