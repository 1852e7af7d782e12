// Package config loads the optional rebuild.toml file sitting next to a
// workflow file. No command calls it: the CLI's run flags are not merged
// with values from this file.
package config

// Config is the top-level configuration structure mapping to rebuild.toml.
type Config struct {
	Project ProjectConfig `toml:"project"`
	Run     RunConfig     `toml:"run"`
}

// ProjectConfig maps to the [project] section in rebuild.toml.
type ProjectConfig struct {
	Name        string `toml:"name"`
	DefaultPlan string `toml:"default_plan"`
}

// RunConfig maps to the [run] section in rebuild.toml.
type RunConfig struct {
	OutputDir     string `toml:"output_dir"`
	ConfirmWrites bool   `toml:"confirm_writes"`
	// LogFormat is either "text" or "json".
	LogFormat string `toml:"log_format"`
}
