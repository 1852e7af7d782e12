package config

// NewDefaults returns a Config populated with all default values, used when
// no rebuild.toml is found or a field is left unset.
func NewDefaults() *Config {
	return &Config{
		Project: ProjectConfig{
			DefaultPlan: "all",
		},
		Run: RunConfig{
			OutputDir:     "output",
			ConfirmWrites: true,
			LogFormat:     "text",
		},
	}
}
