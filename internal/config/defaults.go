package config

const (
	defaultConfigPath       = "~/.config/vapourbox/config.toml"
	projectConfigName       = "vapourbox.toml"
	defaultTempDirName      = "vapourbox"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultProgressInterval = 500
	defaultFrameWindow      = 11
	defaultFrameRate        = 29.97
	defaultHistoryPath      = "~/.local/share/vapourbox/history.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Progress: Progress{
			IntervalMS: defaultProgressInterval,
		},
		Preview: Preview{
			FrameWindow:      defaultFrameWindow,
			DefaultFrameRate: defaultFrameRate,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
	}
}
