package config

const (
	defaultConfigPath          = "~/.config/vtplay/config.toml"
	projectConfigName          = "vtplay.toml"
	defaultLogDir              = "~/.local/share/vtplay/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultCorrectionFactor    = 0.5
	defaultFrameDelayMS        = 40
	defaultTerminalWidth       = 80
	defaultTerminalHeight      = 24
	defaultTerminalReservedRow = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Player: Player{
			FFmpegBinary:        defaultFFmpegBinary,
			FFprobeBinary:       defaultFFprobeBinary,
			CorrectionFactor:    defaultCorrectionFactor,
			DefaultFrameDelayMS: defaultFrameDelayMS,
			Realtime:            true,
			StatusLine:          true,
			AltScreen:           true,
		},
		Terminal: Terminal{
			FallbackWidth:  defaultTerminalWidth,
			FallbackHeight: defaultTerminalHeight,
			ReservedRows:   defaultTerminalReservedRow,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
	}
}
