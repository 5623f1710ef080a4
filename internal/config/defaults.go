package config

const (
	defaultDataDir                  = "~/.local/share/foyer"
	defaultLogDir                   = "~/.local/share/foyer/logs"
	defaultRegistryBaseURL          = "https://api.association-acm.fr/api"
	defaultRegistryFetchTimeout     = 15
	defaultRegistryDemoNoticeDelay  = 1
	defaultRegistrySyncInterval     = 900
	defaultScannerDecoderBinary     = "zbarcam"
	defaultScannerDecodeTimeout     = 120
	defaultScannerStartPauseMillis  = 300
	defaultScannerRestartDelay      = 3
	defaultScannerMaxAutoRestarts   = 3
	defaultScannerManualPromptDelay = 3
	defaultSessionTickInterval      = 1
	defaultAttendanceMaxRecords     = 10
	defaultNotifyRequestTimeout     = 10
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Registry: Registry{
			BaseURL:         defaultRegistryBaseURL,
			FetchTimeout:    defaultRegistryFetchTimeout,
			DemoNoticeDelay: defaultRegistryDemoNoticeDelay,
			SyncInterval:    defaultRegistrySyncInterval,
		},
		Scanner: Scanner{
			DecoderBinary:     defaultScannerDecoderBinary,
			DecodeTimeout:     defaultScannerDecodeTimeout,
			StartPauseMillis:  defaultScannerStartPauseMillis,
			RestartDelay:      defaultScannerRestartDelay,
			MaxAutoRestarts:   defaultScannerMaxAutoRestarts,
			ManualPromptDelay: defaultScannerManualPromptDelay,
		},
		Session: Session{
			TickInterval: defaultSessionTickInterval,
		},
		Attendance: Attendance{
			MaxRecords: defaultAttendanceMaxRecords,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
