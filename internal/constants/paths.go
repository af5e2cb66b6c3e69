package constants

// Log file settings.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.cardmark/logs/cardmark.log
	CLILogFileName = "cardmark.log"

	// LogMaxSizeMB is the size at which the CLI log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files kept.
	LogMaxBackups = 3

	// LogMaxAgeDays is the age after which rotated log files are removed.
	LogMaxAgeDays = 28

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global configuration file.
	// This file is located in the cardmark home directory.
	GlobalConfigName = "config.yaml"

	// EnvPrefix is the prefix for environment variable overrides (e.g. CARDMARK_BATCH_PARALLELISM).
	EnvPrefix = "CARDMARK"
)

// HomeEnvVar relocates the cardmark home directory (default ~/.cardmark),
// which holds the global config file and the CLI log.
const HomeEnvVar = "CARDMARK_HOME"
