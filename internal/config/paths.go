package config

import (
	"os"
	"path/filepath"

	"github.com/mrz1836/cardmark/internal/constants"
	"github.com/mrz1836/cardmark/internal/errors"
)

// HomeDir resolves the cardmark home directory: $CARDMARK_HOME when set,
// otherwise ~/.cardmark.
func HomeDir() (string, error) {
	if dir := os.Getenv(constants.HomeEnvVar); dir != "" {
		return dir, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(userHome, constants.CardmarkHome), nil
}

// GlobalConfigDir is the directory holding the user-wide config file.
func GlobalConfigDir() (string, error) {
	return HomeDir()
}

// GlobalConfigPath returns the user-wide config file path.
func GlobalConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", errors.Wrap(err, "get global config path")
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigDir is relative to the working directory.
func ProjectConfigDir() string {
	return constants.CardmarkHome
}

// ProjectConfigPath returns the project config file path, relative to the
// working directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.CardmarkHome, constants.GlobalConfigName)
}
