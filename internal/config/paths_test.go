package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cardmark/internal/constants"
)

func TestHomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	t.Run("defaults under user home", func(t *testing.T) {
		t.Setenv(constants.HomeEnvVar, "")

		dir, err := GlobalConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, constants.CardmarkHome), dir)

		path, err := GlobalConfigPath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".cardmark", "config.yaml"), path)
	})

	t.Run("env override", func(t *testing.T) {
		custom := filepath.Join(t.TempDir(), "cm")
		t.Setenv(constants.HomeEnvVar, custom)

		dir, err := HomeDir()
		require.NoError(t, err)
		assert.Equal(t, custom, dir)

		path, err := GlobalConfigPath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(custom, "config.yaml"), path)
	})
}

func TestProjectConfigPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".cardmark", ProjectConfigDir())
	assert.Equal(t, filepath.Join(".cardmark", "config.yaml"), ProjectConfigPath())
}
