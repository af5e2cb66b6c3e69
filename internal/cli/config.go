package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/cardmark/internal/config"
	"github.com/mrz1836/cardmark/internal/tui"
)

// maskedValue stands in for key material in config output.
const maskedValue = "********"

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect cardmark configuration",
	}
	cmd.AddCommand(newConfigShowCmd(flags))
	root.AddCommand(cmd)
}

func newConfigShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective configuration after merging defaults, the global
config (~/.cardmark/config.yaml), the project config (.cardmark/config.yaml)
and CARDMARK_* environment variables. With --config only that file is read.

Key material is never printed; the key section reports where a key was found.

Examples:
  cardmark config show
  cardmark config show -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}
}

// keyStatus describes the signing key without revealing it.
type keyStatus struct {
	EnvVar  string `json:"env_var" yaml:"env_var"`
	EnvSet  bool   `json:"env_set" yaml:"env_set"`
	KeyFile string `json:"key_file,omitempty" yaml:"key_file,omitempty"`
	Loaded  bool   `json:"loaded" yaml:"loaded"`
	Origin  string `json:"origin,omitempty" yaml:"origin,omitempty"`
	Key     string `json:"key,omitempty" yaml:"key,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// configView is what config show renders.
type configView struct {
	Config *config.Config `json:"config" yaml:"config"`
	Key    keyStatus      `json:"key" yaml:"key"`
}

func runConfigShow(ctx context.Context, w io.Writer, flags *GlobalFlags) error {
	cfg, err := loadConfig(ctx, flags)
	if err != nil {
		return err
	}

	view := configView{Config: cfg, Key: describeKey(ctx, cfg)}

	if flags.Output == OutputJSON {
		return tui.NewOutput(w, flags.Output).JSON(view)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func describeKey(ctx context.Context, cfg *config.Config) keyStatus {
	status := keyStatus{EnvVar: cfg.Signing.KeyEnvVar, KeyFile: cfg.Signing.KeyFile}
	if v, ok := os.LookupEnv(cfg.Signing.KeyEnvVar); ok && v != "" {
		status.EnvSet = true
	}

	keys := newKeyManager(cfg)
	if err := keys.Load(ctx); err != nil {
		status.Error = err.Error()
		return status
	}
	status.Loaded = true
	status.Origin = keys.Origin()
	status.Key = maskedValue
	return status
}
