package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"lectio/internal/config"
)

const redacted = "********"

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create, inspect and validate the configuration file",
	}
	configCmd.AddCommand(
		newConfigInitCommand(),
		newConfigValidateCommand(ctx),
		newConfigShowCommand(ctx),
	)
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				switch _, err := os.Stat(target); {
				case err == nil:
					return fmt.Errorf("%s already exists (pass --overwrite to replace it)", target)
				case !errors.Is(err, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set scripture.api_key (or export SCRIPTURE_API_KEY) before fetching passages.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// configTarget resolves the --path flag, falling back to the XDG default.
func configTarget(flag string) (string, error) {
	if flag = strings.TrimSpace(flag); flag == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(flag)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

type configReport struct {
	Path            string `json:"path"`
	Exists          bool   `json:"exists"`
	DataDir         string `json:"data_dir"`
	ScriptureKeySet bool   `json:"scripture_key_set"`
	ImageEnabled    bool   `json:"image_enabled"`
	Valid           bool   `json:"valid"`
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and report problems",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, resolved, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			report := configReport{
				Path:            resolved,
				Exists:          exists,
				DataDir:         cfg.Paths.DataDir,
				ScriptureKeySet: cfg.Scripture.APIKey != "",
				ImageEnabled:    cfg.Image.Enabled,
				Valid:           true,
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fileKind, fileNote := checkOK, "loaded"
			if !exists {
				fileKind, fileNote = checkWarn, "not found; defaults in use"
			}
			keyKind, keyNote := checkOK, "set"
			if !report.ScriptureKeySet {
				keyKind, keyNote = checkWarn, "missing; passages will be unavailable"
			}
			fmt.Fprintln(out, renderHeading("Configuration", colorize))
			fmt.Fprintln(out, renderCheckLine("Config file", fileKind, fileNote+" ("+resolved+")", colorize))
			fmt.Fprintln(out, renderCheckLine("Data directory", checkInfo, report.DataDir, colorize))
			fmt.Fprintln(out, renderCheckLine("Scripture API key", keyKind, keyNote, colorize))
			fmt.Fprintln(out, renderCheckLine("Image generation", checkInfo, yesNo(report.ImageEnabled), colorize))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.Scripture.APIKey != "" {
				shown.Scripture.APIKey = redacted
			}
			if shown.Image.APIKey != "" {
				shown.Image.APIKey = redacted
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, shown)
			}
			data, err := toml.Marshal(shown)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
