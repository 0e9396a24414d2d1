package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"planner-cli/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the config file",
	}
	cmd.AddCommand(newConfigInitCmd(app))
	cmd.AddCommand(newConfigShowCmd(app))
	return cmd
}

func (app *App) configPath() (string, error) {
	if p := strings.TrimSpace(app.ConfigPath); p != "" {
		return p, nil
	}
	return config.Path()
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		// An explicit --config path does not exist yet; skip loading it.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return writeErr(cmd, fmt.Errorf("config file %s already exists (use --force to overwrite)", path))
			}
			cfg := config.Default()
			cfg.Normalize()
			if err := config.Write(path, cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": path}})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config (defaults, file, env and flags)",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := app.config().YAML()
			if err != nil {
				return writeErr(cmd, err)
			}
			var data map[string]any
			if err := yaml.Unmarshal(raw, &data); err != nil {
				return writeErr(cmd, err)
			}
			path, _ := app.configPath()
			return writeOut(cmd, app, map[string]any{
				"data": rendered{data: data, text: strings.TrimRight(string(raw), "\n")},
				"meta": map[string]any{"path": path},
			})
		},
	}
}
