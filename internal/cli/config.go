package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/commitgate/internal/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Create the user global configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := config.DefaultPaths()
		if paths.User == "" {
			return fmt.Errorf("cannot determine home directory")
		}
		return writeTemplate(paths.User, config.LayerUser)
	},
}

var initNodeConfigCmd = &cobra.Command{
	Use:   "init-node-config",
	Short: "Create the installation global configuration file next to the executable",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := config.DefaultPaths()
		if paths.Install == "" {
			return fmt.Errorf("cannot determine executable directory")
		}
		return writeTemplate(paths.Install, config.LayerInstall)
	},
}

var configHelpCmd = &cobra.Command{
	Use:   "config-help",
	Short: "Explain where configuration is read from",
	Run: func(cmd *cobra.Command, args []string) {
		wd, _ := os.Getwd()
		config.WriteHelp(cmd.OutOrStdout(), config.DefaultPaths(), wd)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect commitgate configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration and the files it came from",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := config.Load(config.Options{})
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(res.Config, "", "  ")
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, string(data))
		for _, l := range res.Loaded() {
			fmt.Fprintf(w, "loaded %s: %s\n", l.Name, l.Path)
		}
		return nil
	},
}

// writeTemplate reports an existing file without failing the command.
func writeTemplate(path, location string) error {
	err := config.WriteTemplate(path, location)
	if errors.Is(err, config.ErrExists) {
		fmt.Fprintf(os.Stderr, "Config file already exists at %s\n", path)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Config file created at %s\n", path)
	fmt.Fprintln(os.Stdout, "Edit it and set API_KEY to enable reviews.")
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
