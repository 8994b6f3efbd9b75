package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/commitgate/internal/providers"
	"github.com/dshills/commitgate/internal/vcs"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, version control and provider credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: configuration: %v\n", err)
			exitCode = ExitBlocked
			return nil
		}
		cfg := res.Config

		loaded := res.Loaded()
		if len(loaded) == 0 {
			fmt.Fprintln(os.Stdout, "WARN: no configuration file found, run commitgate init-config")
		}
		for _, l := range loaded {
			fmt.Fprintf(os.Stdout, "OK: %s: %s\n", l.Name, l.Path)
		}

		backend, err := vcs.Select(cfg.VCSType, vcs.Options{Logger: newLogger(os.Stderr, false)})
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			exitCode = ExitBlocked
			return nil
		}
		fmt.Fprintf(os.Stdout, "OK: %s\n", vcs.Describe(backend))

		fmt.Fprintf(os.Stdout, "Checking %s...\n", cfg.Provider)
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		p, err := providers.New(ctx, providers.Settings{
			Provider: cfg.Provider,
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			exitCode = ExitBlocked
			return nil
		}

		_, err = p.Review(ctx, providers.ReviewRequest{
			SystemPrompt: "Respond with exactly: ok",
			UserPrompt:   "ping",
			MaxTokens:    10,
		})
		if err != nil {
			if providers.IsAuthError(err) {
				fmt.Fprintf(os.Stderr, "FAIL: %s rejected the API key: %v\n", p.Name(), err)
			} else {
				fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			}
			exitCode = ExitBlocked
			return nil
		}

		fmt.Fprintf(os.Stdout, "OK: %s is configured and responding\n", p.Name())
		return nil
	},
}

func init() {
	doctorCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider to check")
	doctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
	doctorCmd.Flags().StringVar(&flagVCS, "vcs", "", "Version control system (git, svn)")
}
