package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/commitgate/internal/exitctl"
	"github.com/dshills/commitgate/internal/web"
)

const version = "1.0.0"

// Exit codes seen by the VCS hook.
const (
	ExitContinue = 0
	ExitBlocked  = 1
)

var rootCmd = &cobra.Command{
	Use:   "commitgate",
	Short: "AI code review gate for git and svn commits",
	Long: "commitgate sends each staged file to a language-model reviewer, presents the findings " +
		"in the console, a report file or a local web dashboard, and asks whether the commit should continue.",
	SilenceUsage: true,
	RunE:         runGate,
}

// controller is set by Run. Commands register long-lived resources with it.
var controller *exitctl.Controller

// Run executes the command line and returns the exit code. ctl may be nil.
func Run(ctl *exitctl.Controller) int {
	controller = ctl
	if controller == nil {
		controller = exitctl.New()
	}
	web.Version = version

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitBlocked
	}
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitContinue

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print commitgate version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "commitgate version %s\n", version)
	},
}

func init() {
	addGateFlags(rootCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(initNodeConfigCmd)
	rootCmd.AddCommand(configHelpCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(doctorCmd)
}
