package cli

import (
	"io"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/commitgate/internal/config"
)

// Gate flags
var (
	flagWeb        bool
	flagFile       bool
	flagConsole    bool
	flagOutputMode string
	flagWebPort    int
	flagNoBrowser  bool
	flagDebug      bool
	flagVCS        string
	flagProvider   string
	flagModel      string
	flagNoCache    bool
	flagNoRedact   bool
)

func addGateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&flagWeb, "web", false, "Show results in the web dashboard")
	f.BoolVar(&flagFile, "file", false, "Write results to a markdown report file")
	f.BoolVar(&flagConsole, "console", false, "Print results to the console")
	f.StringVar(&flagOutputMode, "output-mode", "", "Delivery mode (console, file, web)")
	f.IntVar(&flagWebPort, "web-port", 0, "Port for the web dashboard")
	f.BoolVar(&flagNoBrowser, "no-browser", false, "Do not open the dashboard in a browser")
	f.BoolVar(&flagDebug, "debug", false, "Print configuration and diagnostic details")
	f.StringVar(&flagVCS, "vcs", "", "Version control system (git, svn); detected when empty")
	f.StringVar(&flagProvider, "provider", "", "Review provider (openai, anthropic, gemini, ollama)")
	f.StringVar(&flagModel, "model", "", "Model name")
	f.BoolVar(&flagNoCache, "no-cache", false, "Do not reuse cached reviews")
	f.BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.MarkFlagsMutuallyExclusive("web", "file", "console", "output-mode")
}

// resetFlags restores every gate flag to its zero value.
func resetFlags() {
	flagWeb, flagFile, flagConsole = false, false, false
	flagOutputMode = ""
	flagWebPort = 0
	flagNoBrowser, flagDebug = false, false
	flagVCS, flagProvider, flagModel = "", "", ""
	flagNoCache, flagNoRedact = false, false
}

// buildOverrides maps set flags onto configuration keys. Values are
// validated by config.Load like any other source.
func buildOverrides() map[string]string {
	m := make(map[string]string)
	switch {
	case flagWeb:
		m[config.KeyOutputMode] = string(config.ModeWeb)
	case flagFile:
		m[config.KeyOutputMode] = string(config.ModeFile)
	case flagConsole:
		m[config.KeyOutputMode] = string(config.ModeConsole)
	case flagOutputMode != "":
		m[config.KeyOutputMode] = flagOutputMode
	}
	if flagWebPort != 0 {
		m[config.KeyWebPort] = strconv.Itoa(flagWebPort)
	}
	if flagNoBrowser {
		m[config.KeyAutoOpenBrowser] = "false"
	}
	if flagVCS != "" {
		m[config.KeyVCSType] = flagVCS
	}
	if flagProvider != "" {
		m[config.KeyProvider] = flagProvider
	}
	if flagModel != "" {
		m[config.KeyModel] = flagModel
	}
	if flagNoCache {
		m[config.KeyCacheEnabled] = "false"
	}
	if flagNoRedact {
		m[config.KeyRedactSecrets] = "false"
	}
	return m
}

// newLogger returns the diagnostic logger. Warnings always reach stderr;
// --debug adds timestamps.
func newLogger(w io.Writer, debug bool) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	if debug {
		return log.New(w, "", log.Ltime|log.Lmicroseconds)
	}
	return log.New(w, "", 0)
}

func loadConfig() (config.Result, error) {
	return config.Load(config.Options{Overrides: buildOverrides()})
}
