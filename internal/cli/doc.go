// Package cli wires together the Cobra command tree for the commitgate
// binary.
//
// The root command is the gate itself: it collects pending changes, runs
// the review pipeline, delivers the findings, and asks for a commit
// decision. Subcommands manage configuration files, the git hook and the
// review cache. Exit codes are 0 to continue the commit and 1 to block it.
package cli
