// Package confirm implements the commit confirmation prompt.
//
// Inside a commit hook standard input is usually redirected or closed by the
// VCS, so the prompt opens the controlling terminal directly (/dev/tty, or
// CONIN$/CONOUT$ on Windows). When none exists, [Gate.Ask] returns an error
// wrapping [ErrNoTerminal] and the caller decides what to do.
package confirm
