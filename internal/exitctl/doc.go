// Package exitctl ends the process with a decided status code.
//
// The shutdown sequence is: close owned resources (dashboard server, open
// streams) with a timeout, sync stdout and stderr, wait a short grace
// period, then os.Exit. Should that return, the process kills itself, and
// the raw exit system call is the last resort.
package exitctl
