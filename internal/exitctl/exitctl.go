package exitctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const (
	// DefaultGrace is the pause between flushing output and exiting.
	DefaultGrace = 150 * time.Millisecond
	// DefaultCloseTimeout bounds how long registered resources may take to close.
	DefaultCloseTimeout = 2 * time.Second
)

type namedCloser struct {
	name string
	c    io.Closer
}

// Controller terminates the process with an intended status even when open
// servers or terminal streams would keep it alive.
type Controller struct {
	Grace        time.Duration
	CloseTimeout time.Duration
	// Streams are synced before exiting. Defaults to stdout and stderr.
	Streams []*os.File
	Stderr  io.Writer

	// Termination steps, tried in order until one does not return.
	exitFn  func(int)
	killFn  func() error
	abortFn func(int)
	sleep   func(time.Duration)

	mu      sync.Mutex
	closers []namedCloser
}

// New returns a Controller that exits the real process.
func New() *Controller {
	return &Controller{
		Grace:        DefaultGrace,
		CloseTimeout: DefaultCloseTimeout,
		Streams:      []*os.File{os.Stdout, os.Stderr},
		Stderr:       os.Stderr,
		exitFn:       os.Exit,
		killFn:       killSelf,
		abortFn:      syscall.Exit,
		sleep:        time.Sleep,
	}
}

// Register adds a resource to close before exiting. Resources close in
// reverse registration order.
func (c *Controller) Register(name string, closer io.Closer) {
	if closer == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, namedCloser{name, closer})
}

// NotifyContext returns a context cancelled on Ctrl+C or SIGTERM.
func (c *Controller) NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Exit closes registered resources, flushes output, waits the grace period
// and terminates with code. If normal termination returns, it kills the
// process, and as a last resort exits through the raw system call.
func (c *Controller) Exit(code int) {
	c.CloseAll()
	c.flush()
	c.sleep(c.Grace)

	c.exitFn(code)

	c.warnf("exit(%d) returned, killing process", code)
	if err := c.killFn(); err != nil {
		c.warnf("kill failed: %v", err)
	}
	c.abortFn(code)
}

// CloseAll closes every registered resource, giving up after CloseTimeout.
// It is safe to call more than once.
func (c *Controller) CloseAll() {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()
	if len(closers) == 0 {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].c.Close(); err != nil {
				c.warnf("closing %s: %v", closers[i].name, err)
			}
		}
	}()

	timeout := c.CloseTimeout
	if timeout <= 0 {
		timeout = DefaultCloseTimeout
	}
	select {
	case <-done:
	case <-time.After(timeout):
		c.warnf("resources still open after %s, exiting anyway", timeout)
	}
}

func (c *Controller) flush() {
	for _, f := range c.Streams {
		if f != nil {
			_ = f.Sync()
		}
	}
}

func (c *Controller) warnf(format string, args ...any) {
	if c.Stderr == nil {
		return
	}
	fmt.Fprintf(c.Stderr, "[exit] "+format+"\n", args...)
}

func killSelf() error {
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		return err
	}
	return p.Kill()
}
