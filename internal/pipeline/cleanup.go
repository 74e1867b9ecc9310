package pipeline

import (
	"log/slog"
	"os"
	"sync"
)

// cleanupList is a scoped list of release functions, registered as a Run
// invocation creates temporary resources (extracted audio, work
// directories) and drained on every exit path — success, error, or
// cancellation — so nothing is leaked regardless of which stage failed.
type cleanupList struct {
	mu    sync.Mutex
	funcs []func()
}

func (c *cleanupList) add(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcs = append(c.funcs, fn)
}

// run invokes every registered cleanup in reverse registration order (most
// recently created resource released first).
func (c *cleanupList) run() {
	c.mu.Lock()
	funcs := append([]func(){}, c.funcs...)
	c.funcs = nil
	c.mu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		funcs[i]()
	}
}

// removeFile returns a cleanup func that best-effort removes path, logging
// (at debug level) rather than failing if the remove itself errors.
func removeFile(log *slog.Logger, path string) func() {
	return func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Debug("cleanup: failed to remove temp file", "path", path, "error", err)
		}
	}
}
