// internal/common/database/health.go
package database

import (
	"context"
	"time"
)

// Pinger is any backing store that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckAll pings every dependency with a per-check timeout and returns the
// failures keyed by name. An empty map means all dependencies are reachable.
func CheckAll(ctx context.Context, timeout time.Duration, deps map[string]Pinger) map[string]string {
	failures := make(map[string]string)
	for name, dep := range deps {
		if dep == nil {
			continue
		}
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		if err := dep.Ping(checkCtx); err != nil {
			failures[name] = err.Error()
		}
		cancel()
	}
	return failures
}
