package httpx

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthChecker is satisfied by any dependency that exposes Ping
// (database.Database, cache.RedisClient, events.EventBus, workflows.TemporalClient).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks maps a component name to its checker. Nil checkers are skipped, so
// optional dependencies can be listed unconditionally.
type HealthChecks map[string]HealthChecker

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthHandler runs every registered checker in parallel and answers 503
// when any of them fails.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name, c := range checks {
		if c != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		var mu sync.Mutex
		var g errgroup.Group
		for _, name := range names {
			g.Go(func() error {
				state := "ok"
				if err := checks[name].Ping(ctx); err != nil {
					state = "unreachable"
				}
				mu.Lock()
				resp.Checks[name] = state
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		for _, state := range resp.Checks {
			if state != "ok" {
				resp.Status = "degraded"
			}
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
