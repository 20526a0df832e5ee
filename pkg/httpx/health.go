package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (database.Database, cache.RedisClient, events.EventBus and
// workflows.TemporalClient all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks holds the set of dependencies to probe in the health endpoint.
// A nil checker is reported as "disabled" and does not degrade the status.
type HealthChecks struct {
	Database HealthChecker
	Redis    HealthChecker
	EventBus HealthChecker
	Temporal HealthChecker
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	EventBus string `json:"event_bus"`
	Temporal string `json:"temporal"`
}

const (
	healthTimeout = 2 * time.Second

	probeOK          = "ok"
	probeDisabled    = "disabled"
	probeUnreachable = "unreachable"
)

// HealthHandler pings every configured dependency concurrently, each bounded
// by the same deadline. Any unreachable dependency turns the response into a
// 503 with status "degraded".
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		var resp healthResponse
		var wg sync.WaitGroup
		probe := func(c HealthChecker, out *string) {
			if c == nil {
				*out = probeDisabled
				return
			}
			wg.Go(func() {
				*out = probeOK
				if err := c.Ping(ctx); err != nil {
					*out = probeUnreachable
				}
			})
		}
		probe(checks.Database, &resp.Database)
		probe(checks.Redis, &resp.Redis)
		probe(checks.EventBus, &resp.EventBus)
		probe(checks.Temporal, &resp.Temporal)
		wg.Wait()

		status, code := "ok", http.StatusOK
		for _, s := range []string{resp.Database, resp.Redis, resp.EventBus, resp.Temporal} {
			if s == probeUnreachable {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		resp.Status = status
		JSON(w, code, resp)
	}
}
