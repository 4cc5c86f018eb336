package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "icarus_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// EngagementToggles counts like and bookmark toggles by kind and resulting state.
	EngagementToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "icarus_engagement_toggles_total",
		Help: "Total number of like and bookmark toggles",
	}, []string{"kind", "state"})

	// PostsCreated counts published posts by category.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "icarus_posts_created_total",
		Help: "Total number of posts created",
	}, []string{"category"})

	// AuthAttempts counts sign-in and sign-up attempts by outcome.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "icarus_auth_attempts_total",
		Help: "Total number of authentication attempts",
	}, []string{"action", "result"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics middleware. The
// underlying collectors register once, however many servers are built.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// ToggleState labels a toggle outcome.
func ToggleState(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
