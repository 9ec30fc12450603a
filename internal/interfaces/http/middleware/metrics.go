package middleware

import (
	"strconv"
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests gin could not route, keeping label cardinality bounded
const unmatchedRoute = "unmatched"

// HTTPMetrics records request duration by method, route pattern and status.
// A nil metrics yields a pass-through middleware.
func HTTPMetrics(metrics *telemetry.Metrics) gin.HandlerFunc {
	if metrics == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		metrics.ObserveHTTP(
			c.Request.Method,
			routePattern(c),
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

// routePattern returns the matched route (e.g. "/api/v1/posts/:mediaId") instead of the raw path
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
