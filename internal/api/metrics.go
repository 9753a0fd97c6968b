package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-quake-dashboard/internal/observability"
)

// MetricsMiddleware counts requests by matched route and response status.
func MetricsMiddleware(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
