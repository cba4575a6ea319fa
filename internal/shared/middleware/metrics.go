package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatherly/server/internal/utils/metrics"
)

// Metrics records request counts, durations and in-flight gauge per
// route pattern (not per raw URL, to keep label cardinality bounded).
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
