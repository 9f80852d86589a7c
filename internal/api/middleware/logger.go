// Package middleware holds the gin middleware the HTTP surface wraps
// every request in: structured request logging and permissive CORS
// for the decision/simulation endpoints.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger writes one structured method/path/status/latency log line per
// request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logrus.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     path,
			"status":   c.Writer.Status(),
			"latency":  time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}).Info("request handled")
	}
}
