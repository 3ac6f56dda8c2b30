package middleware

import (
	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-Id"

// AttachRequestID tags every request with an id, reusing a valid one sent by
// the client, and echoes it back in the response headers.
func AttachRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(CtxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(params gin.LogFormatterParams) string {
		entry := log.WithFields(log.Fields{
			"client_ip":  params.ClientIP,
			"status":     params.StatusCode,
			"latency":    params.Latency,
			"request_id": params.Keys[CtxRequestID],
		})
		switch {
		case params.StatusCode >= 500:
			entry.Errorf("%s %s", params.Method, params.Path)
		case params.StatusCode >= 400:
			entry.Warnf("%s %s", params.Method, params.Path)
		default:
			entry.Infof("%s %s", params.Method, params.Path)
		}
		return ""
	})
}
