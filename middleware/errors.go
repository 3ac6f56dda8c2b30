package middleware

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/services"
)

var statusByCode = map[services.ErrorCode]int{
	services.ErrorInvalid:      http.StatusUnprocessableEntity,
	services.ErrorNotFound:     http.StatusNotFound,
	services.ErrorConflict:     http.StatusConflict,
	services.ErrorForbidden:    http.StatusForbidden,
	services.ErrorUnauthorized: http.StatusUnauthorized,
	services.ErrorInactive:     http.StatusBadRequest,
}

// RespondError aborts the request with the status matching err. Errors that
// are not service errors are logged and reported as a generic 500.
func RespondError(c *gin.Context, err error) {
	se, ok := services.AsServiceError(err)
	if !ok {
		log.WithError(err).WithFields(log.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString(CtxRequestID),
		}).Error("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	status, found := statusByCode[se.Code]
	if !found {
		status = http.StatusInternalServerError
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, gin.H{"message": se.Message})
}
