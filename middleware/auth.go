package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/services"
)

const (
	CtxUser      = "user"
	CtxModule    = "moduleObj"
	CtxSession   = "sessionObj"
	CtxMetric    = "metricObj"
	CtxRequestID = "request_id"
)

// UserResolver turns a bearer token into the active user it was issued for.
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// AuthJWT requires an "Authorization: Bearer <token>" header and injects the
// resolved user into the context.
func AuthJWT(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Authorization: Bearer <token>
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			RespondError(c, services.NewUnauthorizedError("Not authenticated"))
			return
		}

		// Token must map to an enabled user
		user, err := users.CurrentUser(c.Request.Context(), token)
		if err != nil {
			RespondError(c, err)
			return
		}

		c.Set(CtxUser, user)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// CurrentUser returns the user set by AuthJWT.
func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(CtxUser).(*models.User)
}
