package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/services"
)

type ModuleLoader interface {
	GetOwned(ctx context.Context, owner string, id uint) (*models.Module, error)
}

type SessionLoader interface {
	GetOwned(ctx context.Context, owner string, id uint) (*models.Session, error)
}

type MetricLoader interface {
	GetOwnedMetric(ctx context.Context, owner string, id uint) (*models.Metric, error)
}

// ParamID parses a positive numeric path parameter.
func ParamID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, services.NewInvalidError("invalid " + name)
	}
	return uint(id), nil
}

// CheckModuleOwner loads :module_id into the context after checking that the
// caller owns it.
func CheckModuleOwner(modules ModuleLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParamID(c, "module_id")
		if err != nil {
			RespondError(c, err)
			return
		}
		m, err := modules.GetOwned(c.Request.Context(), CurrentUser(c).Username, id)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.Set(CtxModule, m)
		c.Next()
	}
}

// CheckSessionOwner does the same for :session_id, via the session's module.
func CheckSessionOwner(sessions SessionLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParamID(c, "session_id")
		if err != nil {
			RespondError(c, err)
			return
		}
		s, err := sessions.GetOwned(c.Request.Context(), CurrentUser(c).Username, id)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.Set(CtxSession, s)
		c.Next()
	}
}

func CheckMetricOwner(metrics MetricLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParamID(c, "metric_id")
		if err != nil {
			RespondError(c, err)
			return
		}
		m, err := metrics.GetOwnedMetric(c.Request.Context(), CurrentUser(c).Username, id)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.Set(CtxMetric, m)
		c.Next()
	}
}

func ModuleFrom(c *gin.Context) *models.Module {
	return c.MustGet(CtxModule).(*models.Module)
}

func SessionFrom(c *gin.Context) *models.Session {
	return c.MustGet(CtxSession).(*models.Session)
}

func MetricFrom(c *gin.Context) *models.Metric {
	return c.MustGet(CtxMetric).(*models.Metric)
}
