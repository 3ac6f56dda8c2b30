package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/controllers"
	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/services"
)

// Deps carries everything the route table needs.
type Deps struct {
	DB              *gorm.DB
	Auth            *services.AuthService
	Modules         *services.ModuleService
	Sessions        *services.SessionService
	Items           *services.ItemService
	Feedback        *services.FeedbackService
	Results         *services.ResultService
	FeedbackLimiter *middleware.IPRateLimiter
	LoginLimiter    *middleware.IPRateLimiter
}

func SetupRoutes(r *gin.Engine, d Deps) {
	health := controllers.NewHealthController(d.DB)
	authC := controllers.NewAuthController(d.Auth)
	moduleC := controllers.NewModuleController(d.Modules)
	sessionC := controllers.NewSessionController(d.Sessions)
	itemC := controllers.NewItemController(d.Items)
	feedbackC := controllers.NewFeedbackController(d.Feedback)
	resultC := controllers.NewResultController(d.Results)

	authJWT := middleware.AuthJWT(d.Auth)

	r.GET("/health", health.Check)

	r.POST("/token", middleware.RateLimitByIP(d.LoginLimiter), authC.Token)
	r.POST("/auth/google/login", middleware.RateLimitByIP(d.LoginLimiter), authC.GoogleLogin)
	r.POST("/users", authC.Register)
	r.GET("/users/me", authJWT, authC.Me)

	modules := r.Group("/modules", authJWT)
	{
		modules.POST("", moduleC.Create)
		modules.GET("", moduleC.List)
	}
	module := r.Group("/modules/:module_id", authJWT, middleware.CheckModuleOwner(d.Modules))
	{
		module.GET("", moduleC.Get)
		module.PATCH("", moduleC.Update)
		module.DELETE("", moduleC.Delete)
		module.GET("/sessions", sessionC.List)
		module.POST("/sessions/start", sessionC.Start)
		module.POST("/sliders", itemC.CreateSlider)
		module.GET("/sliders", itemC.ListSliders)
	}

	session := r.Group("/sessions/:session_id", authJWT, middleware.CheckSessionOwner(d.Sessions))
	{
		session.GET("", sessionC.Get)
		session.POST("/end", sessionC.End)
		session.POST("/metrics", itemC.CreateMetric)
		session.GET("/metrics", itemC.ListMetrics)
		session.DELETE("/metrics", itemC.DeleteSessionMetrics)
		session.POST("/questions", itemC.CreateQuestion)
		session.GET("/questions", itemC.ListQuestions)
	}

	metric := r.Group("/metrics/:metric_id", authJWT, middleware.CheckMetricOwner(d.Items))
	{
		metric.PATCH("", itemC.RenameMetric)
		metric.DELETE("", itemC.DeleteMetric)
		metric.DELETE("/values", itemC.ClearMetricValues)
	}

	// Participants: no auth, addressed by join code.
	join := r.Group("/join/:join_code")
	{
		join.GET("", sessionC.Join)
		join.GET("/metrics", itemC.JoinMetrics)
		join.GET("/questions", itemC.JoinQuestions)
		join.GET("/sliders", itemC.JoinSliders)
	}

	feedback := r.Group("/feedback")
	{
		submit := feedback.Group("", middleware.RateLimitByIP(d.FeedbackLimiter))
		submit.POST("/metric/:join_code", feedbackC.SubmitMetric)
		submit.POST("/question/:join_code", feedbackC.SubmitQuestion)
		submit.POST("/text/:join_code", feedbackC.SubmitText)
		submit.POST("/slider/:join_code", feedbackC.SubmitSlider)

		results := feedback.Group("/sessions/:session_id", authJWT, middleware.CheckSessionOwner(d.Sessions))
		results.GET("/metrics/results", resultC.Metrics)
		results.GET("/questions/results", resultC.Questions)
		results.GET("/sliders/results", resultC.Sliders)
		results.GET("/text-feedback", resultC.TextFeedback)
		results.GET("/export", resultC.Export)
	}
}
