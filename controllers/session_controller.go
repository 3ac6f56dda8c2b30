package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/services"
)

type SessionController struct {
	sessions *services.SessionService
}

func NewSessionController(sessions *services.SessionService) *SessionController {
	return &SessionController{sessions: sessions}
}

// POST /modules/:module_id/sessions/start
func (h *SessionController) Start(c *gin.Context) {
	sess, err := h.sessions.Start(c.Request.Context(), middleware.CurrentUser(c).Username, middleware.ModuleFrom(c).ID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// GET /modules/:module_id/sessions
func (h *SessionController) List(c *gin.Context) {
	sessions, err := h.sessions.ListForModule(c.Request.Context(), middleware.CurrentUser(c).Username, middleware.ModuleFrom(c).ID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GET /sessions/:session_id
func (h *SessionController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.SessionFrom(c))
}

// POST /sessions/:session_id/end
func (h *SessionController) End(c *gin.Context) {
	sess, err := h.sessions.End(c.Request.Context(), middleware.CurrentUser(c).Username, middleware.SessionFrom(c).ID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type joinView struct {
	SessionID uint      `json:"session_id"`
	ModuleID  uint      `json:"module_id"`
	JoinCode  string    `json:"join_code"`
	StartTime time.Time `json:"start_time"`
}

// GET /join/:join_code
func (h *SessionController) Join(c *gin.Context) {
	sess, err := h.sessions.ResolveActive(c.Request.Context(), c.Param("join_code"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, joinView{
		SessionID: sess.ID,
		ModuleID:  sess.ModuleID,
		JoinCode:  sess.JoinCode,
		StartTime: sess.StartTime,
	})
}
