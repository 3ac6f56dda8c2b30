package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/services"
)

type ItemController struct {
	items *services.ItemService
}

func NewItemController(items *services.ItemService) *ItemController {
	return &ItemController{items: items}
}

type titleReq struct {
	Title string `json:"title" binding:"required,max=255"`
}

type textReq struct {
	Text string `json:"text" binding:"required"`
}

func owner(c *gin.Context) string {
	return middleware.CurrentUser(c).Username
}

// POST /sessions/:session_id/metrics
func (h *ItemController) CreateMetric(c *gin.Context) {
	var req titleReq
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.items.CreateMetric(c.Request.Context(), owner(c), middleware.SessionFrom(c).ID, req.Title)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// GET /sessions/:session_id/metrics
func (h *ItemController) ListMetrics(c *gin.Context) {
	metrics, err := h.items.ListMetrics(c.Request.Context(), owner(c), middleware.SessionFrom(c).ID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// PATCH /metrics/:metric_id
func (h *ItemController) RenameMetric(c *gin.Context) {
	var req titleReq
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.items.RenameMetric(c.Request.Context(), owner(c), middleware.MetricFrom(c).ID, req.Title)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// DELETE /metrics/:metric_id
func (h *ItemController) DeleteMetric(c *gin.Context) {
	if err := h.items.DeleteMetric(c.Request.Context(), owner(c), middleware.MetricFrom(c).ID); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /sessions/:session_id/metrics
func (h *ItemController) DeleteSessionMetrics(c *gin.Context) {
	if _, err := h.items.DeleteSessionMetrics(c.Request.Context(), owner(c), middleware.SessionFrom(c).ID); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /metrics/:metric_id/values
func (h *ItemController) ClearMetricValues(c *gin.Context) {
	if _, err := h.items.ClearMetricValues(c.Request.Context(), owner(c), middleware.MetricFrom(c).ID); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /sessions/:session_id/questions
func (h *ItemController) CreateQuestion(c *gin.Context) {
	var req textReq
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.items.CreateQuestion(c.Request.Context(), owner(c), middleware.SessionFrom(c).ID, req.Text)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

// GET /sessions/:session_id/questions
func (h *ItemController) ListQuestions(c *gin.Context) {
	questions, err := h.items.ListQuestions(c.Request.Context(), owner(c), middleware.SessionFrom(c).ID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// POST /modules/:module_id/sliders
func (h *ItemController) CreateSlider(c *gin.Context) {
	var req textReq
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.items.CreateSlider(c.Request.Context(), owner(c), middleware.ModuleFrom(c).ID, req.Text)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// GET /modules/:module_id/sliders
func (h *ItemController) ListSliders(c *gin.Context) {
	sliders, err := h.items.ListSliders(c.Request.Context(), owner(c), middleware.ModuleFrom(c).ID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sliders)
}

// GET /join/:join_code/metrics
func (h *ItemController) JoinMetrics(c *gin.Context) {
	metrics, err := h.items.MetricsForCode(c.Request.Context(), c.Param("join_code"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// GET /join/:join_code/questions
func (h *ItemController) JoinQuestions(c *gin.Context) {
	questions, err := h.items.QuestionsForCode(c.Request.Context(), c.Param("join_code"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GET /join/:join_code/sliders
func (h *ItemController) JoinSliders(c *gin.Context) {
	sliders, err := h.items.SlidersForCode(c.Request.Context(), c.Param("join_code"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sliders)
}
