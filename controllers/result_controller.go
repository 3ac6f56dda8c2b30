package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/services"
)

type ResultController struct {
	results *services.ResultService
}

func NewResultController(results *services.ResultService) *ResultController {
	return &ResultController{results: results}
}

// GET /feedback/sessions/:session_id/metrics/results
func (h *ResultController) Metrics(c *gin.Context) {
	results, err := h.results.MetricResults(c.Request.Context(), owner(c), middleware.SessionFrom(c).ID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// GET /feedback/sessions/:session_id/questions/results
func (h *ResultController) Questions(c *gin.Context) {
	results, err := h.results.QuestionResults(c.Request.Context(), owner(c), middleware.SessionFrom(c).ID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// GET /feedback/sessions/:session_id/sliders/results
func (h *ResultController) Sliders(c *gin.Context) {
	results, err := h.results.SliderResults(c.Request.Context(), owner(c), middleware.SessionFrom(c).ID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// GET /feedback/sessions/:session_id/text-feedback
func (h *ResultController) TextFeedback(c *gin.Context) {
	entries, err := h.results.TextFeedback(c.Request.Context(), owner(c), middleware.SessionFrom(c).ID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
