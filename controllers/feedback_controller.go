package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/services"
)

// FeedbackController serves the anonymous participant endpoints.
type FeedbackController struct {
	feedback *services.FeedbackService
}

func NewFeedbackController(feedback *services.FeedbackService) *FeedbackController {
	return &FeedbackController{feedback: feedback}
}

// Value and Answer are pointers: 0 and false must still satisfy "required".
type metricValueReq struct {
	MetricID uint `json:"metric_id" binding:"required"`
	Value    *int `json:"value" binding:"required"`
}

type questionResponseReq struct {
	QuestionID uint  `json:"question_id" binding:"required"`
	Answer     *bool `json:"answer" binding:"required"`
}

type textFeedbackReq struct {
	Content string `json:"content" binding:"required"`
}

type sliderResponseReq struct {
	SliderID uint `json:"slider_id" binding:"required"`
	Value    *int `json:"value" binding:"required"`
}

// POST /feedback/metric/:join_code
func (h *FeedbackController) SubmitMetric(c *gin.Context) {
	var req metricValueReq
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.feedback.SubmitMetricValue(c.Request.Context(), c.Param("join_code"), req.MetricID, *req.Value); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// POST /feedback/question/:join_code
func (h *FeedbackController) SubmitQuestion(c *gin.Context) {
	var req questionResponseReq
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.feedback.SubmitQuestionResponse(c.Request.Context(), c.Param("join_code"), req.QuestionID, *req.Answer); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// POST /feedback/text/:join_code
func (h *FeedbackController) SubmitText(c *gin.Context) {
	var req textFeedbackReq
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.feedback.SubmitText(c.Request.Context(), c.Param("join_code"), req.Content); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// POST /feedback/slider/:join_code
func (h *FeedbackController) SubmitSlider(c *gin.Context) {
	var req sliderResponseReq
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.feedback.SubmitSliderValue(c.Request.Context(), c.Param("join_code"), req.SliderID, *req.Value); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
