package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
)

// FeedbackService accepts anonymous participant submissions against a join code.
type FeedbackService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db, now: time.Now}
}

func (s *FeedbackService) SubmitMetricValue(ctx context.Context, code string, metricID uint, value int) (*models.MetricValue, error) {
	if err := checkRange("value", value, models.MetricValueMin, models.MetricValueMax); err != nil {
		return nil, err
	}
	return submit(ctx, s.db, code, func(tx *gorm.DB, sess *models.Session) (*models.MetricValue, error) {
		var metric models.Metric
		if err := tx.Where("id = ? AND session_id = ?", metricID, sess.ID).First(&metric).Error; err != nil {
			return nil, notFoundOr(err, "Metric not found in this session")
		}
		return &models.MetricValue{MetricID: metric.ID, Value: value, Timestamp: s.now().UTC()}, nil
	})
}

func (s *FeedbackService) SubmitQuestionResponse(ctx context.Context, code string, questionID uint, answer bool) (*models.QuestionResponse, error) {
	return submit(ctx, s.db, code, func(tx *gorm.DB, sess *models.Session) (*models.QuestionResponse, error) {
		var q models.Question
		if err := tx.Where("id = ? AND session_id = ?", questionID, sess.ID).First(&q).Error; err != nil {
			return nil, notFoundOr(err, "Question not found in this session")
		}
		return &models.QuestionResponse{QuestionID: q.ID, Answer: answer, Timestamp: s.now().UTC()}, nil
	})
}

func (s *FeedbackService) SubmitText(ctx context.Context, code, content string) (*models.TextFeedback, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewInvalidError("content is required")
	}
	return submit(ctx, s.db, code, func(_ *gorm.DB, sess *models.Session) (*models.TextFeedback, error) {
		return &models.TextFeedback{SessionID: sess.ID, Content: content, Timestamp: s.now().UTC()}, nil
	})
}

// SubmitSliderValue records a slider position. Sliders live on the module, so
// the slider must belong to the module of the resolved session.
func (s *FeedbackService) SubmitSliderValue(ctx context.Context, code string, sliderID uint, value int) (*models.SliderResponse, error) {
	if err := checkRange("value", value, models.SliderValueMin, models.SliderValueMax); err != nil {
		return nil, err
	}
	return submit(ctx, s.db, code, func(tx *gorm.DB, sess *models.Session) (*models.SliderResponse, error) {
		var slider models.Slider
		if err := tx.Where("id = ? AND module_id = ?", sliderID, sess.ModuleID).First(&slider).Error; err != nil {
			return nil, notFoundOr(err, "Slider not found for this session")
		}
		return &models.SliderResponse{
			SliderID:  slider.ID,
			SessionID: sess.ID,
			Value:     value,
			Timestamp: s.now().UTC(),
		}, nil
	})
}
