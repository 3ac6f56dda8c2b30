package services

import (
	"context"
	"strings"

	"emperror.dev/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
)

// ItemService manages the things participants answer: metrics and questions
// of a session, sliders of a module.
type ItemService struct {
	db *gorm.DB
}

func NewItemService(db *gorm.DB) *ItemService {
	return &ItemService{db: db}
}

func requireText(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", NewInvalidError(field + " is required")
	}
	return v, nil
}

// Metrics

func (s *ItemService) CreateMetric(ctx context.Context, owner string, sessionID uint, title string) (*models.Metric, error) {
	title, err := requireText("title", title)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := getOwnedSession(db, owner, sessionID); err != nil {
		return nil, err
	}
	m := models.Metric{SessionID: sessionID, Title: title}
	if err := db.Create(&m).Error; err != nil {
		return nil, errors.WrapIf(err, "failed to create metric")
	}
	return &m, nil
}

func (s *ItemService) ListMetrics(ctx context.Context, owner string, sessionID uint) ([]models.Metric, error) {
	db := s.db.WithContext(ctx)
	if _, err := getOwnedSession(db, owner, sessionID); err != nil {
		return nil, err
	}
	return listBySession[models.Metric](db, sessionID)
}

// GetOwnedMetric walks metric -> session -> module to check ownership.
func (s *ItemService) GetOwnedMetric(ctx context.Context, owner string, metricID uint) (*models.Metric, error) {
	return getOwnedMetric(s.db.WithContext(ctx), owner, metricID)
}

func getOwnedMetric(db *gorm.DB, owner string, metricID uint) (*models.Metric, error) {
	var m models.Metric
	if err := db.First(&m, metricID).Error; err != nil {
		return nil, notFoundOr(err, "Metric not found")
	}
	if _, err := getOwnedSession(db, owner, m.SessionID); err != nil {
		if HasCode(err, ErrorNotFound) {
			return nil, NewNotFoundError("Metric not found")
		}
		return nil, err
	}
	return &m, nil
}

func (s *ItemService) RenameMetric(ctx context.Context, owner string, metricID uint, title string) (*models.Metric, error) {
	title, err := requireText("title", title)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	m, err := getOwnedMetric(db, owner, metricID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(m).Update("title", title).Error; err != nil {
		return nil, errors.WrapIf(err, "failed to update metric")
	}
	m.Title = title
	return m, nil
}

// DeleteMetric removes a metric and its values.
func (s *ItemService) DeleteMetric(ctx context.Context, owner string, metricID uint) error {
	return s.inTx(ctx, "failed to delete metric", func(tx *gorm.DB) error {
		m, err := getOwnedMetric(tx, owner, metricID)
		if err != nil {
			return err
		}
		if err := tx.Where("metric_id = ?", m.ID).Delete(&models.MetricValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
}

// DeleteSessionMetrics removes every metric of a session with their values
// and returns how many metrics were removed.
func (s *ItemService) DeleteSessionMetrics(ctx context.Context, owner string, sessionID uint) (int64, error) {
	var deleted int64
	err := s.inTx(ctx, "failed to delete metrics", func(tx *gorm.DB) error {
		if _, err := getOwnedSession(tx, owner, sessionID); err != nil {
			return err
		}
		var ids []uint
		if err := tx.Model(&models.Metric{}).Where("session_id = ?", sessionID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("metric_id IN ?", ids).Delete(&models.MetricValue{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Metric{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

// ClearMetricValues removes all submitted values of a metric, keeping the metric.
func (s *ItemService) ClearMetricValues(ctx context.Context, owner string, metricID uint) (int64, error) {
	var deleted int64
	err := s.inTx(ctx, "failed to delete metric values", func(tx *gorm.DB) error {
		m, err := getOwnedMetric(tx, owner, metricID)
		if err != nil {
			return err
		}
		res := tx.Where("metric_id = ?", m.ID).Delete(&models.MetricValue{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

// Questions

func (s *ItemService) CreateQuestion(ctx context.Context, owner string, sessionID uint, text string) (*models.Question, error) {
	text, err := requireText("text", text)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := getOwnedSession(db, owner, sessionID); err != nil {
		return nil, err
	}
	q := models.Question{SessionID: sessionID, Text: text}
	if err := db.Create(&q).Error; err != nil {
		return nil, errors.WrapIf(err, "failed to create question")
	}
	return &q, nil
}

func (s *ItemService) ListQuestions(ctx context.Context, owner string, sessionID uint) ([]models.Question, error) {
	db := s.db.WithContext(ctx)
	if _, err := getOwnedSession(db, owner, sessionID); err != nil {
		return nil, err
	}
	return listBySession[models.Question](db, sessionID)
}

// Sliders

func (s *ItemService) CreateSlider(ctx context.Context, owner string, moduleID uint, text string) (*models.Slider, error) {
	text, err := requireText("text", text)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := getOwnedModule(db, owner, moduleID); err != nil {
		return nil, err
	}
	sl := models.Slider{ModuleID: moduleID, Text: text}
	if err := db.Create(&sl).Error; err != nil {
		return nil, errors.WrapIf(err, "failed to create slider")
	}
	return &sl, nil
}

func (s *ItemService) ListSliders(ctx context.Context, owner string, moduleID uint) ([]models.Slider, error) {
	db := s.db.WithContext(ctx)
	if _, err := getOwnedModule(db, owner, moduleID); err != nil {
		return nil, err
	}
	return listSliders(db, moduleID)
}

// Participant views, resolved through an active join code.

func (s *ItemService) MetricsForCode(ctx context.Context, code string) ([]models.Metric, error) {
	db := s.db.WithContext(ctx)
	sess, err := resolveActive(db, code)
	if err != nil {
		return nil, err
	}
	return listBySession[models.Metric](db, sess.ID)
}

func (s *ItemService) QuestionsForCode(ctx context.Context, code string) ([]models.Question, error) {
	db := s.db.WithContext(ctx)
	sess, err := resolveActive(db, code)
	if err != nil {
		return nil, err
	}
	return listBySession[models.Question](db, sess.ID)
}

func (s *ItemService) SlidersForCode(ctx context.Context, code string) ([]models.Slider, error) {
	db := s.db.WithContext(ctx)
	sess, err := resolveActive(db, code)
	if err != nil {
		return nil, err
	}
	return listSliders(db, sess.ModuleID)
}

func listBySession[T any](db *gorm.DB, sessionID uint) ([]T, error) {
	rows := []T{}
	if err := db.Where("session_id = ?", sessionID).Order("id").Find(&rows).Error; err != nil {
		return nil, errors.WrapIf(err, "failed to list items")
	}
	return rows, nil
}

func listSliders(db *gorm.DB, moduleID uint) ([]models.Slider, error) {
	sliders := []models.Slider{}
	if err := db.Where("module_id = ?", moduleID).Order("id").Find(&sliders).Error; err != nil {
		return nil, errors.WrapIf(err, "failed to list sliders")
	}
	return sliders, nil
}

func (s *ItemService) inTx(ctx context.Context, msg string, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	if _, ok := AsServiceError(err); ok {
		return err
	}
	return errors.WrapIf(err, msg)
}
