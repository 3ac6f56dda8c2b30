package services

import (
	"context"
	"strings"

	"emperror.dev/errors"
	"github.com/apex/log"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
)

type ModuleService struct {
	db *gorm.DB
}

func NewModuleService(db *gorm.DB) *ModuleService {
	return &ModuleService{db: db}
}

type ModuleInput struct {
	Title       string
	Description *string
}

func (s *ModuleService) Create(ctx context.Context, owner string, in ModuleInput) (*models.Module, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, NewInvalidError("title is required")
	}
	m := models.Module{Title: title, Description: in.Description, UserID: owner}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, errors.WrapIf(err, "failed to create module")
	}
	return &m, nil
}

// List returns the caller's modules, newest first.
func (s *ModuleService) List(ctx context.Context, owner string) ([]models.Module, error) {
	modules := []models.Module{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("created_at DESC, id DESC").
		Find(&modules).Error
	if err != nil {
		return nil, errors.WrapIf(err, "failed to list modules")
	}
	return modules, nil
}

// GetOwned loads a module and checks that owner created it.
func (s *ModuleService) GetOwned(ctx context.Context, owner string, id uint) (*models.Module, error) {
	return getOwnedModule(s.db.WithContext(ctx), owner, id)
}

func getOwnedModule(db *gorm.DB, owner string, id uint) (*models.Module, error) {
	var m models.Module
	if err := db.First(&m, id).Error; err != nil {
		return nil, notFoundOr(err, "Module not found")
	}
	if m.UserID != owner {
		return nil, NewForbiddenError("Not authorized to access this module")
	}
	return &m, nil
}

type ModulePatch struct {
	Title       *string
	Description *string
}

func (s *ModuleService) Update(ctx context.Context, owner string, id uint, patch ModulePatch) (*models.Module, error) {
	m, err := s.GetOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, NewInvalidError("title cannot be empty")
		}
		updates["title"] = title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if len(updates) == 0 {
		return m, nil
	}

	if err := s.db.WithContext(ctx).Model(m).Updates(updates).Error; err != nil {
		return nil, errors.WrapIf(err, "failed to update module")
	}
	if title, ok := updates["title"].(string); ok {
		m.Title = title
	}
	if patch.Description != nil {
		m.Description = patch.Description
	}
	return m, nil
}

// Delete removes the module and everything hanging off it in one transaction.
func (s *ModuleService) Delete(ctx context.Context, owner string, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := getOwnedModule(tx, owner, id)
		if err != nil {
			return err
		}

		// Collect children
		var sliderIDs, sessionIDs []uint
		if err := tx.Model(&models.Slider{}).Where("module_id = ?", m.ID).Pluck("id", &sliderIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Session{}).Where("module_id = ?", m.ID).Pluck("id", &sessionIDs).Error; err != nil {
			return err
		}

		// Sliders and their responses
		if len(sliderIDs) > 0 {
			if err := tx.Where("slider_id IN ?", sliderIDs).Delete(&models.SliderResponse{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", sliderIDs).Delete(&models.Slider{}).Error; err != nil {
				return err
			}
		}
		// Sessions with their items and feedback
		if len(sessionIDs) > 0 {
			if err := deleteSessionChildren(tx, sessionIDs); err != nil {
				return err
			}
			if err := tx.Where("id IN ?", sessionIDs).Delete(&models.Session{}).Error; err != nil {
				return err
			}
		}
		// Finally the module itself
		return tx.Delete(m).Error
	})
	if err != nil {
		if _, ok := AsServiceError(err); ok {
			return err
		}
		return errors.WrapIf(err, "failed to delete module")
	}

	log.WithFields(log.Fields{"module_id": id, "owner": owner}).Info("module deleted")
	return nil
}

func deleteSessionChildren(tx *gorm.DB, sessionIDs []uint) error {
	var metricIDs, questionIDs []uint
	if err := tx.Model(&models.Metric{}).Where("session_id IN ?", sessionIDs).Pluck("id", &metricIDs).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Question{}).Where("session_id IN ?", sessionIDs).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}

	if len(metricIDs) > 0 {
		if err := tx.Where("metric_id IN ?", metricIDs).Delete(&models.MetricValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", metricIDs).Delete(&models.Metric{}).Error; err != nil {
			return err
		}
	}
	if len(questionIDs) > 0 {
		if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.QuestionResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", questionIDs).Delete(&models.Question{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("session_id IN ?", sessionIDs).Delete(&models.TextFeedback{}).Error; err != nil {
		return err
	}
	return tx.Where("session_id IN ?", sessionIDs).Delete(&models.SliderResponse{}).Error
}
