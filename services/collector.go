package services

import (
	"context"
	"fmt"

	"emperror.dev/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
)

// submit is the shared join-code-scoped submission path of every collector:
// resolve the active session, let build validate the target and shape the
// row, then insert it. All of it happens in one transaction so a session
// ended concurrently cannot receive the row.
func submit[T any](ctx context.Context, db *gorm.DB, code string, build func(tx *gorm.DB, sess *models.Session) (*T, error)) (*T, error) {
	var row *T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Join code must name an active session
		sess, err := resolveActive(tx, code)
		if err != nil {
			return err
		}
		// Collector-specific target check and row
		row, err = build(tx, sess)
		if err != nil {
			return err
		}
		return tx.Create(row).Error
	})
	if err != nil {
		if _, ok := AsServiceError(err); ok {
			return nil, err
		}
		return nil, errors.WrapIf(err, "failed to store feedback")
	}
	return row, nil
}

func checkRange(field string, value, lo, hi int) error {
	if value < lo || value > hi {
		return NewInvalidError(fmt.Sprintf("%s must be between %d and %d", field, lo, hi))
	}
	return nil
}
