package services

import (
	"context"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/utils"
)

var errJoinCodeTaken = errors.New("join code already in use")

type SessionService struct {
	db           *gorm.DB
	now          func() time.Time
	newCode      func(length int) string
	codeLength   int
	codeAttempts int
}

type SessionOptions struct {
	CodeLength   int
	CodeAttempts int
}

func NewSessionService(db *gorm.DB, opts SessionOptions) *SessionService {
	if opts.CodeLength <= 0 {
		opts.CodeLength = 6
	}
	if opts.CodeAttempts <= 0 {
		opts.CodeAttempts = 1
	}
	return &SessionService{
		db:           db,
		now:          time.Now,
		newCode:      utils.NewJoinCode,
		codeLength:   opts.CodeLength,
		codeAttempts: opts.CodeAttempts,
	}
}

// Start opens a new session on an owned module. Fails with Conflict while
// another session of the module is active.
func (s *SessionService) Start(ctx context.Context, owner string, moduleID uint) (*models.Session, error) {
	// Owner check
	if _, err := getOwnedModule(s.db.WithContext(ctx), owner, moduleID); err != nil {
		return nil, err
	}

	// Insert with a fresh join code, retrying only on code collisions
	for attempt := 1; attempt <= s.codeAttempts; attempt++ {
		sess, err := s.tryStart(ctx, moduleID)
		if err == nil {
			log.WithFields(log.Fields{
				"session_id": sess.ID,
				"module_id":  moduleID,
				"join_code":  sess.JoinCode,
			}).Info("session started")
			return sess, nil
		}
		if !errors.Is(err, errJoinCodeTaken) {
			return nil, err
		}
		log.WithFields(log.Fields{"module_id": moduleID, "attempt": attempt}).Warn("join code collision, retrying")
	}
	return nil, errors.Errorf("could not allocate a unique join code after %d attempts", s.codeAttempts)
}

func (s *SessionService) tryStart(ctx context.Context, moduleID uint) (*models.Session, error) {
	sess := models.Session{
		ModuleID:  moduleID,
		StartTime: s.now().UTC(),
		JoinCode:  s.newCode(s.codeLength),
		IsActive:  true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One active session per module
		if err := ensureNoActiveSession(tx, moduleID); err != nil {
			return err
		}
		return tx.Create(&sess).Error
	})
	if err == nil {
		return &sess, nil
	}
	if _, ok := AsServiceError(err); ok {
		return nil, err
	}
	if !isUniqueViolation(err) {
		return nil, errors.WrapIf(err, "failed to create session")
	}

	// Either a concurrent start won the active-session index or the join
	// code collided. Only the latter is worth another attempt.
	if err := ensureNoActiveSession(s.db.WithContext(ctx), moduleID); err != nil {
		return nil, err
	}
	return nil, errJoinCodeTaken
}

func ensureNoActiveSession(db *gorm.DB, moduleID uint) error {
	var active int64
	if err := db.Model(&models.Session{}).
		Where("module_id = ? AND is_active = ?", moduleID, true).
		Count(&active).Error; err != nil {
		return errors.WrapIf(err, "failed to check active sessions")
	}
	if active > 0 {
		return NewConflictError("An active session already exists for this module")
	}
	return nil
}

// End closes an owned session. Ending an already ended session is a Conflict.
func (s *SessionService) End(ctx context.Context, owner string, sessionID uint) (*models.Session, error) {
	sess, err := s.GetOwned(ctx, owner, sessionID)
	if err != nil {
		return nil, err
	}

	// Conditional update: only an active row flips
	now := s.now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND is_active = ?", sess.ID, true).
		Updates(map[string]any{"is_active": false, "end_time": now})
	if res.Error != nil {
		return nil, errors.WrapIf(res.Error, "failed to end session")
	}
	if res.RowsAffected == 0 {
		return nil, NewConflictError("Session already ended")
	}

	sess.IsActive = false
	sess.EndTime = &now
	log.WithFields(log.Fields{"session_id": sess.ID, "module_id": sess.ModuleID}).Info("session ended")
	return sess, nil
}

// GetOwned loads a session and checks ownership through its module.
func (s *SessionService) GetOwned(ctx context.Context, owner string, sessionID uint) (*models.Session, error) {
	return getOwnedSession(s.db.WithContext(ctx), owner, sessionID)
}

func getOwnedSession(db *gorm.DB, owner string, sessionID uint) (*models.Session, error) {
	var sess models.Session
	if err := db.First(&sess, sessionID).Error; err != nil {
		return nil, notFoundOr(err, "Session not found")
	}
	if _, err := getOwnedModule(db, owner, sess.ModuleID); err != nil {
		if HasCode(err, ErrorNotFound) {
			return nil, NewNotFoundError("Session not found")
		}
		return nil, err
	}
	return &sess, nil
}

func (s *SessionService) ListForModule(ctx context.Context, owner string, moduleID uint) ([]models.Session, error) {
	db := s.db.WithContext(ctx)
	if _, err := getOwnedModule(db, owner, moduleID); err != nil {
		return nil, err
	}
	sessions := []models.Session{}
	if err := db.Where("module_id = ?", moduleID).Order("start_time DESC, id DESC").Find(&sessions).Error; err != nil {
		return nil, errors.WrapIf(err, "failed to list sessions")
	}
	return sessions, nil
}

// ResolveActive maps a join code to its session. Ended sessions are not found.
func (s *SessionService) ResolveActive(ctx context.Context, code string) (*models.Session, error) {
	return resolveActive(s.db.WithContext(ctx), code)
}

func resolveActive(db *gorm.DB, code string) (*models.Session, error) {
	code = utils.NormalizeJoinCode(code)
	if code == "" {
		return nil, NewNotFoundError("Session not found or inactive")
	}
	var sess models.Session
	err := db.Where("join_code = ? AND is_active = ?", code, true).First(&sess).Error
	if err != nil {
		return nil, notFoundOr(err, "Session not found or inactive")
	}
	return &sess, nil
}

// EndExpired ends every active session started more than maxAge ago and
// returns how many were closed.
func (s *SessionService) EndExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	now := s.now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("is_active = ? AND start_time < ?", true, now.Add(-maxAge)).
		Updates(map[string]any{"is_active": false, "end_time": now})
	if res.Error != nil {
		return 0, errors.WrapIf(res.Error, "failed to end expired sessions")
	}
	return res.RowsAffected, nil
}
