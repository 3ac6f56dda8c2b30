package services

import (
	"context"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/feedback-server/config"
	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/utils"
)

func init() {
	log.SetHandler(discard.New())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fixedClock {
	return &fixedClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

// codeSequence hands out the given join codes in order, then repeats the last.
func codeSequence(codes ...string) func(int) string {
	i := 0
	return func(int) string {
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c
	}
}

type fixture struct {
	db       *gorm.DB
	clock    *fixedClock
	auth     *AuthService
	modules  *ModuleService
	sessions *SessionService
	items    *ItemService
	feedback *FeedbackService
	results  *ResultService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	clock := newClock()

	tokens := utils.NewTokenIssuer("test-secret", 30*time.Minute).WithClock(clock.Now)
	sessions := NewSessionService(db, SessionOptions{CodeLength: 6, CodeAttempts: 3})
	sessions.now = clock.Now
	feedback := NewFeedbackService(db)
	feedback.now = clock.Now

	return &fixture{
		db:       db,
		clock:    clock,
		auth:     NewAuthService(db, tokens, ""),
		modules:  NewModuleService(db),
		sessions: sessions,
		items:    NewItemService(db),
		feedback: feedback,
		results:  NewResultService(db),
	}
}

func (f *fixture) module(t *testing.T, owner string) *models.Module {
	t.Helper()
	m, err := f.modules.Create(context.Background(), owner, ModuleInput{Title: "Distributed Systems"})
	if err != nil {
		t.Fatalf("create module: %v", err)
	}
	return m
}

func (f *fixture) startSession(t *testing.T, owner string, moduleID uint) *models.Session {
	t.Helper()
	sess, err := f.sessions.Start(context.Background(), owner, moduleID)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return sess
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func expectCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !HasCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}
