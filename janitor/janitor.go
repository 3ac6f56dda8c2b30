package janitor

import (
	"context"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/go-co-op/gocron/v2"
)

// SessionCloser ends sessions that have been open for too long.
type SessionCloser interface {
	EndExpired(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Janitor periodically ends sessions older than the configured maximum
// duration. Participants of a forgotten session stop being able to submit.
type Janitor struct {
	sessions  SessionCloser
	maxAge    time.Duration
	scheduler gocron.Scheduler
}

func New(sessions SessionCloser, maxAge, interval time.Duration) (*Janitor, error) {
	if maxAge <= 0 || interval <= 0 {
		return nil, errors.New("janitor: max age and interval must be positive")
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapIf(err, "janitor: failed to create scheduler")
	}

	jan := &Janitor{sessions: sessions, maxAge: maxAge, scheduler: s}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { jan.Run(context.Background()) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, errors.WrapIf(err, "janitor: failed to schedule sweep")
	}
	return jan, nil
}

func (jan *Janitor) Start() {
	log.WithField("max_age", jan.maxAge).Info("janitor: started")
	jan.scheduler.Start()
}

func (jan *Janitor) Stop() error {
	return jan.scheduler.Shutdown()
}

// Run performs one sweep and returns the number of sessions it ended.
func (jan *Janitor) Run(ctx context.Context) int64 {
	ended, err := jan.sessions.EndExpired(ctx, jan.maxAge)
	if err != nil {
		log.WithError(err).Error("janitor: failed to end expired sessions")
		return 0
	}
	if ended > 0 {
		log.WithField("ended", ended).Info("janitor: ended expired sessions")
	}
	return ended
}
