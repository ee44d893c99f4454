// Package jobs runs the periodic housekeeping that keeps session and dedup
// tables bounded.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Schedules for the housekeeping jobs.
const (
	SessionSweepSchedule = "@every 15m"
	EventPurgeSchedule   = "@hourly"
)

// Store is the storage the jobs clean up.
type Store interface {
	DeleteStaleSessions(ctx context.Context, idleSince time.Time) (int64, error)
	PurgeProcessedEvents(ctx context.Context, before time.Time) (int64, error)
}

// MaintenanceJob removes abandoned conversations and expired dedup ids.
type MaintenanceJob struct {
	store      Store
	sessionTTL time.Duration
	dedupTTL   time.Duration
	log        *zap.Logger
	now        func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewMaintenanceJob creates a new maintenance job scheduler
func NewMaintenanceJob(store Store, sessionTTL, dedupTTL time.Duration, log *zap.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		store:      store,
		sessionTTL: sessionTTL,
		dedupTTL:   dedupTTL,
		log:        log,
		now:        time.Now,
	}
}

// Start schedules both jobs. Calling Start twice is a no-op.
func (j *MaintenanceJob) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return nil
	}

	c := cron.New(cron.WithChain(cron.Recover(cronLogger{j.log})))
	if _, err := c.AddFunc(SessionSweepSchedule, func() { j.SweepSessions(context.Background()) }); err != nil {
		return fmt.Errorf("jobs: schedule session sweep: %w", err)
	}
	if _, err := c.AddFunc(EventPurgeSchedule, func() { j.PurgeEvents(context.Background()) }); err != nil {
		return fmt.Errorf("jobs: schedule event purge: %w", err)
	}
	c.Start()

	j.cron = c
	j.running = true
	j.log.Info("maintenance jobs started",
		zap.Duration("session_ttl", j.sessionTTL),
		zap.Duration("dedup_ttl", j.dedupTTL))
	return nil
}

// Stop halts scheduling and waits for a running job to finish or ctx to end.
func (j *MaintenanceJob) Stop(ctx context.Context) {
	j.mu.Lock()
	c := j.cron
	j.cron = nil
	j.running = false
	j.mu.Unlock()
	if c == nil {
		return
	}

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		j.log.Warn("maintenance jobs did not stop in time")
	}
}

// SweepSessions deletes sessions idle for longer than the session TTL.
func (j *MaintenanceJob) SweepSessions(ctx context.Context) int64 {
	n, err := j.store.DeleteStaleSessions(ctx, j.now().Add(-j.sessionTTL))
	if err != nil {
		j.log.Error("session sweep failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		j.log.Info("stale sessions removed", zap.Int64("count", n))
	}
	return n
}

// PurgeEvents forgets webhook ids older than the dedup TTL.
func (j *MaintenanceJob) PurgeEvents(ctx context.Context) int64 {
	n, err := j.store.PurgeProcessedEvents(ctx, j.now().Add(-j.dedupTTL))
	if err != nil {
		j.log.Error("processed event purge failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		j.log.Info("processed events purged", zap.Int64("count", n))
	}
	return n
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ log *zap.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
