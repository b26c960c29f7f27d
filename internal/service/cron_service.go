package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stayview/bookinsightsapi/pkg/utils/zaplogger"
)

// CronService runs the scheduled maintenance jobs
type CronService struct {
	c      *cron.Cron
	tokens TokenStore
}

// NewCronService creates a new CronService
func NewCronService(tokens TokenStore) *CronService {
	return &CronService{
		c:      cron.New(),
		tokens: tokens,
	}
}

// Start starts the cron service
func (cs *CronService) Start() {
	zaplogger.Info("Initializing CronService")

	// Expired tokens are rejected by signature validation regardless; the
	// prune job keeps the issued set from growing without bound.
	cs.addScheduledJob("Issued tokens PRUNE Job", cs.tokenPruneJob, "*/15 * * * *") // Every 15 minutes

	cs.c.Start()
}

// Stop stops the cron service
func (cs *CronService) Stop() {
	cs.c.Stop()
}

func (cs *CronService) addScheduledJob(name string, job func(), schedule string) {
	_, err := cs.c.AddFunc(schedule, func() {
		zaplogger.Info("STARTED SCHEDULED job", zaplogger.Fields{
			"job": name,
		})
		job()
		zaplogger.Info("COMPLETED SCHEDULED job", zaplogger.Fields{
			"job": name,
		})
	})
	if err != nil {
		zaplogger.Error("FAILED to schedule job", zaplogger.Fields{
			"job":   name,
			"error": err,
		})
		return
	}
	zaplogger.Info("SCHEDULED job", zaplogger.Fields{
		"job":      name,
		"schedule": schedule,
	})
}

func (cs *CronService) tokenPruneJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := cs.tokens.Prune(ctx, time.Now().UTC())
	if err != nil {
		zaplogger.Error("failed to prune issued tokens", zaplogger.Fields{"error": err})
		return
	}
	if removed > 0 {
		zaplogger.Info("pruned expired tokens", zaplogger.Fields{"removed": removed})
	}
}
