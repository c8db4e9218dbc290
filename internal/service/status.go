package service

import (
	"context"
	"time"

	"hose_installation/internal/logger"
	"hose_installation/internal/models"
	"hose_installation/internal/nfc"
)

// StatusService keeps the hub fed with reader snapshots.
type StatusService struct {
	poller *nfc.Poller
	hub    *nfc.Hub
	log    *logger.Logger
}

func NewStatusService(poller *nfc.Poller, hub *nfc.Hub, log *logger.Logger) *StatusService {
	return &StatusService{poller: poller, hub: hub, log: log}
}

// Current returns the latest snapshot, polling once if none has been seen yet.
func (s *StatusService) Current(ctx context.Context) models.StatusSnapshot {
	if snap, ok := s.hub.Latest(); ok {
		return snap
	}
	return s.PollNow(ctx)
}

func (s *StatusService) PollNow(ctx context.Context) models.StatusSnapshot {
	snap := s.poller.Poll(ctx)
	s.hub.Publish(snap)
	return snap
}

func (s *StatusService) Subscribe() chan interface{} { return s.hub.Subscribe() }

func (s *StatusService) Unsubscribe(ch chan interface{}) { s.hub.Unsubscribe(ch) }

// Run polls every tick until ctx is cancelled, then waits for the task to stop.
func (s *StatusService) Run(ctx context.Context, tick time.Duration) {
	if s.log != nil {
		s.log.Infow("nfc_status_monitor_started", "interval", tick)
	}
	task := s.poller.Start(ctx, tick, s.hub.Publish)
	<-ctx.Done()
	task.Cancel()
	<-task.Done()
	if s.log != nil {
		s.log.Infow("nfc_status_monitor_stopped")
	}
}
