// Package scheduler runs the daily delinquency job: defaulting credits with
// sustained overdue installments and emailing payment notices.
package scheduler

import (
	"time"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler owns the cron runner
type Scheduler struct {
	cron *cron.Cron
	svc  *service.Service
	log  *logrus.Logger
}

// New creates a scheduler with the delinquency job registered at 08:00 daily
func New(svc *service.Service, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		svc:  svc,
		log:  log,
	}
	if _, err := s.cron.AddFunc("0 8 * * *", s.runDelinquencyCheck); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the cron runner in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Delinquency scheduler started")
}

// Stop halts the cron runner and waits for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runDelinquencyCheck() {
	started := time.Now()
	if err := s.svc.RunDelinquencyCheck(started); err != nil {
		s.log.Errorf("Delinquency check failed: %v", err)
		return
	}
	s.log.Infof("Delinquency check finished in %s", time.Since(started))
}
