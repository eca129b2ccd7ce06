package scheduler

import (
	"context"

	"github.com/likhilliki/EcoPulse/internal/service"
	"github.com/likhilliki/EcoPulse/pkg/logger"

	"github.com/robfig/cron/v3"
)

// AgentScheduler runs the hourly maintenance sweep: promote pending
// verifications and reconcile the token ledger.
type AgentScheduler struct {
	cron         *cron.Cron
	agentSvc     *service.AgentService
	reconcileSvc *service.ReconcileService
	cronExpr     string
}

func NewAgentScheduler(
	agentSvc *service.AgentService,
	reconcileSvc *service.ReconcileService,
	cronExpr string,
) *AgentScheduler {
	return &AgentScheduler{
		cron:         cron.New(cron.WithSeconds()),
		agentSvc:     agentSvc,
		reconcileSvc: reconcileSvc,
		cronExpr:     cronExpr,
	}
}

func (s *AgentScheduler) Start() error {
	_, err := s.cron.AddFunc(s.cronExpr, s.runSweep)
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info("Agent maintenance scheduler started")
	return nil
}

func (s *AgentScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Agent maintenance scheduler stopped")
}

func (s *AgentScheduler) runSweep() {
	ctx := context.Background()

	processed, err := s.agentSvc.ProcessPendingVerifications(ctx)
	if err != nil {
		logger.WithError(err).Error("Pending verification sweep failed")
	} else if processed > 0 {
		logger.WithFields(map[string]interface{}{
			"processed": processed,
		}).Info("Pending verifications promoted")
	}

	drifted, err := s.reconcileSvc.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("Ledger reconciliation failed")
		return
	}
	if drifted > 0 {
		logger.WithFields(map[string]interface{}{
			"accounts": drifted,
		}).Warn("Ledger reconciliation found drift")
	}
}
