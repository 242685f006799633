package scheduler

import (
	"context"
	"time"

	"github.com/mentionforge/brand-analyzer/internal/config"
	"github.com/mentionforge/brand-analyzer/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner runs one analysis request
type Runner interface {
	Run(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error)
}

// Service runs the configured brands on a cron schedule
type Service struct {
	config *config.Config
	runner Runner
	cron   *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, runner Runner) *Service {
	return &Service{
		config: cfg,
		runner: runner,
		cron:   cron.New(cron.WithSeconds()),
	}
}

// Start registers the scheduled analyses and starts the cron loop.
// It does nothing when no schedule or brands are configured.
func (s *Service) Start() error {
	if !s.config.ScheduleEnabled() {
		logrus.Info("Scheduled analyses disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.AnalysisSchedule, s.runAll)
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with schedule %q for %d brands", s.config.AnalysisSchedule, len(s.config.ScheduledBrands))
	return nil
}

// runAll analyzes each brand in turn so runs never overlap per handle
func (s *Service) runAll() {
	logrus.Info("Starting scheduled analyses")

	for _, brand := range s.config.ScheduledBrands {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.PipelineTimeout+time.Minute)
		report, err := s.runner.Run(ctx, models.AnalysisRequest{
			AccountHandle:    brand.Handle,
			ProductInfo:      brand.Product,
			RecipientAddress: brand.Address,
		})
		cancel()

		if err != nil {
			logrus.Errorf("Scheduled analysis for @%s failed: %v", brand.Handle, err)
			continue
		}
		logrus.Infof("Scheduled analysis for @%s finished with %d mentions", brand.Handle, report.TotalMentions)
	}
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
