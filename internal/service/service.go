package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mentionforge/brand-analyzer/internal/analysis"
	"github.com/mentionforge/brand-analyzer/internal/config"
	"github.com/mentionforge/brand-analyzer/internal/metrics"
	"github.com/mentionforge/brand-analyzer/internal/models"
	"github.com/mentionforge/brand-analyzer/internal/notifications"
	"github.com/mentionforge/brand-analyzer/internal/storage"
	"github.com/sirupsen/logrus"
)

const reportPrefix = "analyses/"

var (
	// ErrAnalysisInProgress is returned when the same handle is already being analyzed
	ErrAnalysisInProgress = errors.New("analysis already in progress for this handle")

	// ErrArchiveDisabled is returned by archive reads when no storage is configured
	ErrArchiveDisabled = errors.New("report archive is not configured")
)

// Analyzer runs one analysis pipeline
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error)
}

// Service drives analyses: it runs the pipeline once per request, archives
// the report and sends notifications
type Service struct {
	config              *config.Config
	analyzer            Analyzer
	storage             storage.StorageInterface
	notificationService notifications.NotificationInterface
	stats               *Stats
	inFlight            map[string]bool
	mu                  sync.RWMutex
}

// Stats holds run statistics
type Stats struct {
	TotalRuns       int            `json:"total_runs"`
	FailedRuns      int            `json:"failed_runs"`
	LastRun         time.Time      `json:"last_run"`
	LastRunDuration string         `json:"last_run_duration"`
	LastHandle      string         `json:"last_handle"`
	LastReportID    string         `json:"last_report_id,omitempty"`
	LastError       string         `json:"last_error,omitempty"`
	PublishResults  map[string]int `json:"publish_results"`
	MentionsTotal   int            `json:"mentions_total"`
}

// NewService creates a new analysis service. storage and notifications may be nil.
func NewService(cfg *config.Config, analyzer Analyzer, archive storage.StorageInterface, notificationService notifications.NotificationInterface) *Service {
	return &Service{
		config:              cfg,
		analyzer:            analyzer,
		storage:             archive,
		notificationService: notificationService,
		stats: &Stats{
			PublishResults: make(map[string]int),
		},
		inFlight: make(map[string]bool),
	}
}

// Run performs one analysis. Concurrent runs for the same handle are
// rejected with ErrAnalysisInProgress.
func (s *Service) Run(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error) {
	key := strings.ToLower(analysis.NormalizeHandle(req.AccountHandle))
	if !s.acquire(key) {
		return nil, ErrAnalysisInProgress
	}
	defer s.release(key)

	metrics.AnalysesActive.Inc()
	defer metrics.AnalysesActive.Dec()

	start := time.Now()
	report, err := s.analyzer.Analyze(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("failed").Inc()
		metrics.AnalysisDuration.WithLabelValues("failed").Observe(duration.Seconds())
		s.recordFailure(key, duration, err)

		if s.notificationService != nil {
			if nerr := s.notificationService.SendFailure(req, err); nerr != nil {
				logrus.Errorf("Failed to send failure notification: %v", nerr)
			}
		}
		return nil, err
	}

	outcome := "success"
	if report.Publish.Failed() {
		outcome = "publish_failed"
	}
	metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
	metrics.AnalysisDuration.WithLabelValues(outcome).Observe(duration.Seconds())

	if err := s.storeReport(ctx, report); err != nil {
		logrus.Errorf("Failed to archive report %s: %v", report.ID, err)
	}

	if s.notificationService != nil {
		if err := s.notificationService.SendReport(report); err != nil {
			logrus.Errorf("Failed to send report: %v", err)
		}
	}

	s.recordSuccess(key, duration, report)
	return report, nil
}

func (s *Service) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[key] {
		return false
	}
	s.inFlight[key] = true
	return true
}

func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

// ReportName is the archive name of a report
func ReportName(report *models.AnalysisReport) string {
	return fmt.Sprintf("%s%s/%s-%s.json",
		reportPrefix,
		strings.ToLower(report.Request.AccountHandle),
		report.GeneratedAt.UTC().Format("2006-01-02-15-04-05"),
		report.ID)
}

func (s *Service) storeReport(ctx context.Context, report *models.AnalysisReport) error {
	if s.storage == nil {
		return nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	return s.storage.Store(ctx, ReportName(report), data)
}

// ListReports returns archived report names, optionally for one handle
func (s *Service) ListReports(ctx context.Context, handle string) ([]string, error) {
	if s.storage == nil {
		return nil, ErrArchiveDisabled
	}

	prefix := reportPrefix
	if handle = strings.ToLower(analysis.NormalizeHandle(handle)); handle != "" {
		prefix += handle + "/"
	}

	return s.storage.List(ctx, prefix)
}

// GetReport loads an archived report by name
func (s *Service) GetReport(ctx context.Context, name string) (*models.AnalysisReport, error) {
	if s.storage == nil {
		return nil, ErrArchiveDisabled
	}
	if !strings.HasPrefix(name, reportPrefix) {
		name = reportPrefix + name
	}

	data, err := s.storage.Retrieve(ctx, name)
	if err != nil {
		return nil, err
	}

	var report models.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", name, err)
	}

	return &report, nil
}

func (s *Service) recordSuccess(handle string, duration time.Duration, report *models.AnalysisReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalRuns++
	s.stats.LastRun = time.Now()
	s.stats.LastRunDuration = duration.String()
	s.stats.LastHandle = handle
	s.stats.LastReportID = report.ID
	s.stats.LastError = ""
	s.stats.MentionsTotal += report.TotalMentions
	s.stats.PublishResults[publishKind(report.Publish)]++
}

func (s *Service) recordFailure(handle string, duration time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalRuns++
	s.stats.FailedRuns++
	s.stats.LastRun = time.Now()
	s.stats.LastRunDuration = duration.String()
	s.stats.LastHandle = handle
	s.stats.LastReportID = ""
	s.stats.LastError = err.Error()
}

func publishKind(p *models.PublishResult) string {
	switch {
	case p == nil:
		return "none"
	case p.Failed():
		return "error"
	case p.Mock:
		return "mock"
	default:
		return "pinned"
	}
}

// GetStats returns current run statistics as JSON
func (s *Service) GetStats() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.stats, "", "  ")
	return string(data)
}
