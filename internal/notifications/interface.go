package notifications

import "github.com/mentionforge/brand-analyzer/internal/models"

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	SendReport(report *models.AnalysisReport) error
	SendFailure(req models.AnalysisRequest, cause error) error
}
