package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mentionforge/brand-analyzer/internal/config"
	"github.com/mentionforge/brand-analyzer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRunner is a mock implementation of the Runner interface
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error) {
	args := m.Called(ctx, req)
	report, _ := args.Get(0).(*models.AnalysisReport)
	return report, args.Error(1)
}

func TestService_StartDisabled(t *testing.T) {
	runner := &MockRunner{}
	service := NewService(&config.Config{}, runner)

	require.NoError(t, service.Start())
	service.Stop()

	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestService_StartInvalidSchedule(t *testing.T) {
	cfg := &config.Config{
		AnalysisSchedule: "not a schedule",
		ScheduledBrands:  []config.BrandTarget{{Handle: "acme", Product: "gadget", Address: "0x1"}},
	}

	service := NewService(cfg, &MockRunner{})
	assert.Error(t, service.Start())
}

func TestService_runAll(t *testing.T) {
	cfg := &config.Config{
		PipelineTimeout: time.Minute,
		ScheduledBrands: []config.BrandTarget{
			{Handle: "acme", Product: "gadget", Address: "0x1"},
			{Handle: "beta", Product: "widget", Address: "0x2"},
		},
	}

	runner := &MockRunner{}
	runner.On("Run", mock.Anything, models.AnalysisRequest{AccountHandle: "acme", ProductInfo: "gadget", RecipientAddress: "0x1"}).
		Return(nil, errors.New("model down")).Once()
	runner.On("Run", mock.Anything, models.AnalysisRequest{AccountHandle: "beta", ProductInfo: "widget", RecipientAddress: "0x2"}).
		Return(&models.AnalysisReport{TotalMentions: 4}, nil).Once()

	NewService(cfg, runner).runAll()

	// a failing brand does not stop the others
	runner.AssertExpectations(t)
}
