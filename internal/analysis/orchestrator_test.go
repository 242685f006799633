package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mentionforge/brand-analyzer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const templateJSON = `{
	"company_name": "Acme",
	"meme_coin_name": "GadgetCoin",
	"product_info": "A smart gadget",
	"product_category": "Electronics",
	"product_aims": "Save time",
	"product_usecase": "Home automation",
	"wallet_address": "0xmodel"
}`

type pipeline struct {
	searcher  *fakeSearcher
	generator *fakeGenerator
	pinner    *MockPinner
}

func newPipeline() *pipeline {
	return &pipeline{
		searcher: &fakeSearcher{},
		generator: &fakeGenerator{
			text: func(prompt string) (string, error) {
				if strings.Contains(prompt, "keywords") {
					return "gadget smart", nil
				}
				return "Customers enjoy the gadget.", nil
			},
			json: func(string) (string, error) { return templateJSON, nil },
		},
		pinner: &MockPinner{},
	}
}

func (p *pipeline) orchestrator() *Orchestrator {
	return NewOrchestrator(
		NewAggregator(p.searcher, 1, 0),
		NewSummarizer(p.generator, 0),
		NewPublisher(p.pinner, gateway, 0),
		Options{MaxResults: 100},
	)
}

func request() models.AnalysisRequest {
	return models.AnalysisRequest{
		AccountHandle:    "@acme",
		ProductInfo:      "A smart gadget for the home",
		ProductName:      "gadget",
		RecipientAddress: address,
	}
}

func TestOrchestrator_SingleMention(t *testing.T) {
	p := newPipeline()
	p.searcher.results = map[string][]models.Mention{
		"from:acme": {{
			ID:             "1",
			Text:           "I bought this great gadget, highly recommend",
			AuthorVerified: true,
			Metrics:        models.MentionMetrics{LikeCount: 9, RetweetCount: 3},
		}},
	}
	p.pinner.On("Configured").Return(false)

	report, err := p.orchestrator().Analyze(context.Background(), request())
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "acme", report.Request.AccountHandle)
	assert.Equal(t, []string{"gadget", "smart"}, report.Keywords)
	assert.Equal(t, []string{"from:acme", "gadget from:acme", "smart from:acme", "gadget", "smart"}, report.Queries)
	for _, q := range report.Queries {
		assert.Equal(t, 20, p.searcher.sizes[q])
	}

	require.Equal(t, 1, report.TotalMentions)
	assert.Equal(t, 10, report.Mentions[0].RelevanceScore)
	assert.Equal(t, 1, report.HighEngagementCount)
	assert.Equal(t, 1, report.VerifiedAuthorCount)
	assert.Equal(t, models.SentimentBreakdown{Positive: 1}, report.Sentiment)
	assert.Equal(t, "Customers enjoy the gadget.", report.Summary)
	require.NotNil(t, report.Template)
	assert.Equal(t, "GadgetCoin", report.Template.CoinName)
	assert.False(t, report.GeneratedAt.IsZero())
	assert.NotEmpty(t, report.Duration)
}

func TestOrchestrator_AllQueriesFail(t *testing.T) {
	p := newPipeline()
	p.searcher.errs = map[string]error{}
	for _, q := range []string{"from:acme", "gadget from:acme", "smart from:acme", "gadget", "smart"} {
		p.searcher.errs[q] = errors.New("service unavailable")
	}
	p.pinner.On("Configured").Return(false)

	report, err := p.orchestrator().Analyze(context.Background(), request())
	require.NoError(t, err)

	assert.Len(t, p.searcher.calls, 5)
	assert.Equal(t, 0, report.TotalMentions)
	assert.Empty(t, report.Mentions)
	assert.NotEmpty(t, report.Summary)
	assert.NotNil(t, report.Template)
}

func TestOrchestrator_RecipientAddressOverwritten(t *testing.T) {
	p := newPipeline()
	p.pinner.On("Configured").Return(false)

	report, err := p.orchestrator().Analyze(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, address, report.Template.WalletAddress)
}

func TestOrchestrator_MockPublishWhenUnconfigured(t *testing.T) {
	p := newPipeline()
	p.pinner.On("Configured").Return(false)

	report, err := p.orchestrator().Analyze(context.Background(), request())
	require.NoError(t, err)

	require.NotNil(t, report.Publish)
	assert.True(t, report.Publish.Mock)
	assert.Equal(t, "ipfs://mock-hash", report.Publish.URI)
	assert.Empty(t, report.Publish.Error)
	assert.False(t, report.Publish.Failed())
}

func TestOrchestrator_PublishFailureKeepsReport(t *testing.T) {
	p := newPipeline()
	p.pinner.On("Configured").Return(true)
	p.pinner.On("PinJSON", mock.Anything, mock.AnythingOfType("*models.Template"), mock.MatchedBy(func(meta map[string]string) bool {
		return meta["handle"] == "acme" && meta["report_id"] != ""
	})).Return("", errors.New("502 bad gateway"))

	report, err := p.orchestrator().Analyze(context.Background(), request())
	require.NoError(t, err)

	require.NotNil(t, report.Publish)
	assert.False(t, report.Publish.Mock)
	assert.Contains(t, report.Publish.Error, "502 bad gateway")
	assert.True(t, report.Publish.Failed())
	assert.NotEmpty(t, report.Summary)
	assert.NotNil(t, report.Template)
	p.pinner.AssertExpectations(t)
}

func TestOrchestrator_PublishSuccess(t *testing.T) {
	p := newPipeline()
	p.pinner.On("Configured").Return(true)
	p.pinner.On("PinJSON", mock.Anything, mock.Anything, mock.Anything).Return("bafyreal", nil)

	report, err := p.orchestrator().Analyze(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, "ipfs://bafyreal", report.Publish.URI)
	assert.Equal(t, gateway+"bafyreal", report.Publish.GatewayURL)
	assert.False(t, report.Publish.Mock)
}

func TestOrchestrator_ProvidedKeywordsSkipExtraction(t *testing.T) {
	p := newPipeline()
	p.pinner.On("Configured").Return(false)
	req := request()
	req.Keywords = []string{"widget"}

	report, err := p.orchestrator().Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"from:acme", "widget from:acme", "widget"}, report.Queries)
	for _, prompt := range p.generator.prompts {
		assert.NotContains(t, prompt, "search keywords")
	}
}

func TestOrchestrator_FatalErrors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(p *pipeline, req *models.AnalysisRequest)
		stage     Stage
		kind      interface{}
		retryable bool
	}{
		{
			name:  "Missing handle",
			setup: func(_ *pipeline, req *models.AnalysisRequest) { req.AccountHandle = " @ " },
			stage: StageStart,
			kind:  &InvalidInputError{},
		},
		{
			name:  "Handle with spaces",
			setup: func(_ *pipeline, req *models.AnalysisRequest) { req.AccountHandle = "acme corp" },
			stage: StageStart,
			kind:  &InvalidInputError{},
		},
		{
			name:  "Missing product info",
			setup: func(_ *pipeline, req *models.AnalysisRequest) { req.ProductInfo = "" },
			stage: StageStart,
			kind:  &InvalidInputError{},
		},
		{
			name:  "Missing recipient address",
			setup: func(_ *pipeline, req *models.AnalysisRequest) { req.RecipientAddress = "  " },
			stage: StageStart,
			kind:  &InvalidInputError{},
		},
		{
			name:  "Negative max results",
			setup: func(_ *pipeline, req *models.AnalysisRequest) { req.MaxResults = -1 },
			stage: StageStart,
			kind:  &InvalidInputError{},
		},
		{
			name: "Keyword extraction fails",
			setup: func(p *pipeline, _ *models.AnalysisRequest) {
				p.generator.text = func(string) (string, error) { return "", errors.New("quota exceeded") }
			},
			stage:     StageKeywordsExtracted,
			kind:      &SummarizationError{},
			retryable: true,
		},
		{
			name: "Summary fails",
			setup: func(p *pipeline, req *models.AnalysisRequest) {
				req.Keywords = []string{"gadget"}
				p.generator.text = func(string) (string, error) { return "", errors.New("model overloaded") }
			},
			stage:     StageSummarized,
			kind:      &SummarizationError{},
			retryable: true,
		},
		{
			name: "Template call fails",
			setup: func(p *pipeline, _ *models.AnalysisRequest) {
				p.generator.json = func(string) (string, error) { return "", errors.New("model overloaded") }
			},
			stage:     StageTemplateValidated,
			kind:      &SummarizationError{},
			retryable: true,
		},
		{
			name: "Template unparseable",
			setup: func(p *pipeline, _ *models.AnalysisRequest) {
				p.generator.json = func(string) (string, error) { return "not json at all", nil }
			},
			stage: StageTemplateValidated,
			kind:  &TemplateParseError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline()
			req := request()
			tt.setup(p, &req)

			report, err := p.orchestrator().Analyze(context.Background(), req)
			assert.Nil(t, report)

			var stageErr *StageError
			require.True(t, errors.As(err, &stageErr), "got %v", err)
			assert.Equal(t, tt.stage, stageErr.Stage)
			assert.IsType(t, tt.kind, stageErr.Err)
			assert.Equal(t, tt.retryable, IsRetryable(err))

			// nothing is published after a fatal error
			p.pinner.AssertNotCalled(t, "PinJSON", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOrchestrator_ConcurrentRunsAreIndependent(t *testing.T) {
	p := newPipeline()
	p.searcher.results = map[string][]models.Mention{
		"from:acme": {mention("1", "bought the gadget")},
		"from:beta": {mention("2", "beta is bad")},
	}
	p.pinner.On("Configured").Return(false)
	orchestrator := p.orchestrator()

	handles := []string{"acme", "beta"}
	reports := make([]*models.AnalysisReport, len(handles))
	errs := make([]error, len(handles))
	done := make(chan struct{})
	for i, handle := range handles {
		go func() {
			defer func() { done <- struct{}{} }()
			req := request()
			req.AccountHandle = handle
			req.Keywords = []string{"gadget"}
			reports[i], errs[i] = orchestrator.Analyze(context.Background(), req)
		}()
	}
	for range handles {
		<-done
	}

	for i := range handles {
		require.NoError(t, errs[i])
	}
	assert.NotEqual(t, reports[0].ID, reports[1].ID)
	assert.Equal(t, "1", reports[0].Mentions[0].ID)
	assert.Equal(t, "2", reports[1].Mentions[0].ID)
}
