package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mentionforge/brand-analyzer/internal/models"
	"github.com/sirupsen/logrus"
)

// Stage is a step of the analysis pipeline
type Stage string

const (
	StageStart             Stage = "start"
	StageKeywordsExtracted Stage = "keywords_extracted"
	StageSearched          Stage = "searched"
	StageDeduplicated      Stage = "deduplicated"
	StageScored            Stage = "scored"
	StageSummarized        Stage = "summarized"
	StageTemplateValidated Stage = "template_validated"
	StagePublished         Stage = "published"
	StageReported          Stage = "reported"
)

// highEngagementThreshold is the like + reshare count above which a mention
// counts as high engagement
const highEngagementThreshold = 10

// Options tunes the orchestrator
type Options struct {
	MaxResults      int
	PipelineTimeout time.Duration
}

// Orchestrator runs the analysis pipeline end to end. It holds no per-run
// state, so concurrent Analyze calls are independent.
type Orchestrator struct {
	aggregator *Aggregator
	summarizer *Summarizer
	publisher  *Publisher
	options    Options
}

// NewOrchestrator wires the pipeline components together
func NewOrchestrator(aggregator *Aggregator, summarizer *Summarizer, publisher *Publisher, options Options) *Orchestrator {
	if options.MaxResults <= 0 {
		options.MaxResults = 100
	}
	return &Orchestrator{
		aggregator: aggregator,
		summarizer: summarizer,
		publisher:  publisher,
		options:    options,
	}
}

// Analyze runs one analysis. Input, summarization and template errors abort
// the run and come back wrapped in a *StageError naming the stage that could
// not be reached. A failed publish is recorded in the report instead.
func (o *Orchestrator) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error) {
	start := time.Now()

	req.AccountHandle = NormalizeHandle(req.AccountHandle)
	req.ProductInfo = strings.TrimSpace(req.ProductInfo)
	req.RecipientAddress = strings.TrimSpace(req.RecipientAddress)
	if err := validateRequest(req); err != nil {
		return nil, &StageError{Stage: StageStart, Err: err}
	}

	if o.options.PipelineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.options.PipelineTimeout)
		defer cancel()
	}

	report := &models.AnalysisReport{
		ID:      uuid.NewString(),
		Request: req,
	}
	log := logrus.WithFields(logrus.Fields{
		"report_id": report.ID,
		"handle":    req.AccountHandle,
	})
	log.Info("Starting brand analysis")

	// Keywords
	keywords := req.Keywords
	if len(keywords) == 0 {
		extracted, err := o.summarizer.ExtractKeywords(ctx, req.ProductInfo)
		if err != nil {
			return nil, o.fail(log, StageKeywordsExtracted, err)
		}
		keywords = extracted
	}
	report.Keywords = keywords
	log.WithField("stage", StageKeywordsExtracted).Infof("Using keywords %v", keywords)

	// Search + dedup
	queries, err := BuildQueries(req.AccountHandle, keywords)
	if err != nil {
		return nil, o.fail(log, StageSearched, err)
	}
	report.Queries = queries

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = o.options.MaxResults
	}
	mentions := o.aggregator.Search(ctx, queries, maxResults)
	log.WithField("stage", StageDeduplicated).Infof("Searched %d queries, %d unique mentions", len(queries), len(mentions))

	// Scoring
	productTerm := strings.TrimSpace(req.ProductName)
	if productTerm == "" {
		productTerm = req.ProductInfo
	}
	scored := ScoreMentions(mentions, productTerm, req.AccountHandle)
	report.Mentions = scored
	report.TotalMentions = len(scored)
	report.Sentiment = Breakdown(scored)
	for _, m := range scored {
		if m.Metrics.Engagement() > highEngagementThreshold {
			report.HighEngagementCount++
		}
		if m.AuthorVerified {
			report.VerifiedAuthorCount++
		}
	}
	log.WithField("stage", StageScored).Debugf("Sentiment breakdown %+v", report.Sentiment)

	// Summary and template are separate calls so a bad template cannot cost
	// the summary
	summary, err := o.summarizer.Summarize(ctx, scored, productTerm)
	if err != nil {
		return nil, o.fail(log, StageSummarized, err)
	}
	report.Summary = summary
	log.WithField("stage", StageSummarized).Debug("Summary generated")

	raw, err := o.summarizer.DraftTemplate(ctx, scored, req.ProductInfo, req.RecipientAddress)
	if err != nil {
		return nil, o.fail(log, StageTemplateValidated, err)
	}
	template, err := ParseTemplate(raw, req.RecipientAddress)
	if err != nil {
		return nil, o.fail(log, StageTemplateValidated, err)
	}
	report.Template = template
	log.WithField("stage", StageTemplateValidated).Infof("Template generated for coin %q", template.CoinName)

	// Publishing never fails the run
	publish, err := o.publisher.Publish(ctx, template, map[string]string{
		"handle":    req.AccountHandle,
		"report_id": report.ID,
	})
	if err != nil {
		log.WithField("stage", StagePublished).Errorf("Publishing failed, continuing with report: %v", err)
		publish = &models.PublishResult{Error: err.Error()}
	}
	report.Publish = publish

	report.GeneratedAt = time.Now()
	report.Duration = time.Since(start).String()
	log.WithField("stage", StageReported).Infof("Brand analysis completed in %s", report.Duration)

	return report, nil
}

func (o *Orchestrator) fail(log *logrus.Entry, stage Stage, err error) error {
	log.WithField("stage", stage).Errorf("Brand analysis failed: %v", err)
	return &StageError{Stage: stage, Err: err}
}

func validateRequest(req models.AnalysisRequest) error {
	switch {
	case req.AccountHandle == "":
		return &InvalidInputError{Field: "account_handle", Reason: "is required"}
	case strings.ContainsAny(req.AccountHandle, " \t\n"):
		return &InvalidInputError{Field: "account_handle", Reason: "must not contain whitespace"}
	case req.ProductInfo == "":
		return &InvalidInputError{Field: "product_info", Reason: "is required"}
	case req.RecipientAddress == "":
		return &InvalidInputError{Field: "recipient_address", Reason: "is required"}
	case req.MaxResults < 0:
		return &InvalidInputError{Field: "max_results", Reason: "must not be negative"}
	}
	return nil
}
