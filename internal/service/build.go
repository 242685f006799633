package service

import (
	"context"
	"fmt"

	"github.com/mentionforge/brand-analyzer/internal/analysis"
	"github.com/mentionforge/brand-analyzer/internal/config"
	"github.com/mentionforge/brand-analyzer/internal/llm"
	"github.com/mentionforge/brand-analyzer/internal/sources"
	"github.com/mentionforge/brand-analyzer/internal/storage"
	"github.com/sirupsen/logrus"
)

// BuildOrchestrator wires the X source, Gemini and Pinata clients into an
// analysis pipeline
func BuildOrchestrator(ctx context.Context, cfg *config.Config) (*analysis.Orchestrator, error) {
	twitter := sources.NewTwitterSource(cfg.TwitterBearerToken, cfg.TwitterAPIURL, cfg.CallTimeout)
	if !twitter.IsEnabled() {
		return nil, fmt.Errorf("%s source is not configured", twitter.GetName())
	}

	gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTemperature)
	if err != nil {
		return nil, err
	}

	pinata := storage.NewPinataClient(cfg.PinataAPIKey, cfg.PinataSecretKey, cfg.PinataAPIURL, cfg.CallTimeout)
	if !pinata.Configured() {
		logrus.Warn("PINATA_API_KEY / PINATA_SECRET_KEY not set, templates will get mock IPFS results")
	}

	return analysis.NewOrchestrator(
		analysis.NewAggregator(twitter, cfg.SearchConcurrency, cfg.CallTimeout),
		analysis.NewSummarizer(gemini, cfg.CallTimeout),
		analysis.NewPublisher(pinata, cfg.PinataGatewayURL, cfg.CallTimeout),
		analysis.Options{
			MaxResults:      cfg.MaxResults,
			PipelineTimeout: cfg.PipelineTimeout,
		},
	), nil
}
