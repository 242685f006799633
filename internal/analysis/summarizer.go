package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/mentionforge/brand-analyzer/internal/models"
	"github.com/sirupsen/logrus"
)

const maxKeywords = 4

// Summarizer turns scored mentions into a summary and a template draft
// through the language model. Each output is a separate model call.
type Summarizer struct {
	generator   Generator
	callTimeout time.Duration
}

// NewSummarizer creates a summarizer backed by the given generator
func NewSummarizer(generator Generator, callTimeout time.Duration) *Summarizer {
	return &Summarizer{
		generator:   generator,
		callTimeout: callTimeout,
	}
}

// ExtractKeywords asks the model for the search keywords that best describe
// the product
func (s *Summarizer) ExtractKeywords(ctx context.Context, productInfo string) ([]string, error) {
	prompt := fmt.Sprintf(`Pick search keywords for finding posts about this product on X.
Product info: %s
Reply with the 3 or 4 most relevant single-word keywords separated by spaces and nothing else.`, productInfo)

	response, err := s.call(ctx, "keywords", prompt, s.generator.GenerateText)
	if err != nil {
		return nil, err
	}

	keywords := strings.FieldsFunc(response, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	logrus.Debugf("Extracted keywords %v", keywords)
	return keywords, nil
}

// Summarize produces a free-text analysis of the mentions
func (s *Summarizer) Summarize(ctx context.Context, mentions []models.ScoredMention, productName string) (string, error) {
	prompt := fmt.Sprintf(`Analyze these posts about the product %q and write a summary covering:
1. Main product features and benefits
2. Common use cases mentioned
3. Target audience or market
4. Overall sentiment
5. Key differentiators

Posts:
%s`, productName, joinTexts(mentions))

	summary, err := s.call(ctx, "summary", prompt, s.generator.GenerateText)
	if err != nil {
		return "", err
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", &SummarizationError{Op: "summary", Err: errors.New("model returned an empty summary")}
	}

	return summary, nil
}

// DraftTemplate asks the model for the JSON template. The response is
// returned raw; ParseTemplate validates it.
func (s *Summarizer) DraftTemplate(ctx context.Context, mentions []models.ScoredMention, productInfo, address string) (string, error) {
	prompt := fmt.Sprintf(`Using these posts and the product information, build a token template for a meme coin
inspired by the product. Keep it engaging but true to what the product is.

Product info: %s

Posts:
%s

Return a single JSON object with these string fields:
- company_name: the company name, extracted or derived
- meme_coin_name: a catchy coin name mixing the product with crypto terms
- product_info: a short summary of the product
- product_category: the main product category
- product_aims: the problems it solves or what it aims to achieve
- product_usecase: its main use cases
- wallet_address: %q`, productInfo, joinTexts(mentions), address)

	return s.call(ctx, "template", prompt, s.generator.GenerateJSON)
}

func (s *Summarizer) call(ctx context.Context, op, prompt string, fn func(context.Context, string) (string, error)) (string, error) {
	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	start := time.Now()
	response, err := fn(ctx, prompt)
	if err != nil {
		logrus.Errorf("Language model %s call failed: %v", op, err)
		return "", &SummarizationError{Op: op, Err: err}
	}

	logrus.Debugf("Language model %s call took %v", op, time.Since(start))
	return response, nil
}

func joinTexts(mentions []models.ScoredMention) string {
	if len(mentions) == 0 {
		return "(no posts found)"
	}

	texts := make([]string, len(mentions))
	for i, m := range mentions {
		texts[i] = m.Text
	}
	return strings.Join(texts, "\n")
}
