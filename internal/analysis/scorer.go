package analysis

import (
	"sort"
	"strings"

	"github.com/mentionforge/brand-analyzer/internal/models"
)

// Each term adds 2 on its own; overlapping matches all count.
var engagementTerms = []string{"review", "recommend", "bought"}

// Score computes the relevance of a post's text to a product and account.
// Every check is an independent substring test on the lower-cased text, so
// the result can be negative.
func Score(text, product, account string) int {
	score := 0
	text = strings.ToLower(text)

	if product != "" && strings.Contains(text, strings.ToLower(product)) {
		score += 5
	}
	if account != "" && strings.Contains(text, strings.ToLower(account)) {
		score += 3
	}

	for _, term := range engagementTerms {
		if strings.Contains(text, term) {
			score += 2
		}
	}
	if strings.Contains(text, "using") {
		score++
	}

	// Sentiment indicators (basic)
	if strings.Contains(text, "great") || strings.Contains(text, "good") {
		score++
	}
	if strings.Contains(text, "bad") || strings.Contains(text, "poor") {
		score--
	}

	return score
}

// ScoreMentions scores every mention and returns them ordered by score,
// highest first. Mentions with equal scores keep their input order.
func ScoreMentions(mentions []models.Mention, product, account string) []models.ScoredMention {
	scored := make([]models.ScoredMention, len(mentions))
	for i, mention := range mentions {
		scored[i] = models.ScoredMention{
			Mention:        mention,
			RelevanceScore: Score(mention.Text, product, account),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	return scored
}

// Breakdown buckets scored mentions the way the report presents them
func Breakdown(mentions []models.ScoredMention) models.SentimentBreakdown {
	var b models.SentimentBreakdown
	for _, m := range mentions {
		switch {
		case m.RelevanceScore > 5:
			b.Positive++
		case m.RelevanceScore < 0:
			b.Negative++
		default:
			b.Neutral++
		}
	}
	return b
}
