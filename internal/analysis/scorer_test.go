package analysis

import (
	"testing"

	"github.com/mentionforge/brand-analyzer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		product  string
		account  string
		expected int
	}{
		{
			name:     "Bought, recommend and great",
			text:     "I bought this great gadget, highly recommend",
			product:  "gadget",
			account:  "acme",
			expected: 10,
		},
		{
			name:     "Bought and bad",
			text:     "Bought the gadget, pretty bad battery",
			product:  "gadget",
			account:  "acme",
			expected: 6,
		},
		{
			name:     "Product and account",
			text:     "The Gadget from @ACME arrived",
			product:  "gadget",
			account:  "acme",
			expected: 8,
		},
		{
			name:     "All engagement terms stack",
			text:     "review: bought it, would recommend",
			product:  "gadget",
			account:  "acme",
			expected: 6,
		},
		{
			name:     "Overlapping good and great count once",
			text:     "good good great",
			product:  "gadget",
			account:  "acme",
			expected: 1,
		},
		{
			name:     "Using",
			text:     "Been using it daily",
			product:  "gadget",
			account:  "acme",
			expected: 1,
		},
		{
			name:     "Negative only",
			text:     "poor quality",
			product:  "gadget",
			account:  "acme",
			expected: -1,
		},
		{
			name:     "Substring matches count",
			text:     "badge reviewed",
			product:  "gadget",
			account:  "acme",
			expected: 1, // "bad" in badge -1, "review" in reviewed +2
		},
		{
			name:     "Nothing relevant",
			text:     "hello world",
			product:  "gadget",
			account:  "acme",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(tt.text, tt.product, tt.account))
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	text := "I bought this great gadget, highly recommend"
	first := Score(text, "gadget", "acme")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(text, "gadget", "acme"))
	}
}

func TestScoreMentions_SortedStable(t *testing.T) {
	mentions := []models.Mention{
		mention("a", "nothing here"),
		mention("b", "bought the gadget"),
		mention("c", "also nothing"),
		mention("d", "bad"),
	}

	scored := ScoreMentions(mentions, "gadget", "acme")

	require.Len(t, scored, 4)
	assert.Equal(t, "b", scored[0].ID)
	assert.Equal(t, 7, scored[0].RelevanceScore)
	assert.Equal(t, "a", scored[1].ID)
	assert.Equal(t, "c", scored[2].ID)
	assert.Equal(t, "d", scored[3].ID)
	assert.Equal(t, -1, scored[3].RelevanceScore)
}

func TestBreakdown(t *testing.T) {
	scored := []models.ScoredMention{
		{RelevanceScore: 10},
		{RelevanceScore: 6},
		{RelevanceScore: 5},
		{RelevanceScore: 0},
		{RelevanceScore: -1},
	}

	assert.Equal(t, models.SentimentBreakdown{Positive: 2, Neutral: 2, Negative: 1}, Breakdown(scored))
}
