package models

import "time"

// Mention represents a single post returned by the social search
type Mention struct {
	ID             string         `json:"id"`
	Text           string         `json:"text"`
	CreatedAt      time.Time      `json:"created_at"`
	AuthorID       string         `json:"author_id"`
	AuthorUsername string         `json:"author_username,omitempty"`
	AuthorVerified bool           `json:"author_verified"`
	Metrics        MentionMetrics `json:"metrics"`
	URL            string         `json:"url"`
	Query          string         `json:"query"` // query that first produced this mention
}

// MentionMetrics holds engagement counters for a mention
type MentionMetrics struct {
	LikeCount    int `json:"like_count"`
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	QuoteCount   int `json:"quote_count"`
}

// Engagement is the like + reshare count used for the high-engagement bucket
func (m MentionMetrics) Engagement() int {
	return m.LikeCount + m.RetweetCount
}

// ScoredMention is a mention with its relevance score attached
type ScoredMention struct {
	Mention
	RelevanceScore int `json:"relevance_score"`
}

// Template is the structured token template synthesized from the mentions
type Template struct {
	CompanyName     string                 `json:"company_name"`
	CoinName        string                 `json:"meme_coin_name"`
	ProductInfo     string                 `json:"product_info"`
	ProductCategory string                 `json:"product_category"`
	ProductAims     string                 `json:"product_aims"`
	ProductUseCase  string                 `json:"product_usecase"`
	WalletAddress   string                 `json:"wallet_address"`
	Extra           map[string]interface{} `json:"extra,omitempty"` // fields the model added on its own
}

// PublishResult is the outcome of pinning an artifact.
// Exactly one of the three shapes is set: real (URI/Hash/GatewayURL),
// mock (same fields plus Mock) or failed (Error only).
type PublishResult struct {
	URI        string `json:"uri,omitempty"`
	Hash       string `json:"hash,omitempty"`
	GatewayURL string `json:"gateway_url,omitempty"`
	Mock       bool   `json:"mock,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Failed reports whether the publish step ended with an error
func (p *PublishResult) Failed() bool {
	return p != nil && p.Error != ""
}

// AnalysisRequest is the input of one analysis run
type AnalysisRequest struct {
	AccountHandle    string   `json:"account_handle"`
	ProductInfo      string   `json:"product_info"`
	RecipientAddress string   `json:"recipient_address"`
	ProductName      string   `json:"product_name,omitempty"` // scoring term, defaults to ProductInfo
	Keywords         []string `json:"keywords,omitempty"`     // skips keyword extraction when set
	MaxResults       int      `json:"max_results,omitempty"`
}

// SentimentBreakdown buckets mentions by relevance score
type SentimentBreakdown struct {
	Positive int `json:"positive"` // score > 5
	Neutral  int `json:"neutral"`  // 0 <= score <= 5
	Negative int `json:"negative"` // score < 0
}

// AnalysisReport is the result of one analysis run
type AnalysisReport struct {
	ID                  string             `json:"id"`
	GeneratedAt         time.Time          `json:"generated_at"`
	Request             AnalysisRequest    `json:"request"`
	Keywords            []string           `json:"keywords"`
	Queries             []string           `json:"queries"`
	TotalMentions       int                `json:"total_mentions"`
	HighEngagementCount int                `json:"high_engagement_count"`
	VerifiedAuthorCount int                `json:"verified_author_count"`
	Sentiment           SentimentBreakdown `json:"sentiment"`
	Mentions            []ScoredMention    `json:"mentions"`
	Summary             string             `json:"summary"`
	Template            *Template          `json:"template"`
	Publish             *PublishResult     `json:"publish"`
	Duration            string             `json:"duration"`
}
