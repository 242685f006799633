package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mentionforge/brand-analyzer/internal/models"
	"github.com/sirupsen/logrus"
)

// The recent search endpoint rejects max_results outside this range
const (
	minSearchResults = 10
	maxSearchResults = 100
)

// TwitterSource searches X (Twitter) through the v2 recent search API
type TwitterSource struct {
	bearerToken string
	baseURL     string
	client      *resty.Client
}

type twitterSearchResponse struct {
	Data     []twitterTweet `json:"data"`
	Includes struct {
		Users []twitterUser `json:"users"`
	} `json:"includes"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
}

type twitterTweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	AuthorID      string `json:"author_id"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		RetweetCount int `json:"retweet_count"`
		LikeCount    int `json:"like_count"`
		ReplyCount   int `json:"reply_count"`
		QuoteCount   int `json:"quote_count"`
	} `json:"public_metrics"`
}

type twitterUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Verified bool   `json:"verified"`
}

// NewTwitterSource creates a new X search client
func NewTwitterSource(bearerToken, baseURL string, timeout time.Duration) *TwitterSource {
	if baseURL == "" {
		baseURL = "https://api.twitter.com/2"
	}
	return &TwitterSource{
		bearerToken: bearerToken,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "Brand-Analyzer/1.0"),
	}
}

func (t *TwitterSource) GetName() string {
	return "twitter"
}

func (t *TwitterSource) IsEnabled() bool {
	return t.bearerToken != ""
}

// Search runs one recent-search query and resolves each post's author
func (t *TwitterSource) Search(ctx context.Context, query string, maxResults int) ([]models.Mention, error) {
	if !t.IsEnabled() {
		return nil, fmt.Errorf("twitter source disabled - missing bearer token")
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetAuthToken(t.bearerToken).
		SetQueryParams(map[string]string{
			"query":        query,
			"max_results":  strconv.Itoa(clampResults(maxResults)),
			"tweet.fields": "created_at,public_metrics,author_id",
			"user.fields":  "username,verified",
			"expansions":   "author_id",
		}).
		Get(t.baseURL + "/tweets/search/recent")

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		if resetTime := resp.Header().Get("x-rate-limit-reset"); resetTime != "" {
			logrus.Infof("Twitter rate limit will reset at: %s", resetTime)
		}
		return nil, fmt.Errorf("twitter API rate limit hit for query %q", query)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("twitter API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var searchResp twitterSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse Twitter response: %w", err)
	}

	logrus.Debugf("Twitter API returned %d tweets for query '%s'", len(searchResp.Data), query)

	return toMentions(searchResp, query), nil
}

func toMentions(searchResp twitterSearchResponse, query string) []models.Mention {
	users := make(map[string]twitterUser, len(searchResp.Includes.Users))
	for _, user := range searchResp.Includes.Users {
		users[user.ID] = user
	}

	mentions := make([]models.Mention, 0, len(searchResp.Data))
	for _, tweet := range searchResp.Data {
		createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil && tweet.CreatedAt != "" {
			logrus.Debugf("Failed to parse Twitter timestamp %q: %v", tweet.CreatedAt, err)
		}

		author := users[tweet.AuthorID]
		mention := models.Mention{
			ID:             tweet.ID,
			Text:           tweet.Text,
			CreatedAt:      createdAt,
			AuthorID:       tweet.AuthorID,
			AuthorUsername: author.Username,
			AuthorVerified: author.Verified,
			Metrics: models.MentionMetrics{
				LikeCount:    tweet.PublicMetrics.LikeCount,
				RetweetCount: tweet.PublicMetrics.RetweetCount,
				ReplyCount:   tweet.PublicMetrics.ReplyCount,
				QuoteCount:   tweet.PublicMetrics.QuoteCount,
			},
			URL:   tweetURL(author.Username, tweet.ID),
			Query: query,
		}

		mentions = append(mentions, mention)
	}

	return mentions
}

func tweetURL(username, id string) string {
	if username == "" {
		return fmt.Sprintf("https://twitter.com/i/status/%s", id)
	}
	return fmt.Sprintf("https://twitter.com/%s/status/%s", username, id)
}

func clampResults(n int) int {
	if n < minSearchResults {
		return minSearchResults
	}
	if n > maxSearchResults {
		return maxSearchResults
	}
	return n
}
