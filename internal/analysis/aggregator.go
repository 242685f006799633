package analysis

import (
	"context"
	"time"

	"github.com/mentionforge/brand-analyzer/internal/metrics"
	"github.com/mentionforge/brand-analyzer/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Aggregator runs a batch of search queries and merges their results
type Aggregator struct {
	searcher    Searcher
	concurrency int
	callTimeout time.Duration
}

// NewAggregator creates an aggregator. A concurrency of 1 or less issues the
// queries one at a time.
func NewAggregator(searcher Searcher, concurrency int, callTimeout time.Duration) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{
		searcher:    searcher,
		concurrency: concurrency,
		callTimeout: callTimeout,
	}
}

// Search issues every query with an even share of maxResults and returns the
// merged mentions, deduplicated by ID with the first occurrence in query
// order winning. Failed queries are logged and skipped; if all of them fail
// the result is empty.
func (a *Aggregator) Search(ctx context.Context, queries []string, maxResults int) []models.Mention {
	if len(queries) == 0 {
		return []models.Mention{}
	}

	perQuery := maxResults / len(queries)
	results := make([][]models.Mention, len(queries))

	if a.concurrency == 1 {
		for i, query := range queries {
			results[i] = a.runQuery(ctx, query, perQuery)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(a.concurrency)
		for i, query := range queries {
			g.Go(func() error {
				results[i] = a.runQuery(ctx, query, perQuery)
				return nil
			})
		}
		_ = g.Wait()
	}

	var merged []models.Mention
	for _, mentions := range results {
		merged = append(merged, mentions...)
	}

	unique := DeduplicateMentions(merged)
	logrus.Infof("Collected %d unique mentions from %d queries", len(unique), len(queries))
	metrics.MentionsCollected.Add(float64(len(unique)))

	return unique
}

func (a *Aggregator) runQuery(ctx context.Context, query string, maxResults int) []models.Mention {
	metrics.SearchQueriesTotal.Inc()

	if a.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.callTimeout)
		defer cancel()
	}

	mentions, err := a.searcher.Search(ctx, query, maxResults)
	if err != nil {
		qerr := &SearchQueryError{Query: query, Err: err}
		logrus.WithField("query", query).Warnf("Warning: %v", qerr)
		metrics.SearchQueryFailures.Inc()
		return nil
	}

	for i := range mentions {
		if mentions[i].Query == "" {
			mentions[i].Query = query
		}
	}

	logrus.Debugf("Query %q returned %d mentions", query, len(mentions))
	return mentions
}

// DeduplicateMentions drops every mention whose ID was already seen,
// keeping the order of first occurrence
func DeduplicateMentions(mentions []models.Mention) []models.Mention {
	seen := make(map[string]bool)
	unique := make([]models.Mention, 0, len(mentions))

	for _, mention := range mentions {
		if !seen[mention.ID] {
			seen[mention.ID] = true
			unique = append(unique, mention)
		}
	}

	return unique
}
