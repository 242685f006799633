package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mentionforge/brand-analyzer/internal/metrics"
	"github.com/mentionforge/brand-analyzer/internal/models"
	"github.com/sirupsen/logrus"
)

const mockHash = "mock-hash"

// Publisher pins artifacts to IPFS, falling back to a mock result when the
// pinning service has no credentials
type Publisher struct {
	pinner      Pinner
	gatewayURL  string
	callTimeout time.Duration
}

// NewPublisher creates a publisher. gatewayURL is the prefix gateway links
// are built from, e.g. "https://gateway.pinata.cloud/ipfs/".
func NewPublisher(pinner Pinner, gatewayURL string, callTimeout time.Duration) *Publisher {
	if !strings.HasSuffix(gatewayURL, "/") {
		gatewayURL += "/"
	}
	return &Publisher{
		pinner:      pinner,
		gatewayURL:  gatewayURL,
		callTimeout: callTimeout,
	}
}

// Publish uploads content. Missing credentials yield the mock result and no
// error; any other failure is returned as a *PublishError.
func (p *Publisher) Publish(ctx context.Context, content interface{}, metadata map[string]string) (*models.PublishResult, error) {
	if p.pinner == nil || !p.pinner.Configured() {
		logrus.Warn("Pinata API credentials are missing, content will not be stored on IPFS")
		metrics.PublishResults.WithLabelValues("mock").Inc()
		return p.mockResult(), nil
	}

	if content == nil {
		return nil, &PublishError{Err: errors.New("content is required for IPFS upload")}
	}

	meta := map[string]string{
		"name": fmt.Sprintf("Product-Analysis-%d", time.Now().UnixMilli()),
	}
	for k, v := range metadata {
		meta[k] = v
	}

	if p.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.callTimeout)
		defer cancel()
	}

	hash, err := p.pinner.PinJSON(ctx, content, meta)
	if errors.Is(err, ErrCredentialsMissing) {
		metrics.PublishResults.WithLabelValues("mock").Inc()
		return p.mockResult(), nil
	}
	if err != nil {
		metrics.PublishResults.WithLabelValues("error").Inc()
		return nil, &PublishError{Err: err}
	}

	result := p.result(hash)
	metrics.PublishResults.WithLabelValues("pinned").Inc()
	logrus.Infof("Successfully uploaded to IPFS: %s", result.URI)

	return result, nil
}

func (p *Publisher) result(hash string) *models.PublishResult {
	return &models.PublishResult{
		URI:        "ipfs://" + hash,
		Hash:       hash,
		GatewayURL: p.gatewayURL + hash,
	}
}

func (p *Publisher) mockResult() *models.PublishResult {
	result := p.result(mockHash)
	result.Mock = true
	return result
}
