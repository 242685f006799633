package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mentionforge/brand-analyzer/internal/analysis"
	"github.com/sirupsen/logrus"
)

// PinataClient pins JSON documents to IPFS through the Pinata API
type PinataClient struct {
	apiKey    string
	secretKey string
	baseURL   string
	client    *resty.Client
}

// Ensure PinataClient implements the publisher's pinner
var _ analysis.Pinner = (*PinataClient)(nil)

type pinataRequest struct {
	Content  interface{}    `json:"pinataContent"`
	Metadata pinataMetadata `json:"pinataMetadata"`
	Options  pinataOptions  `json:"pinataOptions"`
}

type pinataMetadata struct {
	Name      string            `json:"name,omitempty"`
	KeyValues map[string]string `json:"keyvalues,omitempty"`
}

type pinataOptions struct {
	CIDVersion int `json:"cidVersion"`
}

type pinataResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// NewPinataClient creates a Pinata client. Missing credentials are allowed;
// Configured reports them and PinJSON refuses to call the API.
func NewPinataClient(apiKey, secretKey, baseURL string, timeout time.Duration) *PinataClient {
	if baseURL == "" {
		baseURL = "https://api.pinata.cloud"
	}
	return &PinataClient{
		apiKey:    apiKey,
		secretKey: secretKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		client:    resty.New().SetTimeout(timeout),
	}
}

// Configured reports whether both API credentials are present
func (p *PinataClient) Configured() bool {
	return p != nil && p.apiKey != "" && p.secretKey != ""
}

// PinJSON pins content as JSON and returns its IPFS hash. A "name" metadata
// entry becomes the pin name; the rest are stored as key values.
func (p *PinataClient) PinJSON(ctx context.Context, content interface{}, metadata map[string]string) (string, error) {
	if !p.Configured() {
		return "", analysis.ErrCredentialsMissing
	}

	body := pinataRequest{
		Content: pinContent(content),
		Options: pinataOptions{CIDVersion: 1},
	}
	for k, v := range metadata {
		if k == "name" {
			body.Metadata.Name = v
			continue
		}
		if body.Metadata.KeyValues == nil {
			body.Metadata.KeyValues = make(map[string]string)
		}
		body.Metadata.KeyValues[k] = v
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("pinata_api_key", p.apiKey).
		SetHeader("pinata_secret_api_key", p.secretKey).
		SetBody(body).
		Post(p.baseURL + "/pinning/pinJSONToIPFS")

	if err != nil {
		return "", fmt.Errorf("failed to call Pinata: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("pinata returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var pinResp pinataResponse
	if err := json.Unmarshal(resp.Body(), &pinResp); err != nil {
		return "", fmt.Errorf("failed to parse Pinata response: %w", err)
	}
	if pinResp.IpfsHash == "" {
		return "", fmt.Errorf("pinata response has no IpfsHash")
	}

	logrus.Debugf("Pinned %d bytes as %s", pinResp.PinSize, pinResp.IpfsHash)
	return pinResp.IpfsHash, nil
}

// TestAuthentication checks the credentials against the Pinata API
func (p *PinataClient) TestAuthentication(ctx context.Context) error {
	if !p.Configured() {
		return analysis.ErrCredentialsMissing
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("pinata_api_key", p.apiKey).
		SetHeader("pinata_secret_api_key", p.secretKey).
		Get(p.baseURL + "/data/testAuthentication")

	if err != nil {
		return fmt.Errorf("failed to call Pinata: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("pinata authentication failed with status %d", resp.StatusCode())
	}

	return nil
}

// pinContent wraps plain strings so Pinata always receives a JSON value
// it can pin as a document
func pinContent(content interface{}) interface{} {
	if s, ok := content.(string); ok {
		var decoded interface{}
		if json.Unmarshal([]byte(s), &decoded) == nil {
			if _, isObject := decoded.(map[string]interface{}); isObject {
				return decoded
			}
		}
		return map[string]string{"content": s}
	}
	return content
}
