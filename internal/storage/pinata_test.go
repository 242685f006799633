package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mentionforge/brand-analyzer/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinataClient_Configured(t *testing.T) {
	tests := []struct {
		name      string
		apiKey    string
		secretKey string
		expected  bool
	}{
		{name: "Both keys", apiKey: "key", secretKey: "secret", expected: true},
		{name: "Missing secret", apiKey: "key", expected: false},
		{name: "Missing key", secretKey: "secret", expected: false},
		{name: "Nothing", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewPinataClient(tt.apiKey, tt.secretKey, "", time.Second)
			assert.Equal(t, tt.expected, client.Configured())
		})
	}

	var nilClient *PinataClient
	assert.False(t, nilClient.Configured())
}

func TestPinataClient_PinJSON(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pinning/pinJSONToIPFS", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("pinata_api_key"))
		assert.Equal(t, "secret", r.Header.Get("pinata_secret_api_key"))

		data, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(data, &body))

		_, _ = w.Write([]byte(`{"IpfsHash": "bafyhash", "PinSize": 120, "Timestamp": "2024-05-01T10:00:00Z"}`))
	}))
	defer server.Close()

	client := NewPinataClient("key", "secret", server.URL, time.Second)
	hash, err := client.PinJSON(context.Background(), map[string]string{"meme_coin_name": "GadgetCoin"}, map[string]string{
		"name":   "Product-Analysis-1",
		"handle": "acme",
	})
	require.NoError(t, err)

	assert.Equal(t, "bafyhash", hash)
	assert.Equal(t, map[string]interface{}{"meme_coin_name": "GadgetCoin"}, body["pinataContent"])
	assert.Equal(t, map[string]interface{}{
		"name":      "Product-Analysis-1",
		"keyvalues": map[string]interface{}{"handle": "acme"},
	}, body["pinataMetadata"])
	assert.Equal(t, map[string]interface{}{"cidVersion": float64(1)}, body["pinataOptions"])
}

func TestPinataClient_PinJSONErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{name: "Unauthorized", status: http.StatusUnauthorized, body: `{"error": "bad key"}`, errMsg: "status 401"},
		{name: "Malformed body", status: http.StatusOK, body: `not json`, errMsg: "failed to parse"},
		{name: "Missing hash", status: http.StatusOK, body: `{"PinSize": 1}`, errMsg: "no IpfsHash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewPinataClient("key", "secret", server.URL, time.Second).PinJSON(context.Background(), "x", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPinataClient_PinJSONWithoutCredentials(t *testing.T) {
	_, err := NewPinataClient("", "", "", time.Second).PinJSON(context.Background(), "x", nil)
	assert.True(t, errors.Is(err, analysis.ErrCredentialsMissing))
}

func TestPinContent(t *testing.T) {
	tests := []struct {
		name     string
		content  interface{}
		expected interface{}
	}{
		{
			name:     "JSON object string",
			content:  `{"a": "b"}`,
			expected: map[string]interface{}{"a": "b"},
		},
		{
			name:     "Plain text",
			content:  "hello",
			expected: map[string]string{"content": "hello"},
		},
		{
			name:     "JSON array string",
			content:  `[1, 2]`,
			expected: map[string]string{"content": "[1, 2]"},
		},
		{
			name:     "Struct passes through",
			content:  struct{ A string }{A: "b"},
			expected: struct{ A string }{A: "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, pinContent(tt.content))
		})
	}
}

func TestPinataClient_TestAuthentication(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "Valid keys", status: http.StatusOK, wantErr: false},
		{name: "Rejected keys", status: http.StatusUnauthorized, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/data/testAuthentication", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := NewPinataClient("key", "secret", server.URL, time.Second).TestAuthentication(context.Background())
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}

	err := NewPinataClient("", "", "", time.Second).TestAuthentication(context.Background())
	assert.ErrorIs(t, err, analysis.ErrCredentialsMissing)
}
