package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TWITTER_BEARER_TOKEN", "bearer")
	t.Setenv("GEMINI_API_KEY", "gemini")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 100, cfg.MaxResults)
	assert.Equal(t, 1, cfg.SearchConcurrency)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/", cfg.PinataGatewayURL)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)
	assert.Equal(t, 5*time.Minute, cfg.PipelineTimeout)
	assert.False(t, cfg.PinataConfigured())
	assert.False(t, cfg.ScheduleEnabled())
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		twitter string
		gemini  string
	}{
		{name: "Missing bearer token", gemini: "gemini"},
		{name: "Missing Gemini key", twitter: "bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TWITTER_BEARER_TOKEN", tt.twitter)
			t.Setenv("GEMINI_API_KEY", tt.gemini)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmailRequiresSMTP(t *testing.T) {
	setRequired(t)
	t.Setenv("NOTIFICATION_EMAIL", "team@example.com")

	_, err := Load()
	assert.ErrorContains(t, err, "SMTP configuration is required")
}

func TestLoad_PinataAndSchedule(t *testing.T) {
	setRequired(t)
	t.Setenv("PINATA_API_KEY", "key")
	t.Setenv("PINATA_SECRET_KEY", "secret")
	t.Setenv("ANALYSIS_SCHEDULE", "0 0 9 * * *")
	t.Setenv("SCHEDULED_BRANDS", "@acme|gadget|0xabc, globex|widget|0xdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.PinataConfigured())
	assert.True(t, cfg.ScheduleEnabled())
	require.Len(t, cfg.ScheduledBrands, 2)
	assert.Equal(t, BrandTarget{Handle: "acme", Product: "gadget", Address: "0xabc"}, cfg.ScheduledBrands[0])
	assert.Equal(t, "globex", cfg.ScheduledBrands[1].Handle)
}

func TestParseBrandTargets(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "Empty", input: "", want: 0},
		{name: "Single", input: "acme|gadget|0xabc", want: 1},
		{name: "Trailing comma", input: "acme|gadget|0xabc,", want: 1},
		{name: "Too few parts", input: "acme|gadget", wantErr: true},
		{name: "Empty field", input: "acme||0xabc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets, err := ParseBrandTargets(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, targets, tt.want)
		})
	}
}
