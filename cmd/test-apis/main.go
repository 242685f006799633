package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mentionforge/brand-analyzer/internal/config"
	"github.com/mentionforge/brand-analyzer/internal/llm"
	"github.com/mentionforge/brand-analyzer/internal/sources"
	"github.com/mentionforge/brand-analyzer/internal/storage"
)

func main() {
	fmt.Println("🔍 Brand Analyzer - API Connectivity Test")
	fmt.Println("=========================================")

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("\n📡 Testing APIs...")
	fmt.Println(strings.Repeat("-", 40))

	testSource(ctx, sources.NewTwitterSource(cfg.TwitterBearerToken, cfg.TwitterAPIURL, cfg.CallTimeout), "from:XDevelopers")
	testGemini(ctx, cfg)
	testPinata(ctx, cfg)

	fmt.Println("\n✅ API connectivity test completed!")
	fmt.Println("\n💡 Next steps:")
	fmt.Println("   • Configure missing API keys in .env file")
	fmt.Println("   • Run one analysis with: go run ./cmd/analyze --handle <handle> --product <info> --address <wallet>")
}

func testSource(ctx context.Context, source sources.Source, query string) {
	fmt.Printf("🔸 Testing %s search... ", source.GetName())

	if !source.IsEnabled() {
		fmt.Printf("⚠️  DISABLED (missing API key)\n")
		return
	}

	mentions, err := source.Search(ctx, query, 10)
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}

	fmt.Printf("✅ SUCCESS (%d posts found)\n", len(mentions))

	// Show sample mention
	if len(mentions) > 0 {
		fmt.Printf("   📝 Sample: \"%s\"\n", truncate(mentions[0].Text, 80))
	}
}

func testGemini(ctx context.Context, cfg *config.Config) {
	fmt.Printf("🔸 Testing Gemini (%s)... ", cfg.GeminiModel)

	client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTemperature)
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}

	reply, err := client.GenerateText(ctx, "Reply with the single word OK.")
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}

	fmt.Printf("✅ SUCCESS (replied %q)\n", truncate(strings.TrimSpace(reply), 40))
}

func testPinata(ctx context.Context, cfg *config.Config) {
	fmt.Printf("🔸 Testing Pinata... ")

	pinata := storage.NewPinataClient(cfg.PinataAPIKey, cfg.PinataSecretKey, cfg.PinataAPIURL, cfg.CallTimeout)
	if !pinata.Configured() {
		fmt.Printf("⚠️  DISABLED (missing API key, publishing will return mock results)\n")
		return
	}

	if err := pinata.TestAuthentication(ctx); err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}

	fmt.Printf("✅ SUCCESS\n")
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length] + "..."
}
