package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mentionforge/brand-analyzer/internal/config"
	"github.com/mentionforge/brand-analyzer/internal/models"
	"github.com/mentionforge/brand-analyzer/internal/service"
	"github.com/mentionforge/brand-analyzer/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		req    models.AnalysisRequest
		outDir string
		debug  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a brand's X mentions and build its token template",
		Long: `Searches X for posts from and about an account, scores them, asks the
language model for a summary and a token template, and pins the template to IPFS.
The report is printed and saved as JSON under --out.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				logrus.Debug("No .env file found, using environment variables")
			}
			if debug {
				logrus.SetLevel(logrus.DebugLevel)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.PipelineTimeout)
			defer cancel()

			orchestrator, err := service.BuildOrchestrator(ctx, cfg)
			if err != nil {
				return err
			}

			analysisService := service.NewService(cfg, orchestrator, storage.NewFileStorage(outDir), nil)
			report, err := analysisService.Run(ctx, req)
			if err != nil {
				return err
			}

			printReport(cmd, report)
			fmt.Fprintf(cmd.OutOrStdout(), "\nReport saved to: %s/%s\n", outDir, service.ReportName(report))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.AccountHandle, "handle", "", "X account handle, without @")
	flags.StringVar(&req.ProductInfo, "product", "", "product description")
	flags.StringVar(&req.ProductName, "product-name", "", "product name used for relevance scoring (defaults to --product)")
	flags.StringVar(&req.RecipientAddress, "address", "", "wallet address written into the template")
	flags.StringSliceVar(&req.Keywords, "keywords", nil, "search keywords (extracted by the model when empty)")
	flags.IntVar(&req.MaxResults, "max-results", 0, "total search result budget (defaults to MAX_RESULTS)")
	flags.StringVar(&outDir, "out", "analysis_output", "directory the report JSON is written to")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")

	_ = cmd.MarkFlagRequired("handle")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}

func printReport(cmd *cobra.Command, report *models.AnalysisReport) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "\n"+strings.Repeat("=", 70))
	fmt.Fprintf(out, "BRAND ANALYSIS - @%s\n", report.Request.AccountHandle)
	fmt.Fprintln(out, strings.Repeat("=", 70))
	fmt.Fprintf(out, "Generated:        %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(out, "Keywords:         %s\n", strings.Join(report.Keywords, ", "))
	fmt.Fprintf(out, "Queries:          %d\n", len(report.Queries))
	fmt.Fprintf(out, "Total Mentions:   %d\n", report.TotalMentions)
	fmt.Fprintf(out, "High Engagement:  %d\n", report.HighEngagementCount)
	fmt.Fprintf(out, "Verified Authors: %d\n", report.VerifiedAuthorCount)
	fmt.Fprintf(out, "Sentiment:        %d positive / %d neutral / %d negative\n",
		report.Sentiment.Positive, report.Sentiment.Neutral, report.Sentiment.Negative)

	if t := report.Template; t != nil {
		fmt.Fprintln(out, "\nTemplate:")
		fmt.Fprintf(out, "   Company:  %s\n", t.CompanyName)
		fmt.Fprintf(out, "   Coin:     %s\n", t.CoinName)
		fmt.Fprintf(out, "   Category: %s\n", t.ProductCategory)
		fmt.Fprintf(out, "   Wallet:   %s\n", t.WalletAddress)
	}

	switch p := report.Publish; {
	case p == nil:
	case p.Failed():
		fmt.Fprintf(out, "\nIPFS: upload failed: %s\n", p.Error)
	case p.Mock:
		fmt.Fprintf(out, "\nIPFS: %s (mock, Pinata not configured)\n", p.URI)
	default:
		fmt.Fprintf(out, "\nIPFS: %s\n      %s\n", p.URI, p.GatewayURL)
	}

	fmt.Fprintln(out, "\nSummary:")
	fmt.Fprintln(out, report.Summary)

	for i, mention := range report.Mentions {
		if i >= 5 {
			fmt.Fprintf(out, "\n   ... and %d more mentions\n", len(report.Mentions)-5)
			break
		}
		fmt.Fprintf(out, "\n   %d. [score %d] %s\n", i+1, mention.RelevanceScore, mention.Text)
		fmt.Fprintf(out, "      URL: %s\n", mention.URL)
	}
}
