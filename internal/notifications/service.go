package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mentionforge/brand-analyzer/internal/config"
	"github.com/mentionforge/brand-analyzer/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const topMentionLimit = 5

// Service sends analysis results to Teams and email
type Service struct {
	config *config.Config
	client *resty.Client
	dialer *gomail.Dialer
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message card
type TeamsMessage struct {
	Type     string         `json:"@type"`
	Context  string         `json:"@context"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Sections []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle string      `json:"activityTitle,omitempty"`
	ActivityText  string      `json:"activityText,omitempty"`
	Facts         []TeamsFact `json:"facts,omitempty"`
	Markdown      bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	s := &Service{
		config: cfg,
		client: resty.New().SetTimeout(cfg.CallTimeout),
	}
	if cfg.NotificationEmail != "" {
		s.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	}
	return s
}

// Enabled reports whether any channel is configured
func (s *Service) Enabled() bool {
	return s.config.TeamsWebhookURL != "" || s.config.NotificationEmail != ""
}

// SendReport sends a finished analysis via the configured channels
func (s *Service) SendReport(report *models.AnalysisReport) error {
	subject := fmt.Sprintf("Brand analysis for @%s (%d mentions)", report.Request.AccountHandle, report.TotalMentions)

	return s.send(func() error {
		return s.postTeams(s.buildTeamsMessage(report))
	}, func() error {
		html, err := s.buildEmailHTML(report)
		if err != nil {
			return fmt.Errorf("failed to build email HTML: %w", err)
		}
		return s.sendEmail(subject, s.buildEmailText(report), html)
	})
}

// SendFailure reports an analysis that aborted
func (s *Service) SendFailure(req models.AnalysisRequest, cause error) error {
	title := fmt.Sprintf("Brand analysis for @%s failed", req.AccountHandle)
	text := fmt.Sprintf("%s at %s: %v", title, time.Now().UTC().Format("2006-01-02 15:04:05 UTC"), cause)

	return s.send(func() error {
		return s.postTeams(&TeamsMessage{
			Type:    "MessageCard",
			Context: "https://schema.org/extensions",
			Title:   title,
			Text:    text,
		})
	}, func() error {
		return s.sendEmail(title, text, "")
	})
}

func (s *Service) send(teams, email func() error) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := teams(); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent notification to Teams")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := email(); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent notification via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) postTeams(message *TeamsMessage) error {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildTeamsMessage(report *models.AnalysisReport) *TeamsMessage {
	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("Brand Analysis - @%s", report.Request.AccountHandle),
		Text:    fmt.Sprintf("Analyzed %d mentions across %d queries", report.TotalMentions, len(report.Queries)),
	}

	facts := []TeamsFact{
		{Name: "Total Mentions", Value: fmt.Sprintf("%d", report.TotalMentions)},
		{Name: "High Engagement", Value: fmt.Sprintf("%d", report.HighEngagementCount)},
		{Name: "Verified Authors", Value: fmt.Sprintf("%d", report.VerifiedAuthorCount)},
		{Name: "Positive / Neutral / Negative", Value: fmt.Sprintf("%d / %d / %d",
			report.Sentiment.Positive, report.Sentiment.Neutral, report.Sentiment.Negative)},
		{Name: "Generated", Value: report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")},
	}
	if report.Template != nil {
		facts = append(facts, TeamsFact{Name: "Coin", Value: report.Template.CoinName})
	}
	facts = append(facts, TeamsFact{Name: "IPFS", Value: publishStatus(report.Publish)})

	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Summary",
		Facts:         facts,
		Markdown:      true,
	})

	if len(report.Mentions) > 0 {
		var top []string
		for i, mention := range report.Mentions {
			if i >= topMentionLimit {
				break
			}
			top = append(top, fmt.Sprintf("**[%s](%s)** (score %d)",
				truncate(mention.Text, 80), mention.URL, mention.RelevanceScore))
		}

		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Top Mentions",
			ActivityText:  strings.Join(top, "\n\n"),
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) sendEmail(subject, text, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	if html != "" {
		m.AddAlternative("text/html", html)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

const emailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Brand Analysis</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #3b2f8f; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .mention { border-left: 4px solid #3b2f8f; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .mention-meta { color: #666; font-size: 0.9em; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Brand Analysis for @{{.Request.AccountHandle}}</h1>
        <p>Generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <p><strong>Total Mentions:</strong> {{.TotalMentions}}</p>
        <p><strong>High Engagement:</strong> {{.HighEngagementCount}}</p>
        <p><strong>Verified Authors:</strong> {{.VerifiedAuthorCount}}</p>
        <p><strong>Sentiment:</strong> {{.Sentiment.Positive}} positive, {{.Sentiment.Neutral}} neutral, {{.Sentiment.Negative}} negative</p>
        {{if .Template}}<p><strong>Coin:</strong> {{.Template.CoinName}} ({{.Template.ProductCategory}})</p>{{end}}
        <p><strong>IPFS:</strong> {{publish .Publish}}</p>
    </div>

    <h2>Summary</h2>
    <p>{{.Summary}}</p>

    {{if .Mentions}}
    <h2>Top Mentions</h2>
    {{range $index, $mention := .Mentions}}
        {{if lt $index 10}}
        <div class="mention">
            <p><a href="{{$mention.URL}}" target="_blank">{{$mention.Text | truncate 200}}</a></p>
            <div class="mention-meta">
                Score {{$mention.RelevanceScore}} | {{$mention.Metrics.LikeCount}} likes | {{$mention.Metrics.RetweetCount}} reposts
            </div>
        </div>
        {{end}}
    {{end}}
    {{end}}

    <hr>
    <p><small>This report was generated automatically by the Brand Analyzer.</small></p>
</body>
</html>
`

func (s *Service) buildEmailHTML(report *models.AnalysisReport) (string, error) {
	t, err := template.New("email").Funcs(template.FuncMap{
		"truncate": func(length int, s string) string { return truncate(s, length) },
		"publish":  publishStatus,
	}).Parse(emailTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, report); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Service) buildEmailText(report *models.AnalysisReport) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("Brand Analysis - @%s\n", report.Request.AccountHandle))
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	text.WriteString(fmt.Sprintf("Total Mentions: %d\n", report.TotalMentions))
	text.WriteString(fmt.Sprintf("High Engagement: %d\n", report.HighEngagementCount))
	text.WriteString(fmt.Sprintf("Verified Authors: %d\n", report.VerifiedAuthorCount))
	text.WriteString(fmt.Sprintf("Sentiment: %d positive, %d neutral, %d negative\n",
		report.Sentiment.Positive, report.Sentiment.Neutral, report.Sentiment.Negative))
	if report.Template != nil {
		text.WriteString(fmt.Sprintf("Coin: %s\n", report.Template.CoinName))
	}
	text.WriteString(fmt.Sprintf("IPFS: %s\n\n", publishStatus(report.Publish)))
	text.WriteString(report.Summary)
	text.WriteString("\n")

	if len(report.Mentions) > 0 {
		text.WriteString("\nTOP MENTIONS\n")
		text.WriteString("============\n")

		for i, mention := range report.Mentions {
			if i >= 10 {
				break
			}
			text.WriteString(fmt.Sprintf("\n%d. [score %d] %s\n", i+1, mention.RelevanceScore, truncate(mention.Text, 200)))
			text.WriteString(fmt.Sprintf("   URL: %s\n", mention.URL))
		}
	}

	text.WriteString("\n---\nThis report was generated automatically by the Brand Analyzer.\n")

	return text.String()
}

func publishStatus(p *models.PublishResult) string {
	switch {
	case p == nil:
		return "not published"
	case p.Failed():
		return "failed: " + p.Error
	case p.Mock:
		return "mock (Pinata not configured)"
	default:
		return p.GatewayURL
	}
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length] + "..."
}
