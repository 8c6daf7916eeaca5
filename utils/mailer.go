package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type Mailer struct {
	client *ses.Client
	from   string
}

func NewMailer(cfg aws.Config, from string) *Mailer {
	return &Mailer{client: ses.NewFromConfig(cfg), from: from}
}

func (m *Mailer) sendEmail(ctx context.Context, to, subject, body string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
		Source: aws.String(m.from),
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}

// SendAdviceDigest mails the advice stored for date.
func (m *Mailer) SendAdviceDigest(ctx context.Context, to, date string, advice AdviceResult) error {
	subject := fmt.Sprintf("【PFCバランス】%s の食事アドバイス", date)
	return m.sendEmail(ctx, to, subject, FormatAdviceDigest(date, advice))
}

// FormatAdviceDigest renders advice as a plain text mail body.
func FormatAdviceDigest(date string, advice AdviceResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s の栄養アドバイス\n\n", date)
	if advice.Summary != "" {
		sb.WriteString(advice.Summary)
		sb.WriteString("\n")
	}

	if len(advice.DeficientNutrients) > 0 {
		sb.WriteString("\n■ 不足している栄養素\n")
		for _, d := range advice.DeficientNutrients {
			fmt.Fprintf(&sb, "- %s（%.1fg 不足）\n", d.Nutrient, d.Deficit)
			for _, r := range d.Recommendations {
				fmt.Fprintf(&sb, "    ・%s\n", r)
			}
		}
	}
	if len(advice.OverconsumedNutrients) > 0 {
		sb.WriteString("\n■ 摂りすぎている栄養素\n")
		for _, o := range advice.OverconsumedNutrients {
			fmt.Fprintf(&sb, "- %s（%.1fg 超過）\n", o.Nutrient, o.Excess)
			for _, s := range o.Suggestions {
				fmt.Fprintf(&sb, "    ・%s\n", s)
			}
		}
	}
	if len(advice.MealSuggestions) > 0 {
		sb.WriteString("\n■ 次の食事への提案\n")
		for _, s := range advice.MealSuggestions {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}
	return sb.String()
}
