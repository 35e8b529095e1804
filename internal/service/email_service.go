package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService sends transactional email via Amazon SES. With no
// from-address configured it becomes a no-op, which keeps local
// development free of AWS credentials.
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWaitlistConfirmation acknowledges a waitlist signup
func (s *EmailService) SendWaitlistConfirmation(ctx context.Context, toEmail string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): waitlist confirmation to %s", toEmail)
		return nil
	}

	subject := "You're on the Pigmemento waitlist"
	htmlBody := `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1>Thanks for joining the waitlist</h1>
		<p>We'll let you know as soon as Pigmemento opens up for new accounts.</p>
		<p>Pigmemento is a daily drill for telling benign from malignant skin lesions, built for trainees.</p>
		<p style="font-size: 12px; color: #666;">Educational use only - not for diagnosis or patient management.</p>
	</div>
</body>
</html>
`
	textBody := `Thanks for joining the waitlist.

We'll let you know as soon as Pigmemento opens up for new accounts.

Pigmemento is a daily drill for telling benign from malignant skin lesions, built for trainees.

Educational use only - not for diagnosis or patient management.
`
	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendWaitlistNotification tells the operator about a new signup
func (s *EmailService) SendWaitlistNotification(ctx context.Context, notifyEmail, signupEmail string, total int) error {
	if !s.enabled || notifyEmail == "" {
		return nil
	}

	subject := "New Pigmemento waitlist signup"
	body := fmt.Sprintf("New waitlist signup: %s\nTotal signups: %d\n", signupEmail, total)
	htmlBody := fmt.Sprintf("<p>New waitlist signup: <strong>%s</strong></p><p>Total signups: %d</p>", signupEmail, total)
	return s.sendEmail(ctx, notifyEmail, subject, htmlBody, body)
}

func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
