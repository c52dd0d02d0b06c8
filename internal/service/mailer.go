package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

var verificationEmailTemplate = template.Must(template.New("verification").Parse(`
<h2>Verify your email</h2>
<p>Click the link below to verify your email:</p>
<a href="{{.VerifyURL}}">{{.VerifyURL}}</a>
<p>This link expires in 15 minutes.</p>
`))

// ResendSender sends verification emails through the Resend API.
type ResendSender struct {
	client        *resend.Client
	from          string
	verifyBaseURL string
}

// NewResendSender creates a new Resend-backed verification sender.
// verifyBaseURL is the front end's verification page; the token is appended
// as a query parameter.
func NewResendSender(apiKey, from, verifyBaseURL string) *ResendSender {
	return &ResendSender{
		client:        resend.NewClient(apiKey),
		from:          from,
		verifyBaseURL: verifyBaseURL,
	}
}

// SendVerificationEmail sends the verification link to the given address.
func (s *ResendSender) SendVerificationEmail(ctx context.Context, email, token string) error {
	verifyURL := fmt.Sprintf("%s?token=%s", s.verifyBaseURL, token)

	var body bytes.Buffer
	if err := verificationEmailTemplate.Execute(&body, struct{ VerifyURL string }{verifyURL}); err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email},
		Subject: "Verify your email",
		Html:    body.String(),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

// LogSender logs verification tokens instead of emailing them. Used in
// development and tests where no mail provider is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a new logging verification sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendVerificationEmail logs the token at info level.
func (s *LogSender) SendVerificationEmail(_ context.Context, email, token string) error {
	s.logger.Info("Verification email (not sent)",
		zap.String("email", email),
		zap.String("token", token),
	)
	return nil
}
