package worker

import (
	"context"
	"fmt"

	"github.com/chess2earn/backend/internal/config"
	"github.com/chess2earn/backend/internal/domain"
	emailProvider "github.com/chess2earn/backend/pkg/email"
	"github.com/chess2earn/backend/pkg/logger"

	"go.uber.org/zap"
)

type emailSender struct {
	sender emailProvider.Sender
	config config.EmailConfig
}

func newEmailSender(
	sender emailProvider.Sender,
	config config.EmailConfig,
) *emailSender {
	return &emailSender{
		sender: sender,
		config: config,
	}
}

type codeEmailInput struct {
	Username string
	Code     string
}

func (s *emailSender) SendCodeEmail(ctx context.Context, email, username, verificationCode, purpose string) error {
	// Development setups run without an SMTP account; the code is surfaced
	// through the log instead. main refuses this mode in production.
	if !s.config.Enabled {
		logger.Info("email delivery disabled, verification code logged",
			zap.String("email", email),
			zap.String("purpose", purpose),
			zap.String("code", verificationCode),
		)
		return nil
	}

	subject := "Chess2Earn - Verify Your Email"
	templateName := s.config.Templates.Verification
	if purpose == string(domain.PurposeLogin) {
		subject = "Chess2Earn - Login Code"
		templateName = s.config.Templates.Login
	}

	templateInput := codeEmailInput{Username: username, Code: verificationCode}
	sendInput := emailProvider.SendEmailInput{Subject: subject, To: email}

	if err := sendInput.GenerateBodyFromHTML(templateName, templateInput); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}
