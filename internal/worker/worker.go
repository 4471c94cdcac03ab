package worker

import (
	"context"

	"github.com/chess2earn/backend/internal/config"
	emailProvider "github.com/chess2earn/backend/pkg/email"
)

type Workers struct {
	EmailSender EmailSender
}

type Deps struct {
	EmailProvider emailProvider.Sender
	Config        *config.Config
}

type EmailSender interface {
	SendCodeEmail(ctx context.Context, email, username, verificationCode, purpose string) error
}

func NewWorkers(deps Deps) *Workers {
	return &Workers{
		EmailSender: newEmailSender(deps.EmailProvider, deps.Config.Email),
	}
}
