package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chess2earn/backend/internal/queue/task"
	"github.com/chess2earn/backend/internal/worker"

	"github.com/hibiken/asynq"
)

type sendCodeEmailProcessor struct {
	workers *worker.Workers
}

func NewSendCodeEmailProcessor(workers *worker.Workers) *sendCodeEmailProcessor {
	return &sendCodeEmailProcessor{
		workers: workers,
	}
}

func (p *sendCodeEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendCodeEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return fmt.Errorf("process send code email task json unmarshal failed: %w", err)
	}

	if err := p.workers.EmailSender.SendCodeEmail(ctx, data.Email, data.Username, data.VerificationCode, data.Purpose); err != nil {
		return fmt.Errorf("send code email failed: %w", err)
	}

	return nil
}
