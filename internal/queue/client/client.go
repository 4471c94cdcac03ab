package client

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/chess2earn/backend/internal/domain"
	"github.com/chess2earn/backend/internal/queue/task"
)

// Client enqueues email tasks for the asynq workers. It is constructed in
// main and injected into the services; enqueueing is the request-path side
// of code delivery, so an enqueue failure fails the caller's request.
type Client struct {
	client *asynq.Client
}

func New(opt asynq.RedisConnOpt) *Client {
	return &Client{
		client: asynq.NewClient(opt),
	}
}

func (c *Client) SendCodeEmail(ctx context.Context, email, username, code string, purpose domain.CodePurpose) error {
	t, err := task.NewSendCodeEmailTask(email, username, code, string(purpose))
	if err != nil {
		return fmt.Errorf("build send code email task failed: %w", err)
	}

	if _, err := c.client.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("enqueue send code email task failed: %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
