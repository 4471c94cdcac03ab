package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	SendCodeEmailTaskName  = "sendCodeEmailTask"
	SendCodeEmailQueueName = "sendCodeEmailQueue"
)

type SendCodeEmail struct {
	Email            string `json:"email"`
	Username         string `json:"username"`
	VerificationCode string `json:"verification_code"`
	Purpose          string `json:"purpose"`
}

func NewSendCodeEmailTask(email, username, verificationCode, purpose string) (*asynq.Task, error) {
	data := SendCodeEmail{
		Email:            email,
		Username:         username,
		VerificationCode: verificationCode,
		Purpose:          purpose,
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendCodeEmailTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(SendCodeEmailQueueName),
	), nil
}
