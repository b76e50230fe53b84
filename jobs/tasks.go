package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendOTP delivers one-time codes by email.
	TaskTypeSendOTP = "mail:otp"
	// TaskTypeNormalizeSplits repairs dispatch split suffixes.
	TaskTypeNormalizeSplits = "dispatch:normalize"
)

// SendOTPPayload carries an OTP delivery request.
type SendOTPPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// NewSendOTPTask constructs an Asynq task.
func NewSendOTPTask(payload SendOTPPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendOTP, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// NewNormalizeSplitsTask constructs the split-suffix housekeeping task.
func NewNormalizeSplitsTask() *asynq.Task {
	return asynq.NewTask(TaskTypeNormalizeSplits, nil, asynq.Queue(QueueDefault))
}

// SMTPConfig is the mail relay configuration.
type SMTPConfig struct {
	Host string
	Port int
	From string
}

// OTPMailHandler processes TaskTypeSendOTP tasks. Without a configured
// relay it logs the code, which is what local development runs on.
type OTPMailHandler struct {
	logger *slog.Logger
	smtp   SMTPConfig
}

// NewOTPMailHandler constructs an OTPMailHandler.
func NewOTPMailHandler(logger *slog.Logger, smtp SMTPConfig) *OTPMailHandler {
	return &OTPMailHandler{logger: logger, smtp: smtp}
}

// ProcessTask sends the OTP email.
func (h *OTPMailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload SendOTPPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if h.smtp.Host == "" {
		h.logger.Info("otp mail (no smtp relay configured)",
			slog.String("email", payload.Email), slog.String("code", payload.Code))
		return nil
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Your verification code\r\n\r\nYour one-time code is %s. It expires in 10 minutes.\r\n",
		h.smtp.From, payload.Email, payload.Code)
	addr := fmt.Sprintf("%s:%d", h.smtp.Host, h.smtp.Port)
	if err := smtp.SendMail(addr, nil, h.smtp.From, []string{payload.Email}, []byte(msg)); err != nil {
		return fmt.Errorf("jobs: send otp mail: %w", err)
	}
	return nil
}

// SplitNormalizer is the slice of the dispatch engine the housekeeping
// task uses.
type SplitNormalizer interface {
	Normalize(ctx context.Context) error
}

// NormalizeSplitsHandler processes TaskTypeNormalizeSplits tasks.
type NormalizeSplitsHandler struct {
	logger     *slog.Logger
	normalizer SplitNormalizer
}

// NewNormalizeSplitsHandler constructs a NormalizeSplitsHandler.
func NewNormalizeSplitsHandler(logger *slog.Logger, normalizer SplitNormalizer) *NormalizeSplitsHandler {
	return &NormalizeSplitsHandler{logger: logger, normalizer: normalizer}
}

// ProcessTask re-runs suffix normalization. The repair is idempotent,
// so overlapping runs are harmless.
func (h *NormalizeSplitsHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	if err := h.normalizer.Normalize(ctx); err != nil {
		return fmt.Errorf("jobs: normalize splits: %w", err)
	}
	h.logger.Debug("dispatch split suffixes normalized")
	return nil
}
