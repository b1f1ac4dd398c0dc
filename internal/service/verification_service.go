package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nemuzard/notesys/internal/domain"
	"github.com/nemuzard/notesys/internal/queue"
	"github.com/nemuzard/notesys/internal/verification"
)

// VerificationService fronts the durable email task queue. Requesting a
// code is fire-and-forget: the request handler returns as soon as the task
// is appended, and the consumer loop performs the send later.
type VerificationService struct {
	q      queue.TaskQueue
	codes  verification.Store
	logger *zap.Logger
}

func NewVerificationService(q queue.TaskQueue, codes verification.Store, logger *zap.Logger) *VerificationService {
	return &VerificationService{q: q, codes: codes, logger: logger}
}

// RequestCode generates a fresh code and enqueues the send. The code only
// becomes checkable once the consumer has delivered the email and written
// the verification record.
func (s *VerificationService) RequestCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if !validEmail(email) {
		return domain.ErrInvalidEmail
	}

	code, err := verification.GenerateCode()
	if err != nil {
		return err
	}

	task := queue.Task{Kind: queue.TaskKindEmailVerification, Email: email, Code: code}
	if err := s.q.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("enqueue email task: %w", err)
	}

	s.logger.Info("verification email queued", zap.String("email", email))
	return nil
}

// CheckCode reports whether the submitted code matches the live record for
// the subject. Absent and expired records come back as a normal negative
// result, never an error.
func (s *VerificationService) CheckCode(ctx context.Context, email, code string) (verification.Result, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !validEmail(email) {
		return "", domain.ErrInvalidEmail
	}
	return s.codes.Check(ctx, email, code)
}

// validEmail applies the same loose shape check the registration form does;
// real validation is the verification email itself.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".") && len(email) <= 254
}
