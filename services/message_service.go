package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/repositories"
	"github.com/HSouheill/branchstock_backend/utils"
)

const defaultMessageLimit = 50

type Mailer interface {
	Send(to, subject, body string) error
}

// MessageNotifier pushes owner messages to connected admins.
type MessageNotifier interface {
	OwnerMessage(msg models.OwnerMessage)
}

// MessageService lets workers leave notes for the owners.
type MessageService struct {
	messages   repositories.MessageRepository
	users      repositories.UserRepository
	notifier   MessageNotifier
	mailer     Mailer
	ownerEmail string
	now        func() time.Time
}

func NewMessageService(messages repositories.MessageRepository, users repositories.UserRepository, notifier MessageNotifier, mailer Mailer, ownerEmail string) *MessageService {
	return &MessageService{
		messages:   messages,
		users:      users,
		notifier:   notifier,
		mailer:     mailer,
		ownerEmail: ownerEmail,
		now:        time.Now,
	}
}

// SendMessage stores a worker's note, then notifies the owners. Delivery
// failures are logged and do not fail the call.
func (s *MessageService) SendMessage(ctx context.Context, workerUID, body string) (*models.OwnerMessage, error) {
	body = utils.SanitizeInput(body)
	if body == "" {
		return nil, newValidationError("body", "message is required")
	}

	worker, err := s.users.FindByID(ctx, workerUID)
	if err != nil {
		return nil, err
	}

	msg := &models.OwnerMessage{
		ID:         uuid.NewString(),
		WorkerID:   worker.UID,
		WorkerName: worker.Name,
		Body:       body,
		CreatedAt:  s.now(),
	}
	if worker.BranchID != nil {
		msg.BranchID = *worker.BranchID
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.OwnerMessage(*msg)
	}
	if s.mailer != nil && s.ownerEmail != "" {
		go s.email(*msg, worker)
	}
	return msg, nil
}

func (s *MessageService) email(msg models.OwnerMessage, worker *models.User) {
	branch := msg.BranchID
	if worker.BranchName != nil {
		branch = *worker.BranchName
	}
	subject := fmt.Sprintf("Message from %s", worker.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", worker.Name, worker.Email)
	if branch != "" {
		fmt.Fprintf(&b, " at %s", branch)
	}
	fmt.Fprintf(&b, " wrote:\n\n%s\n", msg.Body)

	if err := s.mailer.Send(s.ownerEmail, subject, b.String()); err != nil {
		log.Warn().Err(err).Str("message", msg.ID).Msg("failed to email owner message")
	}
}

func (s *MessageService) ListMessages(ctx context.Context, limit int64) ([]models.OwnerMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultMessageLimit
	}
	return s.messages.List(ctx, limit)
}
