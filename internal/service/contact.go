package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rosellea-backend/internal/apperr"
	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/repository"
)

type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type ContactReceipt struct {
	ID          primitive.ObjectID `json:"id"`
	SubmittedAt time.Time          `json:"submittedAt"`
}

var validate = validator.New()

type ContactService struct {
	contacts repository.ContactRepository
}

func NewContactService(contacts repository.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*ContactReceipt, error) {
	c := &domain.Contact{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
	if c.Name == "" || c.Email == "" || c.Subject == "" || c.Message == "" {
		return nil, apperr.InvalidInput("All fields are required")
	}
	if err := validate.Var(c.Email, "email"); err != nil {
		return nil, apperr.InvalidInput("Validation failed", "email")
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, apperr.Internal(err)
	}
	return &ContactReceipt{ID: c.ID, SubmittedAt: c.CreatedAt}, nil
}
