package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pigmemento/internal/models"
	"pigmemento/internal/repository"
	"pigmemento/internal/validation"
)

// WaitlistService records pre-launch signups and sends the
// confirmation email
type WaitlistService struct {
	waitlistRepo *repository.WaitlistRepository
	email        *EmailService
	notifyEmail  string
}

// NewWaitlistService creates a new waitlist service
func NewWaitlistService(waitlistRepo *repository.WaitlistRepository, email *EmailService, notifyEmail string) *WaitlistService {
	return &WaitlistService{
		waitlistRepo: waitlistRepo,
		email:        email,
		notifyEmail:  notifyEmail,
	}
}

// Join adds an email to the waitlist. Joining twice is not an error
// and does not leak whether the email was already signed up.
func (s *WaitlistService) Join(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	existing, err := s.waitlistRepo.GetEntryByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check waitlist: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	entry, err := s.waitlistRepo.AddEntry(email)
	if err != nil {
		return nil, err
	}

	// Email failures must not lose the signup
	if err := s.email.SendWaitlistConfirmation(ctx, email); err != nil {
		log.Printf("Failed to send waitlist confirmation to %s: %v", email, err)
	}
	if total, err := s.waitlistRepo.CountEntries(); err == nil {
		if err := s.email.SendWaitlistNotification(ctx, s.notifyEmail, email, total); err != nil {
			log.Printf("Failed to send waitlist notification: %v", err)
		}
	}
	return entry, nil
}
