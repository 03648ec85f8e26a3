package persistence

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// SeedSampleData populates empty collections with the development fixtures:
// two tickets and an admin/user account pair. Non-empty collections are
// left untouched.
func SeedSampleData(ctx context.Context, store Collections, bcryptCost int, logger *zap.Logger) error {
	tickets, err := ReadCollection[domain.Ticket](ctx, store, CollectionTickets)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		if err := WriteCollection(ctx, store, CollectionTickets, sampleTickets()); err != nil {
			return err
		}
		logger.Info("seeded sample tickets")
	}

	users, err := ReadCollection[domain.User](ctx, store, CollectionUsers)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		seeded, err := sampleUsers(bcryptCost)
		if err != nil {
			return err
		}
		if err := WriteCollection(ctx, store, CollectionUsers, seeded); err != nil {
			return err
		}
		logger.Info("seeded sample users")
	}

	return nil
}

func sampleTickets() []domain.Ticket {
	return []domain.Ticket{
		{
			ID:          "1",
			Title:       "Bug: Login button not working",
			Description: "Users cannot log in using the login button on the homepage.",
			Status:      domain.TicketStatusOpen,
			Priority:    domain.TicketPriorityHigh,
			CreatedAt:   time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:          "2",
			Title:       "Feature: Add dark mode",
			Description: "Implement dark mode toggle for better user experience.",
			Status:      domain.TicketStatusInProgress,
			Priority:    domain.TicketPriorityMedium,
			CreatedAt:   time.Date(2024, 1, 16, 14, 30, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 1, 16, 14, 30, 0, 0, time.UTC),
		},
	}
}

func sampleUsers(bcryptCost int) ([]domain.User, error) {
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcryptCost)
	if err != nil {
		return nil, err
	}
	userHash, err := bcrypt.GenerateFromPassword([]byte("user123"), bcryptCost)
	if err != nil {
		return nil, err
	}

	return []domain.User{
		{
			ID:           "1",
			Username:     "admin",
			PasswordHash: string(adminHash),
			Role:         domain.RoleAdmin,
			CreatedAt:    createdAt,
		},
		{
			ID:           "2",
			Username:     "user",
			PasswordHash: string(userHash),
			Role:         domain.RoleUser,
			CreatedAt:    createdAt,
		},
	}, nil
}
