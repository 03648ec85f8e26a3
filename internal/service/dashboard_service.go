package service

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// DefaultRecentLimit bounds the dashboard's recent-activity view.
const DefaultRecentLimit = 5

// DashboardStats holds counts-by-status over all tickets.
type DashboardStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Closed     int `json:"closed"`
}

// DashboardService derives display-ready aggregates from the ticket
// repository.
type DashboardService struct {
	tickets repository.TicketRepository
}

// NewDashboardService constructs the service.
func NewDashboardService(tickets repository.TicketRepository) *DashboardService {
	return &DashboardService{tickets: tickets}
}

// Stats counts tickets by status in a single pass.
func (s *DashboardService) Stats(ctx context.Context, identity *auth.Identity) (*DashboardStats, error) {
	if !auth.Authorize(identity, auth.CapViewTickets, nil) {
		return nil, apperrors.NewPermissionDenied()
	}

	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{Total: len(tickets)}
	for _, ticket := range tickets {
		switch ticket.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats, nil
}

// Recent returns the n most recently created tickets, newest first.
func (s *DashboardService) Recent(ctx context.Context, identity *auth.Identity, n int) ([]domain.Ticket, error) {
	if !auth.Authorize(identity, auth.CapViewTickets, nil) {
		return nil, apperrors.NewPermissionDenied()
	}
	if n <= 0 {
		n = DefaultRecentLimit
	}

	tickets, err := s.tickets.List(ctx, repository.TicketFilter{SortBy: repository.SortNewest})
	if err != nil {
		return nil, err
	}
	if len(tickets) > n {
		tickets = tickets[:n]
	}
	return tickets, nil
}
