package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketService gates every ticket operation through the capability table
// with an explicit identity, validates input bounds, and emits events.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{tickets: tickets, dispatcher: dispatcher}
}

// TicketCreateInput describes the ticket creation payload. Status and
// Priority arrive as raw form strings and are canonicalized here.
type TicketCreateInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
}

// TicketUpdateInput carries the fields an edit may change; nil means leave
// the field alone.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
}

// List returns tickets matching the filter.
func (s *TicketService) List(ctx context.Context, identity *auth.Identity, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if !auth.Authorize(identity, auth.CapViewTickets, nil) {
		return nil, apperrors.NewPermissionDenied()
	}
	return s.tickets.List(ctx, filter)
}

// Get returns one ticket by id.
func (s *TicketService) Get(ctx context.Context, identity *auth.Identity, id string) (*domain.Ticket, error) {
	if !auth.Authorize(identity, auth.CapViewTickets, nil) {
		return nil, apperrors.NewPermissionDenied()
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return ticket, nil
}

// Create validates input bounds and stores a new ticket owned by the
// caller.
func (s *TicketService) Create(ctx context.Context, identity *auth.Identity, input TicketCreateInput) (*domain.Ticket, error) {
	if !auth.Authorize(identity, auth.CapCreateTickets, nil) {
		return nil, apperrors.NewPermissionDenied()
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	status := domain.TicketStatusOpen
	if input.Status != "" {
		parsed, ok := domain.ParseTicketStatus(input.Status)
		if !ok {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": input.Status})
		}
		status = parsed
	}
	priority, ok := domain.ParseTicketPriority(input.Priority)
	if !ok {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}

	ownerID := identity.ID
	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		CreatedBy:   &ownerID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, identity, events.Event{
		Type: events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{
			TicketID: ticket.ID,
			Title:    ticket.Title,
			Status:   ticket.Status,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// Update merges the validated patch into the ticket after an ownership
// check against the stored record.
func (s *TicketService) Update(ctx context.Context, identity *auth.Identity, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	if !auth.CanManageTicket(identity, ticket.CreatedBy) {
		return nil, apperrors.NewPermissionDenied()
	}

	patch, err := buildPatch(input)
	if err != nil {
		return nil, err
	}

	found, err := s.tickets.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}

	updated, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, identity, events.Event{
		Type: events.EventTicketUpdated,
		Payload: events.TicketUpdatedPayload{
			TicketID: updated.ID,
			Status:   updated.Status,
		},
	})
	return updated, nil
}

// Delete removes a ticket permanently. Only the delete_tickets capability
// grants this; ownership does not.
func (s *TicketService) Delete(ctx context.Context, identity *auth.Identity, id string) error {
	if !auth.Authorize(identity, auth.CapDeleteTickets, nil) {
		return apperrors.NewPermissionDenied()
	}
	found, err := s.tickets.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}

	s.publish(ctx, identity, events.Event{
		Type:    events.EventTicketDeleted,
		Payload: events.TicketDeletedPayload{TicketID: id},
	})
	return nil
}

func buildPatch(input TicketUpdateInput) (repository.TicketPatch, error) {
	var patch repository.TicketPatch

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := validateTitle(title); err != nil {
			return patch, err
		}
		patch.Title = &title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if err := validateDescription(description); err != nil {
			return patch, err
		}
		patch.Description = &description
	}
	if input.Status != nil {
		status, ok := domain.ParseTicketStatus(*input.Status)
		if !ok {
			return patch, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		patch.Status = &status
	}
	if input.Priority != nil {
		priority, ok := domain.ParseTicketPriority(*input.Priority)
		if !ok {
			return patch, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
		}
		patch.Priority = &priority
	}
	return patch, nil
}

func validateTitle(title string) error {
	if title == "" {
		return apperrors.NewValidationError("title is required", nil)
	}
	if len(title) > domain.TicketTitleMaxLen {
		return apperrors.NewValidationError("title too long", map[string]any{"max_length": domain.TicketTitleMaxLen})
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > domain.TicketDescriptionMaxLen {
		return apperrors.NewValidationError("description too long", map[string]any{"max_length": domain.TicketDescriptionMaxLen})
	}
	return nil
}

func (s *TicketService) publish(ctx context.Context, identity *auth.Identity, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if identity != nil {
		actorID := identity.ID
		event.ActorID = &actorID
	}
	_ = s.dispatcher.Publish(ctx, event)
}
