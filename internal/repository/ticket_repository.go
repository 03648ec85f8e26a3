package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// SortOrder selects list ordering by creation time.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// TicketFilter captures listing parameters. Status "" or "all" means no
// status filtering; an empty Search means no text filtering.
type TicketFilter struct {
	Status string
	Search string
	SortBy SortOrder
}

// TicketPatch carries the fields an update may change. Nil fields are left
// untouched; ID, CreatedAt and CreatedBy are immutable.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
}

// TicketRepository encapsulates ticket persistence on the collections
// store. Each mutation is one read-modify-write of the whole collection.
type TicketRepository interface {
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, id string, patch TicketPatch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ticketRepository struct {
	mu    sync.Mutex
	store persistence.Collections
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(store persistence.Collections) TicketRepository {
	return &ticketRepository{store: store}
}

// List filters first, then sorts. The sort is stable so creation-time ties
// keep insertion order.
func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	tickets, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.Ticket, 0, len(tickets))
	status, statusFilter := statusFilterFor(filter.Status)
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	for _, ticket := range tickets {
		if statusFilter && ticket.Status != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(ticket.Title), search) &&
			!strings.Contains(strings.ToLower(ticket.Description), search) {
			continue
		}
		filtered = append(filtered, ticket)
	}

	if filter.SortBy == SortOldest {
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		})
	} else {
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		})
	}

	return filtered, nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	tickets, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		if tickets[i].ID == id {
			ticket := tickets[i]
			return &ticket, nil
		}
	}
	return nil, nil
}

// Create assigns the id and timestamps, then appends the record.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tickets, err := r.load(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	tickets = append(tickets, *ticket)
	return r.save(ctx, tickets)
}

// Update merges non-nil patch fields into the matching record and
// refreshes UpdatedAt. Returns false when no record matches.
func (r *ticketRepository) Update(ctx context.Context, id string, patch TicketPatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tickets, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	for i := range tickets {
		if tickets[i].ID != id {
			continue
		}
		if patch.Title != nil {
			tickets[i].Title = *patch.Title
		}
		if patch.Description != nil {
			tickets[i].Description = *patch.Description
		}
		if patch.Status != nil {
			tickets[i].Status = *patch.Status
		}
		if patch.Priority != nil {
			tickets[i].Priority = *patch.Priority
		}
		tickets[i].UpdatedAt = time.Now().UTC()
		if err := r.save(ctx, tickets); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Delete removes the record permanently. Returns false when no record
// matches; the id is never reused.
func (r *ticketRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tickets, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	remaining := make([]domain.Ticket, 0, len(tickets))
	found := false
	for _, ticket := range tickets {
		if ticket.ID == id {
			found = true
			continue
		}
		remaining = append(remaining, ticket)
	}
	if !found {
		return false, nil
	}
	if err := r.save(ctx, remaining); err != nil {
		return false, err
	}
	return true, nil
}

func statusFilterFor(raw string) (domain.TicketStatus, bool) {
	if raw == "" || raw == "all" {
		return "", false
	}
	if status, ok := domain.ParseTicketStatus(raw); ok {
		return status, true
	}
	// Unknown status values filter against the raw input and match nothing.
	return domain.TicketStatus(raw), true
}

func (r *ticketRepository) load(ctx context.Context) ([]domain.Ticket, error) {
	return persistence.ReadCollection[domain.Ticket](ctx, r.store, persistence.CollectionTickets)
}

func (r *ticketRepository) save(ctx context.Context, tickets []domain.Ticket) error {
	if err := persistence.WriteCollection(ctx, r.store, persistence.CollectionTickets, tickets); err != nil {
		return apperrors.NewStorageWriteError(err)
	}
	return nil
}
