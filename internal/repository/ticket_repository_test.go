package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

func newTicketRepo(t *testing.T) (TicketRepository, persistence.Collections) {
	t.Helper()
	store, err := persistence.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return NewTicketRepository(store), store
}

func seedTickets(t *testing.T, store persistence.Collections, tickets []domain.Ticket) {
	t.Helper()
	require.NoError(t, persistence.WriteCollection(context.Background(), store, persistence.CollectionTickets, tickets))
}

func ts(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

func TestTicketRepository_CreateRoundTrip(t *testing.T) {
	repo, _ := newTicketRepo(t)
	ctx := context.Background()

	owner := "user-1"
	ticket := &domain.Ticket{
		Title:       "Printer on fire",
		Description: "Third floor printer is smoking.",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityHigh,
		CreatedBy:   &owner,
	}
	require.NoError(t, repo.Create(ctx, ticket))
	require.NotEmpty(t, ticket.ID)
	assert.Equal(t, ticket.CreatedAt, ticket.UpdatedAt)

	got, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ticket.Title, got.Title)
	assert.Equal(t, ticket.Description, got.Description)
	assert.Equal(t, ticket.Status, got.Status)
	assert.Equal(t, ticket.Priority, got.Priority)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, owner, *got.CreatedBy)
}

func TestTicketRepository_GetByIDMissing(t *testing.T) {
	repo, _ := newTicketRepo(t)

	got, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTicketRepository_ListFilterAndSort(t *testing.T) {
	repo, store := newTicketRepo(t)
	ctx := context.Background()

	seedTickets(t, store, []domain.Ticket{
		{ID: "a", Title: "Login broken", Description: "cannot sign in", Status: domain.TicketStatusOpen, CreatedAt: ts(15, 10), UpdatedAt: ts(15, 10)},
		{ID: "b", Title: "Dark mode", Description: "please add", Status: domain.TicketStatusInProgress, CreatedAt: ts(16, 14), UpdatedAt: ts(16, 14)},
		{ID: "c", Title: "Crash on save", Description: "editor crashes", Status: domain.TicketStatusOpen, CreatedAt: ts(17, 9), UpdatedAt: ts(17, 9)},
	})

	t.Run("status and sort compose", func(t *testing.T) {
		got, err := repo.List(ctx, TicketFilter{Status: "open", SortBy: SortNewest})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "c", got[0].ID)
		assert.Equal(t, "a", got[1].ID)
	})

	t.Run("status all means no filter", func(t *testing.T) {
		got, err := repo.List(ctx, TicketFilter{Status: "all"})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("search is case-insensitive over title or description", func(t *testing.T) {
		got, err := repo.List(ctx, TicketFilter{Search: "CRASH"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "c", got[0].ID)

		got, err = repo.List(ctx, TicketFilter{Search: "sign in"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].ID)
	})

	t.Run("oldest sorts ascending", func(t *testing.T) {
		got, err := repo.List(ctx, TicketFilter{SortBy: SortOldest})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "c", got[2].ID)
	})

	t.Run("unknown status matches nothing", func(t *testing.T) {
		got, err := repo.List(ctx, TicketFilter{Status: "bogus"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestTicketRepository_ListStableOnCreationTies(t *testing.T) {
	repo, store := newTicketRepo(t)

	same := ts(15, 10)
	seedTickets(t, store, []domain.Ticket{
		{ID: "first", Title: "one", Status: domain.TicketStatusOpen, CreatedAt: same, UpdatedAt: same},
		{ID: "second", Title: "two", Status: domain.TicketStatusOpen, CreatedAt: same, UpdatedAt: same},
		{ID: "third", Title: "three", Status: domain.TicketStatusOpen, CreatedAt: same, UpdatedAt: same},
	})

	got, err := repo.List(context.Background(), TicketFilter{SortBy: SortNewest})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestTicketRepository_UpdateMergesPatch(t *testing.T) {
	repo, _ := newTicketRepo(t)
	ctx := context.Background()

	ticket := &domain.Ticket{Title: "original", Description: "desc", Status: domain.TicketStatusOpen}
	require.NoError(t, repo.Create(ctx, ticket))
	created := *ticket

	time.Sleep(5 * time.Millisecond)

	newTitle := "updated title"
	newStatus := domain.TicketStatusClosed
	found, err := repo.Update(ctx, ticket.ID, TicketPatch{Title: &newTitle, Status: &newStatus})
	require.NoError(t, err)
	require.True(t, found)

	got, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "updated title", got.Title)
	assert.Equal(t, "desc", got.Description, "unpatched field kept")
	assert.Equal(t, domain.TicketStatusClosed, got.Status)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(created.UpdatedAt))
}

func TestTicketRepository_UpdateMissing(t *testing.T) {
	repo, _ := newTicketRepo(t)

	title := "x"
	found, err := repo.Update(context.Background(), "nope", TicketPatch{Title: &title})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTicketRepository_Delete(t *testing.T) {
	repo, _ := newTicketRepo(t)
	ctx := context.Background()

	ticket := &domain.Ticket{Title: "to delete", Status: domain.TicketStatusOpen}
	require.NoError(t, repo.Create(ctx, ticket))

	found, err := repo.Delete(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, found)

	got, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err := repo.List(ctx, TicketFilter{})
	require.NoError(t, err)
	for _, remaining := range all {
		assert.NotEqual(t, ticket.ID, remaining.ID)
	}

	found, err = repo.Delete(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, found, "second delete of same id reports missing")
}
