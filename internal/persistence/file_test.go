package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestFileStore_MissingCollectionReadsEmpty(t *testing.T) {
	store := newTestFileStore(t)

	raw, err := store.Read(context.Background(), "tickets")
	require.NoError(t, err)
	assert.Empty(t, raw)

	records, err := ReadCollection[domain.Ticket](context.Background(), store, "tickets")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileStore_WriteReadRoundTrip(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	in := []domain.Ticket{
		{ID: "a", Title: "first", Status: domain.TicketStatusOpen},
		{ID: "b", Title: "second", Status: domain.TicketStatusClosed},
	}
	require.NoError(t, WriteCollection(ctx, store, "tickets", in))

	out, err := ReadCollection[domain.Ticket](ctx, store, "tickets")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFileStore_WriteReplacesWholeCollection(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, WriteCollection(ctx, store, "users", []domain.User{{ID: "1", Username: "alice"}}))
	require.NoError(t, WriteCollection(ctx, store, "users", []domain.User{{ID: "2", Username: "bob"}}))

	out, err := ReadCollection[domain.User](ctx, store, "users")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "bob", out[0].Username)
}

func TestFileStore_NilRecordsWriteAsEmptyArray(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, WriteCollection[domain.Ticket](ctx, store, "tickets", nil))

	raw, err := store.Read(ctx, "tickets")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw))
}

func TestFileStore_LeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, WriteCollection(context.Background(), store, "tickets", []domain.Ticket{{ID: "a"}}))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = os.Stat(filepath.Join(dir, "tickets.json"))
	assert.NoError(t, err)
}

func TestSeedSampleData(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, SeedSampleData(ctx, store, 4, zap.NewNop()))

	tickets, err := ReadCollection[domain.Ticket](ctx, store, CollectionTickets)
	require.NoError(t, err)
	assert.Len(t, tickets, 2)

	users, err := ReadCollection[domain.User](ctx, store, CollectionUsers)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)
	assert.NotEqual(t, "admin123", users[0].PasswordHash)

	// Seeding twice must not duplicate records.
	require.NoError(t, SeedSampleData(ctx, store, 4, zap.NewNop()))
	tickets, err = ReadCollection[domain.Ticket](ctx, store, CollectionTickets)
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}
