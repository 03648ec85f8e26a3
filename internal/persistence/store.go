package persistence

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection names used by the repositories.
const (
	CollectionUsers   = "users"
	CollectionTickets = "tickets"
)

// Collections is the whole-collection document store the repositories sit
// on: a read returns the full JSON array for a collection, a write replaces
// it. No partial-write contract exists; concurrent writers are
// last-writer-wins.
type Collections interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// ReadCollection decodes a whole collection into typed records. A missing
// or empty collection decodes to an empty slice.
func ReadCollection[T any](ctx context.Context, store Collections, name string) ([]T, error) {
	raw, err := store.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", name, err)
	}
	if len(raw) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", name, err)
	}
	return records, nil
}

// WriteCollection encodes typed records and replaces the collection.
func WriteCollection[T any](ctx context.Context, store Collections, name string, records []T) error {
	if records == nil {
		records = []T{}
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", name, err)
	}
	if err := store.Write(ctx, name, raw); err != nil {
		return fmt.Errorf("write collection %s: %w", name, err)
	}
	return nil
}
