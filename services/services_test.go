package services

import (
	"context"
	"errors"
	"time"

	"wedding-backend/store"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// downProvider simulates an unreachable database.
type downProvider struct{}

func (downProvider) Get(context.Context) (store.Store, error) {
	return nil, errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")
}

// stalledProvider never connects; it gives up only when ctx ends.
type stalledProvider struct{}

func (stalledProvider) Get(ctx context.Context) (store.Store, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func memProvider() (store.Provider, *store.MemoryStore) {
	m := store.NewMemoryStore()
	return store.Static(m), m
}
