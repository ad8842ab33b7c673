package view

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore map[uuid.UUID]int

func (m memoryStore) AddViews(_ context.Context, id uuid.UUID, delta int) error {
	m[id] += delta
	return nil
}

func TestRecordViewWithoutRedisWritesThrough(t *testing.T) {
	store := memoryStore{}
	svc := NewViewService(nil, store)
	id := uuid.New()

	require.NoError(t, svc.RecordView(context.Background(), id, "viewer"))
	require.NoError(t, svc.RecordView(context.Background(), id, "viewer"))
	assert.Equal(t, 2, store[id])

	synced, err := svc.SyncViews(context.Background())
	require.NoError(t, err)
	assert.Zero(t, synced)
}

func TestViewKeys(t *testing.T) {
	id := uuid.MustParse("0190b7a2-0000-7000-8000-000000000001")
	assert.Equal(t, "discussion:views:0190b7a2-0000-7000-8000-000000000001", viewKey(id))
	assert.Equal(t, "discussion:viewer:0190b7a2-0000-7000-8000-000000000001:10.0.0.1", viewerKey(id, "10.0.0.1"))
}
