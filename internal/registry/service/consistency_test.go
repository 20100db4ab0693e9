package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"quire/internal/kv"
	"quire/internal/kv/mocks"
	"quire/internal/registry/models"
	"quire/internal/registry/store"
	"quire/pkg/requestcontext"
)

// These tests pin the two documented crash windows by failing exactly the
// second write of each dual-write operation and inspecting the storage state
// left behind.

func fixedCtx() context.Context {
	return requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

// failingKV delegates to a real in-memory store except for writes matching
// failKey, which fail without touching storage.
func failingKV(t *testing.T, mem *kv.MemoryStore, shouldFail func(key string) bool) *mocks.MockStore {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockKV := mocks.NewMockStore(ctrl)
	mockKV.EXPECT().Get(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(mem.Get)
	mockKV.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
		func(ctx context.Context, key string, value []byte) error {
			if shouldFail(key) {
				return errors.New("write failed: disk full")
			}
			return mem.Put(ctx, key, value)
		})
	return mockKV
}

func TestCreateWindowIndexWrittenDocumentLost(t *testing.T) {
	ctx := fixedCtx()
	mem := kv.NewMemoryStore()

	// Fail the primary-record write; the index write (issued first) lands.
	mockKV := failingKV(t, mem, func(key string) bool {
		return strings.HasPrefix(key, "documents:doc:")
	})
	broken := New(store.New(mockKV), nil, nil, nil, discardLogger())

	_, err := broken.Create(ctx, "Contract", "pdf", []string{"http://x"})
	require.Error(t, err, "interrupted create must surface the failure")

	// A restarted registry over the same storage observes the create window:
	// the id is listed but its primary record does not exist.
	recovered := New(store.New(mem), nil, nil, nil, discardLogger())

	index, err := recovered.List(ctx)
	require.NoError(t, err)
	require.Len(t, index, 1, "index write preceded the crash")

	_, err = recovered.Get(ctx, index[0].ID)
	assert.ErrorIs(t, err, store.ErrNotFound, "primary record was never written")
}

func TestStatusWindowDocumentAheadOfIndex(t *testing.T) {
	ctx := fixedCtx()
	mem := kv.NewMemoryStore()

	healthy := New(store.New(mem), nil, nil, nil, discardLogger())
	doc, err := healthy.Create(ctx, "Contract", "pdf", nil)
	require.NoError(t, err)

	// Fail the index write; the primary-record write (issued first) lands.
	mockKV := failingKV(t, mem, func(key string) bool {
		return key == "documents:index"
	})
	broken := New(store.New(mockKV), nil, nil, nil, discardLogger())

	err = broken.TransitionStatus(ctx, doc.ID, models.StatusProcessed)
	require.Error(t, err, "interrupted transition must surface the failure")

	// The status window: the primary record carries the new status while the
	// index projection still shows the old one.
	recovered := New(store.New(mem), nil, nil, nil, discardLogger())

	got, err := recovered.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessed, got.Status)

	index, err := recovered.List(ctx)
	require.NoError(t, err)
	require.Len(t, index, 1)
	assert.Equal(t, models.StatusPending, index[0].Status)
}

func TestCreateFailsCleanlyWhenIndexWriteFails(t *testing.T) {
	ctx := fixedCtx()
	mem := kv.NewMemoryStore()

	// Fail the index write: the first write of create. Nothing lands at all,
	// so there is no window in this interruption order.
	mockKV := failingKV(t, mem, func(key string) bool {
		return key == "documents:index"
	})
	broken := New(store.New(mockKV), nil, nil, nil, discardLogger())

	_, err := broken.Create(ctx, "Contract", "pdf", nil)
	require.Error(t, err)

	recovered := New(store.New(mem), nil, nil, nil, discardLogger())
	index, err := recovered.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, index)
}
