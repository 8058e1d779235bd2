package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type recordingStore struct {
	mu      sync.Mutex
	entries []AuditLog
	batches int
	err     error
}

func (s *recordingStore) InsertMany(_ context.Context, logs []AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, logs...)
	s.batches++
	return nil
}

func (s *recordingStore) snapshot() []AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditLog, len(s.entries))
	copy(out, s.entries)
	return out
}

func TestAuditWorker_DrainsOnStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &recordingStore{}
	worker := NewAuditWorker(store, 3, 500, logging.NewSafeLogger(zap.NewNop()))

	ctx := WithAuditContext(context.Background(), AuditContext{AuthID: "auth0|voter", RequestID: "req-1"})
	for i := 0; i < 250; i++ {
		worker.Record(ctx, AuditActionVote, AuditResourceVote, fmt.Sprint(i), nil, nil)
	}
	worker.Stop()

	entries := store.snapshot()
	require.Len(t, entries, 250, "every queued entry should be flushed on stop")
	assert.Equal(t, "auth0|voter", entries[0].AuthID)
	assert.Equal(t, "req-1", entries[0].RequestID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestAuditWorker_RecordAfterStopWritesSynchronously(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &recordingStore{}
	worker := NewAuditWorker(store, 1, 10, logging.NewSafeLogger(zap.NewNop()))
	worker.Stop()

	worker.Record(context.Background(), AuditActionDelete, AuditResourcePolicy, "42", nil, map[string]string{"reason": "test"})

	entries := store.snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, "42", entries[0].ResourceID)
	assert.Equal(t, "test", entries[0].Metadata["reason"])
}

func TestAuditWorker_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	worker := NewAuditWorker(&recordingStore{}, 2, 10, logging.NewSafeLogger(zap.NewNop()))
	worker.Stop()
	worker.Stop()

	var nilWorker *AuditWorker
	nilWorker.Stop()
}

func TestAuditWorker_StoreFailureIsLoggedNotPropagated(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &recordingStore{err: errors.New("mongo down")}
	worker := NewAuditWorker(store, 1, 10, logging.NewSafeLogger(zap.NewNop()))

	worker.Record(context.Background(), AuditActionCreate, AuditResourceCitizen, "1", nil, nil)
	worker.Stop()

	assert.Empty(t, store.snapshot())
}

func TestAuditContextFrom_Missing(t *testing.T) {
	assert.Equal(t, AuditContext{}, AuditContextFrom(context.Background()))
}

func TestNoopAuditor(t *testing.T) {
	var auditor Auditor = NoopAuditor{}
	auditor.Record(context.Background(), AuditActionCreate, AuditResourceCitizen, "1", nil, nil)
}
