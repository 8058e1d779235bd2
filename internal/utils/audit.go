package utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/observability"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthID     string             `bson:"auth_id" json:"auth_id"`
	Action     string             `bson:"action" json:"action"`
	Resource   string             `bson:"resource" json:"resource"`
	ResourceID string             `bson:"resource_id" json:"resource_id"`
	NewValue   interface{}        `bson:"new_value,omitempty" json:"new_value,omitempty"`
	IPAddress  string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent  string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	RequestID  string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
	Metadata   map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// Audit constants
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
	AuditActionVote   = "VOTE"
	AuditActionVerify = "VERIFY"

	AuditResourceHTTPRequest            = "http_request"
	AuditResourceCitizen                = "citizen"
	AuditResourcePoliticianVerification = "politician_verification"
	AuditResourcePolicy                 = "policy"
	AuditResourceOpinion                = "opinion"
	AuditResourcePoliticalParty         = "political_party"
	AuditResourceVote                   = "vote"
)

// AuditContext carries who performed a request
type AuditContext struct {
	AuthID    string
	IPAddress string
	UserAgent string
	RequestID string
}

type auditContextKey struct{}

// WithAuditContext attaches the caller's audit context to ctx
func WithAuditContext(ctx context.Context, ac AuditContext) context.Context {
	return context.WithValue(ctx, auditContextKey{}, ac)
}

// AuditContextFrom returns the audit context stored in ctx, if any
func AuditContextFrom(ctx context.Context) AuditContext {
	ac, _ := ctx.Value(auditContextKey{}).(AuditContext)
	return ac
}

// Auditor records audit events without blocking the caller
type Auditor interface {
	Record(ctx context.Context, action, resource, resourceID string, newValue interface{}, metadata map[string]string)
}

// NoopAuditor drops every event; used when audit logging is disabled
type NoopAuditor struct{}

func (NoopAuditor) Record(context.Context, string, string, string, interface{}, map[string]string) {}

// AuditStore persists batches of audit entries
type AuditStore interface {
	InsertMany(ctx context.Context, logs []AuditLog) error
}

// MongoAuditStore writes audit entries to a MongoDB collection
type MongoAuditStore struct {
	collection *mongo.Collection
}

func NewMongoAuditStore(collection *mongo.Collection) *MongoAuditStore {
	return &MongoAuditStore{collection: collection}
}

// InsertMany bulk-inserts a batch; ordering is irrelevant for audit rows
func (s *MongoAuditStore) InsertMany(ctx context.Context, logs []AuditLog) error {
	operations := make([]mongo.WriteModel, 0, len(logs))
	for _, log := range logs {
		operations = append(operations, mongo.NewInsertOneModel().SetDocument(log))
	}
	if _, err := s.collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to insert audit batch: %w", err)
	}
	return nil
}

// AuditWorker manages asynchronous, batched audit logging
type AuditWorker struct {
	store         AuditStore
	logger        *logging.SafeLogger
	auditChan     chan AuditLog
	workers       int
	batchSize     int
	flushInterval time.Duration

	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

// NewAuditWorker starts a pool of workers draining into store
func NewAuditWorker(store AuditStore, workers, bufferSize int, logger *logging.SafeLogger) *AuditWorker {
	aw := &AuditWorker{
		store:         store,
		logger:        logger,
		auditChan:     make(chan AuditLog, bufferSize),
		workers:       workers,
		batchSize:     100,
		flushInterval: 100 * time.Millisecond,
	}

	aw.wg.Add(aw.workers)
	for i := 0; i < aw.workers; i++ {
		go func() {
			defer aw.wg.Done()
			aw.processAuditLogs()
		}()
	}

	logger.Info("audit worker started",
		zap.Int("workers", aw.workers),
		zap.Int("buffer_size", bufferSize))
	return aw
}

// Record builds an entry from the request's audit context and queues it.
// When the queue is full or the worker stopped it writes synchronously.
func (aw *AuditWorker) Record(ctx context.Context, action, resource, resourceID string, newValue interface{}, metadata map[string]string) {
	ac := AuditContextFrom(ctx)
	aw.enqueue(AuditLog{
		AuthID:     ac.AuthID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		NewValue:   newValue,
		IPAddress:  ac.IPAddress,
		UserAgent:  ac.UserAgent,
		RequestID:  ac.RequestID,
		Timestamp:  time.Now().UTC(),
		Metadata:   metadata,
	})
}

func (aw *AuditWorker) enqueue(entry AuditLog) {
	aw.mu.RLock()
	if !aw.stopped {
		select {
		case aw.auditChan <- entry:
			aw.mu.RUnlock()
			observability.AuditEvents.WithLabelValues("async").Inc()
			return
		default:
			aw.logger.Warn("audit channel full, falling back to synchronous logging",
				zap.String("action", entry.Action),
				zap.String("resource", entry.Resource))
		}
	}
	aw.mu.RUnlock()

	observability.AuditEvents.WithLabelValues("sync").Inc()
	aw.flushBatch([]AuditLog{entry})
}

// processAuditLogs drains the channel in batches until it is closed
func (aw *AuditWorker) processAuditLogs() {
	ticker := time.NewTicker(aw.flushInterval)
	defer ticker.Stop()

	batch := make([]AuditLog, 0, aw.batchSize)
	for {
		select {
		case entry, ok := <-aw.auditChan:
			if !ok {
				aw.flushBatch(batch)
				return
			}
			batch = append(batch, entry)
			if len(batch) >= aw.batchSize {
				aw.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				aw.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (aw *AuditWorker) flushBatch(batch []AuditLog) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The store may keep the slice; hand it a copy since batch is reused.
	entries := make([]AuditLog, len(batch))
	copy(entries, batch)

	if err := aw.store.InsertMany(ctx, entries); err != nil {
		aw.logger.Error("failed to insert audit log batch",
			zap.Error(err),
			zap.Int("batch_size", len(entries)))
		return
	}

	aw.logger.Debug("audit log batch inserted", zap.Int("batch_size", len(entries)))
}

// Stop closes the queue and waits for the workers to flush
func (aw *AuditWorker) Stop() {
	if aw == nil {
		return
	}
	aw.stopOnce.Do(func() {
		aw.mu.Lock()
		aw.stopped = true
		close(aw.auditChan)
		aw.mu.Unlock()
		aw.wg.Wait()
	})
}
