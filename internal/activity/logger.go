package activity

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photoshare/internal/model"
)

// producer defines the interface for publishing serialized activity records.
type producer interface {
	Send(ctx context.Context, key, value []byte) error
}

// Logger is a best-effort, non-blocking activity side channel. Records are
// queued on a bounded channel and drained by a background worker; when the
// queue is full the record is dropped and a warning is logged, so activity
// logging can never slow down or fail a request.
type Logger struct {
	producer  producer
	queue     chan model.Activity
	retention time.Duration
}

// NewLogger creates a Logger with the given queue capacity and record retention.
func NewLogger(p producer, queueSize int, retention time.Duration) *Logger {
	return &Logger{
		producer:  p,
		queue:     make(chan model.Activity, queueSize),
		retention: retention,
	}
}

// Log enqueues an activity record. It never blocks: if the queue is full
// the record is dropped.
func (l *Logger) Log(userID uuid.UUID, activity string, metadata map[string]string) {
	now := time.Now().UTC()

	record := model.Activity{
		ActivityID: uuid.New(),
		UserID:     userID,
		Activity:   activity,
		Metadata:   metadata,
		Timestamp:  now,
		ExpiresAt:  now.Add(l.retention),
	}

	select {
	case l.queue <- record:
	default:
		zlog.Logger.Warn().
			Str("activity", activity).
			Msg("activity queue full, dropping record")
	}
}

// Run drains the queue and publishes records until the context is canceled.
// Publish failures are logged and the record is dropped.
func (l *Logger) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	zlog.Logger.Info().Msg("starting activity worker")

	for {
		select {
		case <-ctx.Done():
			l.drain()
			zlog.Logger.Info().Msg("shutdown signal received, stopping activity worker")
			return
		case record := <-l.queue:
			l.publish(record)
		}
	}
}

// drain flushes whatever is still queued at shutdown.
func (l *Logger) drain() {
	for {
		select {
		case record := <-l.queue:
			l.publish(record)
		default:
			return
		}
	}
}

func (l *Logger) publish(record model.Activity) {
	data, err := json.Marshal(record)
	if err != nil {
		zlog.Logger.Err(err).Msg("failed to marshal activity record")
		return
	}

	// Detached context: the worker may be flushing after request contexts
	// are gone.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.producer.Send(ctx, []byte(record.UserID.String()), data); err != nil {
		zlog.Logger.Err(err).
			Str("activity", record.Activity).
			Msg("failed to publish activity record")
	}
}
