package activity

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/photoshare/internal/model"
)

type fakeProducer struct {
	mu      sync.Mutex
	records [][]byte
}

func (p *fakeProducer) Send(ctx context.Context, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, value)
	return nil
}

func (p *fakeProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

func TestLogger_PublishesQueuedRecords(t *testing.T) {
	p := &fakeProducer{}
	l := NewLogger(p, 16, 24*time.Hour)

	userID := uuid.New()
	l.Log(userID, model.ActivityPhotoUploaded, map[string]string{"photo_id": "p1"})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go l.Run(ctx, &wg)

	require.Eventually(t, func() bool { return p.count() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()

	var record model.Activity
	require.NoError(t, json.Unmarshal(p.records[0], &record))
	require.Equal(t, userID, record.UserID)
	require.Equal(t, model.ActivityPhotoUploaded, record.Activity)
	require.Equal(t, "p1", record.Metadata["photo_id"])
	require.True(t, record.ExpiresAt.After(record.Timestamp))
}

func TestLogger_NeverBlocksWhenFull(t *testing.T) {
	p := &fakeProducer{}
	l := NewLogger(p, 1, time.Hour)

	done := make(chan struct{})
	go func() {
		// No worker running: the second log must drop, not block.
		l.Log(uuid.New(), model.ActivityPhotoUploaded, nil)
		l.Log(uuid.New(), model.ActivityPhotoDeleted, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Log blocked on a full queue")
	}
}

func TestLogger_DrainsOnShutdown(t *testing.T) {
	p := &fakeProducer{}
	l := NewLogger(p, 8, time.Hour)

	for i := 0; i < 5; i++ {
		l.Log(uuid.New(), model.ActivityAlbumCreated, nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go l.Run(ctx, &wg)
	wg.Wait()

	require.Equal(t, 5, p.count())
}
