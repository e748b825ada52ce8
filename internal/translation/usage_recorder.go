package translation

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/avrentals/backend/internal/metrics"
	"github.com/avrentals/backend/internal/models"
)

const (
	usageQueueSize     = 4096
	usageFlushInterval = 2 * time.Second
	usageFlushBatch    = 256
)

// UsageRecorder applies usage_count / last_used_at updates off the read
// path. Hits are queued on a buffered channel and flushed in batches by a
// single background goroutine; when the queue is full the hit is dropped.
// These counters are observability, not correctness state, so losing some
// under pressure is acceptable, delaying a translation read is not.
type UsageRecorder struct {
	db *gorm.DB
	ch chan string

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewUsageRecorder creates a recorder and starts its flush goroutine.
func NewUsageRecorder(db *gorm.DB) *UsageRecorder {
	r := &UsageRecorder{
		db:   db,
		ch:   make(chan string, usageQueueSize),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go r.run()
	return r
}

// RecordHit queues a hit for the given record ID. Never blocks.
func (r *UsageRecorder) RecordHit(id string) {
	if r == nil || id == "" {
		return
	}
	select {
	case r.ch <- id:
	default:
		metrics.UsageUpdatesDropped.Inc()
	}
}

// Stop flushes what is queued and stops the goroutine.
func (r *UsageRecorder) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
	<-r.done
}

func (r *UsageRecorder) run() {
	defer close(r.done)

	ticker := time.NewTicker(usageFlushInterval)
	defer ticker.Stop()

	pending := make(map[string]int)

	flush := func() {
		if len(pending) == 0 {
			return
		}
		r.flush(pending)
		pending = make(map[string]int)
	}

	for {
		select {
		case id := <-r.ch:
			pending[id]++
			if len(pending) >= usageFlushBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-r.stop:
			// Drain whatever is already queued, then flush once.
			for {
				select {
				case id := <-r.ch:
					pending[id]++
				default:
					flush()
					return
				}
			}
		}
	}
}

// flush applies one UPDATE per distinct record. Failures are logged and
// dropped; a failed metadata write must never surface anywhere.
func (r *UsageRecorder) flush(pending map[string]int) {
	if r.db == nil {
		return
	}

	now := time.Now()
	for id, hits := range pending {
		err := r.db.Model(&models.Translation{}).
			Where("id = ?", id).
			UpdateColumns(map[string]interface{}{
				"usage_count":  gorm.Expr("usage_count + ?", hits),
				"last_used_at": now,
			}).Error
		if err != nil {
			debugLog("usage flush failed for id=%s: %v", id, err)
		}
	}
}
