package services

import (
	"sync"
	"sync/atomic"
	"time"

	"portfolio/app/repositories"

	"github.com/rs/zerolog/log"
)

// ViewCounter batches post views in memory and periodically adds them to the
// stored counters.
type ViewCounter struct {
	posts    repositories.PostRepository
	interval time.Duration
	views    chan string
	stop     chan struct{}
	done     chan struct{}
	started  atomic.Bool
	once     sync.Once
	onFlush  []func()
}

// NewViewCounter creates a counter flushing every interval
func NewViewCounter(posts repositories.PostRepository, interval time.Duration) *ViewCounter {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ViewCounter{
		posts:    posts,
		interval: interval,
		views:    make(chan string, 256),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// OnFlush registers fn to run after views have been written to the store.
// Register hooks before Start.
func (c *ViewCounter) OnFlush(fn func()) {
	c.onFlush = append(c.onFlush, fn)
}

// Start runs the collector until Stop is called
func (c *ViewCounter) Start() {
	if c.started.CompareAndSwap(false, true) {
		go c.collect()
	}
}

// Count records one view of a post. It never blocks the caller for long: when
// the buffer is full the view is dropped.
func (c *ViewCounter) Count(postID string) {
	select {
	case c.views <- postID:
	case <-c.stop:
	default:
		log.Warn().Str("op", "services.ViewCounter.Count").Str("post_id", postID).Msg("view buffer full, dropping view")
	}
}

// Stop halts the collector after flushing pending views. It is safe to call
// more than once.
func (c *ViewCounter) Stop() {
	c.once.Do(func() {
		close(c.stop)
	})
	if c.started.Load() {
		<-c.done
	}
}

func (c *ViewCounter) collect() {
	defer close(c.done)

	pending := make(map[string]int64)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case id := <-c.views:
			pending[id]++
		case <-ticker.C:
			c.flush(pending)
		case <-c.stop:
			for {
				select {
				case id := <-c.views:
					pending[id]++
				default:
					c.flush(pending)
					return
				}
			}
		}
	}
}

func (c *ViewCounter) flush(pending map[string]int64) {
	const op = "services.ViewCounter.flush"
	if len(pending) == 0 {
		return
	}
	for id, n := range pending {
		if err := c.posts.IncrementViews(id, n); err != nil {
			log.Error().Err(err).Str("op", op).Str("post_id", id).Send()
		}
		delete(pending, id)
	}
	for _, fn := range c.onFlush {
		fn()
	}
}
