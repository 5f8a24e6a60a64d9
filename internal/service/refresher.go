package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/localplay/tictactoe-lobby/internal/entity"
)

// Refresher is the only propagation channel between sessions: on a fixed
// interval it re-reads the room collection (pruning as it goes) and fans the
// snapshot out to subscribers. Subscribers that fall behind get the stale
// snapshot replaced, never a blocked refresher.
type Refresher struct {
	logger *slog.Logger

	rooms    RoomService
	interval time.Duration

	mu          sync.Mutex
	nextID      int
	subscribers map[int]chan []*entity.Room
}

func NewRefresher(logger *slog.Logger, rooms RoomService, interval time.Duration) *Refresher {
	return &Refresher{
		logger:      logger,
		rooms:       rooms,
		interval:    interval,
		subscribers: make(map[int]chan []*entity.Room),
	}
}

// Subscribe registers for snapshots. The returned cancel func must be called
// on teardown; the channel closes with it.
func (that *Refresher) Subscribe() (<-chan []*entity.Room, func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	id := that.nextID
	that.nextID++

	ch := make(chan []*entity.Room, 1)
	that.subscribers[id] = ch

	return ch, func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		if sub, ok := that.subscribers[id]; ok {
			delete(that.subscribers, id)
			close(sub)
		}
	}
}

// Run polls until the context is cancelled. One refresh fires immediately so
// new processes don't wait a full interval for their first listing.
func (that *Refresher) Run(ctx context.Context) {
	log := that.logger.With("component", "refresher")

	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	that.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("room refresher stopped")
			return
		case <-ticker.C:
			that.refresh(ctx)
		}
	}
}

func (that *Refresher) refresh(ctx context.Context) {
	rooms := that.rooms.ListActive(ctx)

	that.mu.Lock()
	defer that.mu.Unlock()

	for _, ch := range that.subscribers {
		// replace an unconsumed snapshot instead of blocking
		select {
		case <-ch:
		default:
		}

		select {
		case ch <- rooms:
		default:
		}
	}
}
