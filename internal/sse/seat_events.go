// Package sse fans seat-status updates out to browsers holding a seat map
// open, over plain Server-Sent Events. Delivery is best effort: a slow
// subscriber drops events rather than stalling the booking path.
package sse

import (
	"context"
	"sync"

	"campus-booking/internal/models"
)

const subscriberBuffer = 16

// Broadcaster multiplexes seat-status events per show.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[string]map[chan models.SeatStatusEvent]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string]map[chan models.SeatStatusEvent]struct{}),
	}
}

// Subscribe registers interest in one show's seat updates. The returned
// channel closes when ctx is done.
func (b *Broadcaster) Subscribe(ctx context.Context, showID string) <-chan models.SeatStatusEvent {
	ch := make(chan models.SeatStatusEvent, subscriberBuffer)

	b.mu.Lock()
	if b.subs[showID] == nil {
		b.subs[showID] = make(map[chan models.SeatStatusEvent]struct{})
	}
	b.subs[showID][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		if set, ok := b.subs[showID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, showID)
			}
		}
		b.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Broadcast delivers an event to every subscriber of its show. Full buffers
// are skipped; the client re-syncs from the seats endpoint on reconnect.
func (b *Broadcaster) Broadcast(event models.SeatStatusEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[event.ShowID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports how many clients are watching a show.
func (b *Broadcaster) SubscriberCount(showID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[showID])
}
