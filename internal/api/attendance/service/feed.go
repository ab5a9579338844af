package attendanceService

import (
	"Attendify/internal/entity"
	"sync"
)

// FeedHub fans accepted attendance submissions out to live section feeds.
// Subscribers are per-section; publishing never blocks the submission flow.
type FeedHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan entity.AttendanceEvent]struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{
		subs: make(map[string]map[chan entity.AttendanceEvent]struct{}),
	}
}

// Subscribe registers a listener for one section. The cancel func must be
// called when the listener goes away; it closes the returned channel.
func (h *FeedHub) Subscribe(sectionID string) (<-chan entity.AttendanceEvent, func()) {
	ch := make(chan entity.AttendanceEvent, 16)

	h.mu.Lock()
	if h.subs[sectionID] == nil {
		h.subs[sectionID] = make(map[chan entity.AttendanceEvent]struct{})
	}
	h.subs[sectionID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[sectionID], ch)
			if len(h.subs[sectionID]) == 0 {
				delete(h.subs, sectionID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Publish delivers the event to every listener of its section. A listener
// whose buffer is full misses the event instead of stalling the publisher.
func (h *FeedHub) Publish(event entity.AttendanceEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[event.SectionID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers reports the listener count for a section.
func (h *FeedHub) Subscribers(sectionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sectionID])
}
