// Package events allows for the registering and receiving of events. It is
// used to fan the ledger's event handler output out to websocket viewers.
package events

import (
	"fmt"
	"strings"
	"sync"
)

// Since a message will be dropped if the websocket receiver is
// not ready to receive, this arbitrary buffer should give the receiver
// enough time to not lose a message. Websocket send could take long.
const messageBuffer = 100

// receiver is a registered channel with the message prefixes it accepts.
// An empty prefix list accepts every message.
type receiver struct {
	ch       chan string
	prefixes []string
	dropped  uint64
}

func (r *receiver) accepts(s string) bool {
	if len(r.prefixes) == 0 {
		return true
	}

	for _, prefix := range r.prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}

	return false
}

// =============================================================================

// Events maintains a mapping of unique id and receivers so goroutines
// can register and receive events.
type Events struct {
	m  map[string]*receiver
	mu sync.RWMutex
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]*receiver),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, r := range evt.m {
		delete(evt.m, id)
		close(r.ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used to
// receive events. When prefixes are provided, only messages starting with
// one of them are delivered. Acquiring an existing id returns its channel
// and leaves its prefixes unchanged.
func (evt *Events) Acquire(id string, prefixes ...string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if r, exists := evt.m[id]; exists {
		return r.ch
	}

	r := receiver{
		ch:       make(chan string, messageBuffer),
		prefixes: prefixes,
	}
	evt.m[id] = &r

	return r.ch
}

// Release closes and removes the channel that was provided by the call to
// Acquire. It returns the number of messages the receiver missed because
// its buffer was full.
func (evt *Events) Release(id string) (uint64, error) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	r, exists := evt.m[id]
	if !exists {
		return 0, fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(r.ch)

	return r.dropped, nil
}

// Count returns the number of registered receivers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Send signals a message to every registered receiver accepting it. Send
// will not block waiting for a receiver on any given channel.
func (evt *Events) Send(s string) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for _, r := range evt.m {
		if !r.accepts(s) {
			continue
		}

		select {
		case r.ch <- s:
		default:
			r.dropped++
		}
	}
}
