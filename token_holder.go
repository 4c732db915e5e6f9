package auth

import (
	"sync"
	"time"
)

// TokenState is the value published by a TokenHolder.
type TokenState struct {
	Token     string
	ExpiresAt time.Time
}

// IsZero reports whether the holder carries no token.
func (s TokenState) IsZero() bool {
	return s.Token == ""
}

// TokenHolder keeps the current bearer token for a client and notifies
// subscribers when it changes. It replaces ambient global token state with an
// explicit object the owning component can pass around and tear down.
type TokenHolder struct {
	mu      sync.RWMutex
	state   TokenState
	nextID  int
	watches map[int]func(TokenState)
}

// NewTokenHolder returns an empty holder.
func NewTokenHolder() *TokenHolder {
	return &TokenHolder{
		watches: map[int]func(TokenState){},
	}
}

// Current returns the last stored token state.
func (h *TokenHolder) Current() TokenState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Set stores a new token and notifies subscribers. Notification happens
// outside the lock so a subscriber may call back into the holder.
func (h *TokenHolder) Set(token string, expiresAt time.Time) {
	h.publish(TokenState{Token: token, ExpiresAt: expiresAt})
}

// Clear drops the stored token, e.g. on logout or after a rejection.
func (h *TokenHolder) Clear() {
	h.publish(TokenState{})
}

func (h *TokenHolder) publish(state TokenState) {
	h.mu.Lock()
	h.state = state
	subscribers := make([]func(TokenState), 0, len(h.watches))
	for _, fn := range h.watches {
		subscribers = append(subscribers, fn)
	}
	h.mu.Unlock()

	for _, fn := range subscribers {
		fn(state)
	}
}

// Subscribe registers fn for future token changes and returns a cancel
// function. Cancel is idempotent.
func (h *TokenHolder) Subscribe(fn func(TokenState)) func() {
	if fn == nil {
		return func() {}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.watches[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watches, id)
			h.mu.Unlock()
		})
	}
}
