package ctxsync

import "sync"

// Cond is a broadcast-only condition: waiters grab the current generation
// channel with Chan, re-check their condition, and block on the channel.
// Broadcast closes the current generation and starts a new one, waking every
// waiter exactly once.
//
// The Chan-then-check ordering makes missed wakeups impossible:
//
//	for {
//		ch := c.Chan()
//		if done() {
//			return nil
//		}
//		select {
//		case <-ctx.Done():
//			return ctx.Err()
//		case <-ch:
//		}
//	}
type Cond struct {
	mu sync.Mutex
	ch chan struct{}
}

// NewCond returns a new Cond.
func NewCond() *Cond {
	return &Cond{ch: make(chan struct{})}
}

// Chan returns the channel of the current generation. The channel is closed
// by the next Broadcast.
func (c *Cond) Chan() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ch
}

// Broadcast wakes all goroutines waiting on the current generation.
func (c *Cond) Broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	close(c.ch)
	c.ch = make(chan struct{})
}
