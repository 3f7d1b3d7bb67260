package service

import (
	"context"
	"sync"
)

// RunState is the controller's externally visible state.
type RunState string

const (
	StateRunning   RunState = "running"
	StatePaused    RunState = "paused"
	StateCancelled RunState = "cancelled"
)

// Controller coordinates cooperative pause/resume/cancel. Workers call
// Wait between units; a paused controller blocks them there, a cancelled
// one makes Wait return an error so partial progress stays checkpointed.
type Controller struct {
	mu      sync.Mutex
	state   RunState
	resumed chan struct{}
}

func NewController() *Controller {
	return &Controller{state: StateRunning}
}

func (c *Controller) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return
	}
	c.state = StatePaused
	c.resumed = make(chan struct{})
}

func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePaused {
		return
	}
	c.state = StateRunning
	close(c.resumed)
	c.resumed = nil
}

func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateCancelled {
		return
	}
	if c.state == StatePaused && c.resumed != nil {
		close(c.resumed)
		c.resumed = nil
	}
	c.state = StateCancelled
}

// Wait blocks while the controller is paused and returns an error once it
// is cancelled or the context ends.
func (c *Controller) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		state := c.state
		resumed := c.resumed
		c.mu.Unlock()

		switch state {
		case StateCancelled:
			return NewError(ErrCancelled, "run cancelled")
		case StateRunning:
			if err := ctx.Err(); err != nil {
				return WrapError(err, ErrCancelled, "context ended")
			}
			return nil
		case StatePaused:
			select {
			case <-resumed:
			case <-ctx.Done():
				return WrapError(ctx.Err(), ErrCancelled, "context ended while paused")
			}
		}
	}
}
